package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
)

// Report period identifiers accepted by the reporting endpoints.
const (
	ReportDaily   = "daily"
	ReportWeekly  = "weekly"
	ReportMonthly = "monthly"
)

// GetReport fetches the aggregate for one period. params carries the
// period-specific selectors (date, week, month) exactly as the Gateway
// expects them.
func (c *Client) GetReport(ctx context.Context, period string, params url.Values) (*Report, error) {
	switch period {
	case ReportDaily, ReportWeekly, ReportMonthly:
	default:
		return nil, errors.Errorf("unknown report period %q", period)
	}

	var out Report
	if err := c.do(ctx, http.MethodGet, "/reporting/"+period+"/", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardStats returns the aggregate behind the dashboard cards.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.do(ctx, http.MethodGet, "/reporting/stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportReportPDF streams the Gateway-rendered PDF for a period into w and
// returns the number of bytes written.
func (c *Client) ExportReportPDF(ctx context.Context, period string, params url.Values, w io.Writer) (int64, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("type", period)

	body, err := c.stream(ctx, http.MethodGet, "/reporting/export_pdf/", params)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, errors.Wrap(err, "download report pdf")
	}
	return n, nil
}

// GetReportSettings reads the scheduled-report configuration.
func (c *Client) GetReportSettings(ctx context.Context) (*ReportSettings, error) {
	var out ReportSettings
	if err := c.do(ctx, http.MethodGet, "/reporting/settings/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReportSettings patches the scheduled-report configuration. The
// optional sender password travels write-only.
func (c *Client) UpdateReportSettings(ctx context.Context, in ReportSettings, senderPassword string) (*ReportSettings, error) {
	body := map[string]any{
		"email_recipients": in.EmailRecipients,
		"sender_email":     in.SenderEmail,
		"smtp_host":        in.SMTPHost,
		"smtp_port":        in.SMTPPort,
		"daily_enabled":    in.DailyEnabled,
		"daily_time":       in.DailyTime,
		"weekly_enabled":   in.WeeklyEnabled,
		"weekly_time":      in.WeeklyTime,
		"weekly_day":       in.WeeklyDay,
		"monthly_enabled":  in.MonthlyEnabled,
		"monthly_time":     in.MonthlyTime,
	}
	if senderPassword != "" {
		body["sender_password"] = senderPassword
	}

	var out ReportSettings
	if err := c.do(ctx, http.MethodPatch, "/reporting/settings/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
