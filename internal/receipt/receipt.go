// Package receipt renders completed sales as 80mm-format ticket documents
// and hands them to the platform's viewer for printing.
package receipt

import (
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/libtak/pos-terminal/internal/domain/sale"
	"github.com/libtak/pos-terminal/internal/pos"
)

// Config carries the store identity printed on every ticket.
type Config struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
	// HeaderLine and FooterLine are the free-text lines configured in the
	// store settings. Either may be empty.
	HeaderLine string
	FooterLine string
	// Currency is the display symbol, e.g. "DH".
	Currency string
	// Open launches the rendered document. Nil means the platform default
	// opener. Tests inject a capture here.
	Open func(path string) error
}

// Printer renders and dispatches sale tickets. It implements
// pos.ReceiptPrinter; printing is fire-and-forget and never reports back to
// the checkout flow.
type Printer struct {
	lg   *zap.Logger
	cfg  Config
	open func(path string) error
}

// New creates a Printer.
func New(lg *zap.Logger, cfg Config) *Printer {
	open := cfg.Open
	if open == nil {
		open = openDocument
	}
	if cfg.Currency == "" {
		cfg.Currency = "DH"
	}
	return &Printer{lg: lg, cfg: cfg, open: open}
}

// PrintSale renders the ticket to a temporary file and launches the viewer in
// the background. Failures are logged and swallowed: a jammed printer must
// never unwind a sale that the Gateway already recorded.
func (p *Printer) PrintSale(result *sale.Result, lines []pos.Line, tendered, change decimal.Decimal) {
	doc, err := p.Render(result, lines, tendered, change)
	if err != nil {
		p.lg.Error("Render receipt", zap.Error(err), zap.Int64("sale_id", result.ID))
		return
	}

	f, err := os.CreateTemp("", "ticket-*.html")
	if err != nil {
		p.lg.Error("Create receipt file", zap.Error(err))
		return
	}
	if _, err := f.WriteString(doc); err != nil {
		_ = f.Close()
		p.lg.Error("Write receipt file", zap.Error(err))
		return
	}
	if err := f.Close(); err != nil {
		p.lg.Error("Close receipt file", zap.Error(err))
		return
	}

	go func() {
		if err := p.open(f.Name()); err != nil {
			p.lg.Warn("Open receipt for printing",
				zap.Error(err),
				zap.String("path", f.Name()),
				zap.Int64("sale_id", result.ID),
			)
		}
	}()
}

// TicketNumber formats a sale ID as the padded ticket reference printed on
// the barcode line.
func TicketNumber(saleID int64) string {
	return fmt.Sprintf("%08d", saleID)
}

// PaymentLabel returns the printed label for a payment method.
func PaymentLabel(m sale.PaymentMethod) string {
	switch m {
	case sale.PaymentCard:
		return "Carte Bancaire"
	case sale.PaymentTransfer:
		return "Virement"
	default:
		return "Espèces"
	}
}

type ticketLine struct {
	Name     string
	Quantity int
	Unit     string
	Total    string
}

type ticketData struct {
	Store     Config
	Number    string
	Date      string
	Lines     []ticketLine
	ItemCount int
	Total     string
	Payment   string
	Tendered  string
	Change    string
	ShowCash  bool
	Currency  string
}

// Render produces the ticket document for a completed sale.
func (p *Printer) Render(result *sale.Result, lines []pos.Line, tendered, change decimal.Decimal) (string, error) {
	data := ticketData{
		Store:    p.cfg,
		Number:   TicketNumber(result.ID),
		Date:     result.CreatedAt.Local().Format("02/01/2006 15:04"),
		Total:    money(result.Total),
		Payment:  PaymentLabel(result.PaymentMethod),
		Tendered: money(tendered),
		Change:   money(change),
		ShowCash: result.PaymentMethod == sale.PaymentCash || result.PaymentMethod == "",
		Currency: p.cfg.Currency,
	}
	if result.CreatedAt.IsZero() {
		data.Date = time.Now().Format("02/01/2006 15:04")
	}
	for _, l := range lines {
		data.ItemCount += l.Quantity
		data.Lines = append(data.Lines, ticketLine{
			Name:     l.Product.Name,
			Quantity: l.Quantity,
			Unit:     money(l.Product.PriceTTC),
			Total:    money(l.Total()),
		})
	}

	var b strings.Builder
	if err := ticketTemplate.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "execute ticket template")
	}
	return b.String(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func openDocument(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// ticketTemplate is sized for 80mm thermal paper.
var ticketTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: monospace; width: 72mm; margin: 0 auto; font-size: 12px; }
  .center { text-align: center; }
  .row { display: flex; justify-content: space-between; }
  .rule { border-top: 1px dashed #000; margin: 4px 0; }
  .total { font-weight: bold; font-size: 14px; }
  .barcode { letter-spacing: 4px; font-size: 16px; }
</style>
</head>
<body onload="window.print()">
<div class="center">
  <div class="total">{{.Store.StoreName}}</div>
  {{- if .Store.StoreAddress}}<div>{{.Store.StoreAddress}}</div>{{end}}
  {{- if .Store.StorePhone}}<div>Tél: {{.Store.StorePhone}}</div>{{end}}
  {{- if .Store.HeaderLine}}<div>{{.Store.HeaderLine}}</div>{{end}}
</div>
<div class="rule"></div>
<div class="row"><span>Ticket N° {{.Number}}</span><span>{{.Date}}</span></div>
<div class="rule"></div>
{{- range .Lines}}
<div>{{.Name}}</div>
<div class="row"><span>{{.Quantity}} x {{.Unit}}</span><span>{{.Total}} {{$.Currency}}</span></div>
{{- end}}
<div class="rule"></div>
<div class="row"><span>Articles</span><span>{{.ItemCount}}</span></div>
<div class="row total"><span>TOTAL</span><span>{{.Total}} {{.Currency}}</span></div>
<div class="row"><span>Paiement</span><span>{{.Payment}}</span></div>
{{- if .ShowCash}}
<div class="row"><span>Reçu</span><span>{{.Tendered}} {{.Currency}}</span></div>
<div class="row"><span>Rendu</span><span>{{.Change}} {{.Currency}}</span></div>
{{- end}}
<div class="rule"></div>
<div class="center">
  {{- if .Store.FooterLine}}<div>{{.Store.FooterLine}}</div>{{end}}
  <div class="barcode">*{{.Number}}*</div>
  <div>Merci de votre visite</div>
</div>
</body>
</html>
`))
