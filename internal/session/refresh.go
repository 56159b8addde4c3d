package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresh timing defaults: check twice a minute, renew when the access token
// has less than two minutes left.
const (
	DefaultRefreshInterval  = 30 * time.Second
	DefaultRefreshThreshold = 2 * time.Minute
)

// Exchange trades a refresh token for a new token pair. The returned refresh
// token may be empty when the Gateway does not rotate it.
type Exchange func(ctx context.Context, refreshToken string) (access, refresh string, err error)

// RefreshConfig tunes AutoRefresh. Zero values mean the defaults.
type RefreshConfig struct {
	Interval  time.Duration
	Threshold time.Duration
}

// AutoRefresh keeps the stored access token alive: it periodically reads the
// token's expiry claim and exchanges the refresh token before the session
// dies mid-shift. Runs until ctx is cancelled. A failed exchange is logged
// and retried on the next tick; if the refresh token itself is rejected the
// next Gateway call returns 401 and clears the session through the usual
// path.
func AutoRefresh(ctx context.Context, lg *zap.Logger, s *Store, exchange Exchange, cfg RefreshConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultRefreshThreshold
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		exp := s.TokenExpiresAt()
		if exp.IsZero() || time.Until(exp) > cfg.Threshold {
			continue
		}
		refreshToken := s.RefreshToken()
		if refreshToken == "" {
			continue
		}

		access, refresh, err := exchange(ctx, refreshToken)
		if err != nil {
			lg.Warn("Token refresh failed", zap.Error(err), zap.Time("expires", exp))
			continue
		}
		if err := s.SetAuth(access, refresh, s.Role()); err != nil {
			lg.Warn("Persist refreshed token failed", zap.Error(err))
			continue
		}
		lg.Info("Access token refreshed", zap.Time("expires", s.TokenExpiresAt()))
	}
}
