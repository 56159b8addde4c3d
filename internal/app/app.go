package app

import (
	"context"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/libtak/pos-terminal/internal/dashboard"
	"github.com/libtak/pos-terminal/internal/gateway"
	"github.com/libtak/pos-terminal/internal/pos"
	"github.com/libtak/pos-terminal/internal/querycache"
	"github.com/libtak/pos-terminal/internal/receipt"
	"github.com/libtak/pos-terminal/internal/scanner"
	"github.com/libtak/pos-terminal/internal/session"
	"github.com/libtak/pos-terminal/internal/term"
)

// Run creates all dependencies and drives the terminal until the operator
// quits. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("gateway", cfg.GatewayURL))

	store, err := session.Open(lg.Named("session"), cfg.StateFile)
	if err != nil {
		return errors.Wrap(err, "open session store")
	}

	cache := querycache.New(cfg.POS.CacheTTL)
	store.OnCleared(cache.Clear)

	client, err := gateway.New(gateway.Config{
		BaseURL:           cfg.GatewayURL,
		Timeout:           cfg.Gateway.Timeout,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
	}, store, store.Clear)
	if err != nil {
		return errors.Wrap(err, "create gateway client")
	}

	if err := login(ctx, lg, cfg, client, store); err != nil {
		return err
	}
	// Access tokens expire mid-shift; exchanging the refresh token in the
	// background keeps the terminal from bouncing back to the login error.
	go session.AutoRefresh(ctx, lg.Named("session"), store, func(ctx context.Context, refreshToken string) (string, string, error) {
		pair, err := client.Refresh(ctx, refreshToken)
		if err != nil {
			return "", "", err
		}
		return pair.Access, pair.Refresh, nil
	}, session.RefreshConfig{})

	// Store identity and receipt lines come from the Gateway; defaults keep
	// the terminal usable when the settings endpoint is unreachable.
	settings, err := client.GetAppSettings(ctx)
	if err != nil {
		lg.Warn("Store settings unavailable, using defaults", zap.Error(err))
		settings = gateway.AppSettings{}
	}

	barcodes, err := loadBarcodeIndex(ctx, lg, client)
	if err != nil {
		return err
	}
	go refreshCatalog(ctx, lg, barcodes, client, cfg.POS.CatalogRefresh)

	// The checkout path invalidating "products" also rebuilds the barcode
	// prefilter, so a product created mid-shift becomes scannable without a
	// restart.
	invalidator := pos.NewCatalogInvalidator(lg.Named("pos"), cache, barcodes, client)

	printer := receipt.New(lg.Named("receipt"), receipt.Config{
		StoreName:    settings.StoreName(),
		StoreAddress: settings.StoreAddress(),
		StorePhone:   settings.StorePhone(),
		HeaderLine:   settings.PrintHeader(),
		FooterLine:   settings.PrintFooter(),
		Currency:     settings.CurrencySymbol(),
	})

	// The session and UI reference each other: state changes redraw the
	// screen, checkout failures land on the status line.
	var ui *term.UI
	posSession := pos.NewSession(lg.Named("pos"), pos.Config{
		SuccessDelay: cfg.POS.SuccessDelay,
		OnChange: func() {
			if ui != nil {
				ui.Refresh()
			}
		},
		OnError: func(msg string) {
			if ui != nil {
				ui.SetStatus(msg)
			}
		},
	}, client, client, invalidator, barcodes, printer)

	// Dashboard snapshots go through the query cache under the key the
	// checkout path invalidates, so the overlay is fresh right after a sale
	// and cheap to reopen otherwise.
	loader := dashboard.NewLoader(client)
	loadDashboard := func(ctx context.Context) (*dashboard.Snapshot, error) {
		return querycache.Fetch(ctx, cache, querycache.Key("dashboardStats"), loader.Load)
	}

	ui = term.New(lg.Named("term"), term.Config{
		In:            os.Stdin,
		Out:           os.Stdout,
		RawFD:         int(os.Stdin.Fd()),
		Currency:      settings.CurrencySymbol(),
		StoreName:     settings.StoreName(),
		Scanner:       scanner.Config{Timeout: cfg.POS.ScannerTimeout},
		LoadDashboard: loadDashboard,
		Logout:        store.Clear,
	}, posSession)

	lg.Info("Terminal ready",
		zap.String("role", store.Role()),
		zap.Time("token_expires", store.TokenExpiresAt()),
	)
	if err := ui.Run(ctx); err != nil && !errors.Is(err, term.ErrQuit) {
		return errors.Wrap(err, "terminal loop")
	}
	return nil
}

// login establishes a session when none is stored: credentials must then come
// from the configuration. An existing token is verified so a terminal left
// over a weekend fails at startup instead of on the first sale.
func login(ctx context.Context, lg *zap.Logger, cfg *Config, client *gateway.Client, store *session.Store) error {
	if store.Authenticated() {
		if err := client.Verify(ctx, store.Token()); err == nil {
			return nil
		}
		lg.Info("Stored token rejected, logging in again")
		store.Clear()
	}

	if cfg.Username == "" || cfg.Password == "" {
		return errors.New("no session: set LIBTAK_USERNAME and LIBTAK_PASSWORD to log in")
	}

	pair, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	if err := store.SetAuth(pair.Access, pair.Refresh, ""); err != nil {
		return errors.Wrap(err, "store session")
	}

	me, err := client.Me(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch profile")
	}
	if err := store.SetAuth(pair.Access, pair.Refresh, me.Role); err != nil {
		return errors.Wrap(err, "store session")
	}
	lg.Info("Logged in", zap.String("user", me.Username), zap.String("role", me.Role))
	return nil
}

// loadBarcodeIndex builds the scan prefilter from the whole catalog. When the
// walk fails the index starts unloaded (never rejecting) and the periodic
// refresh fills it in once the Gateway recovers.
func loadBarcodeIndex(ctx context.Context, lg *zap.Logger, client *gateway.Client) (*pos.BarcodeIndex, error) {
	codes, err := client.AllBarcodes(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return nil, errors.Wrap(err, "load catalog barcodes")
		}
		lg.Warn("Barcode prefilter deferred", zap.Error(err))
		return &pos.BarcodeIndex{}, nil
	}
	lg.Info("Barcode prefilter loaded", zap.Int("codes", len(codes)))
	return pos.NewBarcodeIndex(codes), nil
}

// refreshCatalog periodically rebuilds the barcode prefilter so products
// created on other terminals become scannable here without a restart.
func refreshCatalog(ctx context.Context, lg *zap.Logger, index *pos.BarcodeIndex, src pos.CatalogSource, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := index.Refresh(ctx, src); err != nil {
			lg.Warn("Barcode prefilter refresh failed", zap.Error(err))
		}
	}
}
