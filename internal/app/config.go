package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete terminal configuration, loadable from environment
// variables (LIBTAK_ prefix), flags, or YAML config files.
type Config struct {
	GatewayURL string `default:"http://localhost:8000/api" usage:"Gateway API root" flag:"gateway-url"`
	Username   string `usage:"Login username when no session is stored (LIBTAK_USERNAME)"`
	Password   string `usage:"Login password when no session is stored (LIBTAK_PASSWORD)"`
	StateFile  string `usage:"Session state file path (default: user config dir)" flag:"state-file"`
	Gateway    GatewayConfig
	POS        POSConfig
}

// GatewayConfig controls the HTTP client.
type GatewayConfig struct {
	Timeout           time.Duration `default:"10s" usage:"Per-request timeout"`
	RequestsPerSecond float64       `default:"20" usage:"Outgoing request rate cap (0 disables)" flag:"rps"`
}

// POSConfig tunes the sale screen.
type POSConfig struct {
	ScannerTimeout time.Duration `default:"100ms" usage:"Max inter-key gap of a barcode scan" flag:"scanner-timeout"`
	SuccessDelay   time.Duration `default:"2s" usage:"How long the sale-complete overlay is shown" flag:"success-delay"`
	CacheTTL       time.Duration `default:"30s" usage:"Query cache staleness window" flag:"cache-ttl"`
	CatalogRefresh time.Duration `default:"5m" usage:"Barcode prefilter rebuild interval (0 disables)" flag:"catalog-refresh"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies defaults that need the runtime environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LIBTAK",
		Files:     []string{"config.yaml", "/etc/libtak/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyDefaults()

	if cfg.GatewayURL == "" {
		return nil, errors.New("gateway URL is required: set LIBTAK_GATEWAY_URL")
	}
	return &cfg, nil
}

// applyDefaults fills paths that depend on the running user.
func (c *Config) applyDefaults() {
	if c.StateFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.StateFile = filepath.Join(dir, "libtak", "session.json")
		} else {
			c.StateFile = "libtak-session.json"
		}
	}
}
