package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete client configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	BackendURL  string        `default:"http://localhost:5000/api" usage:"Backend API base URL" flag:"backend-url"`
	StateDir    string        `usage:"Directory for the session token and cart snapshot" flag:"state-dir"`
	HTTPTimeout time.Duration `default:"30s" usage:"Backend request timeout" flag:"http-timeout"`
	Watch       WatchConfig
}

// WatchConfig controls the order status watcher.
type WatchConfig struct {
	Interval      time.Duration `default:"30s" usage:"Order poll interval"`
	ProbeInterval time.Duration `default:"10s" usage:"Backend availability probe interval" flag:"probe-interval"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and fills in the platform state directory default.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"storefront.yaml", filepath.Join(userConfigDir(), "storefront", "config.yaml")},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(userConfigDir(), "storefront")
	}

	return &cfg, nil
}

// userConfigDir returns the platform config directory, falling back to the
// working directory when the environment defines no home.
func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
