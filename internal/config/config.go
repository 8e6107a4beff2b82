// Package config resolves settings from defaults, a TOML file, environment
// variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL    = "http://localhost:8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"

	configFileName = "config.toml"
)

// Config is the resolved configuration.
type Config struct {
	APIURL    string `toml:"api_url"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
	Theme     string `toml:"theme"`
	Group     bool   `toml:"group"` // ls output grouped by pending/done

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Theme:     DefaultTheme,
	}
}

// Dir is the per-user settings directory, ~/.tada.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// DefaultPath is the config file looked up when -config is not given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// flagValues mirrors Config for the flag layer.
type flagValues struct {
	configPath string
	apiURL     string
	logLevel   string
	logFile    string
	theme      string
	group      bool
}

// Load registers the root flags on fs, parses args and resolves the layers:
// defaults, config file, environment, flags. It returns the config and the
// remaining positional arguments.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	var fv flagValues
	fs.StringVar(&fv.configPath, "config", "", "config file (default ~/.tada/config.toml)")
	fs.StringVar(&fv.apiURL, "api", "", "todo API base URL (default "+DefaultAPIURL+")")
	fs.StringVar(&fv.logLevel, "log-level", "", "log level: debug|info|warn|error")
	fs.StringVar(&fv.logFile, "log-file", "", "write logs to this file")
	fs.StringVar(&fv.theme, "theme", "", "color theme: classic|neon|mono")
	fs.BoolVar(&fv.group, "group", false, "group ls output by pending/done")
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := Default()

	path, explicit := fv.configPath, fv.configPath != ""
	if !explicit {
		if v := os.Getenv("TADA_CONFIG"); v != "" {
			path, explicit = v, true
		}
	}
	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		err := LoadFile(cfg, path)
		switch {
		case err == nil:
			cfg.Path = path
		case !explicit && errors.Is(err, os.ErrNotExist):
			// no user config file
		default:
			return nil, nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	LoadEnv(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = fv.apiURL
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "log-file":
			cfg.LogFile = fv.logFile
		case "theme":
			cfg.Theme = fv.theme
		case "group":
			cfg.Group = fv.group
		}
	})

	finalize(cfg)
	return cfg, fs.Args(), nil
}

// LoadFile decodes a TOML file over cfg. Keys absent from the file keep their
// current values.
func LoadFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadEnv overrides cfg from TADA_* environment variables.
func LoadEnv(cfg *Config) {
	if v := os.Getenv("TADA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
}

func finalize(cfg *Config) {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.LogFile = expandHome(cfg.LogFile)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
