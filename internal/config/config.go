package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"wikiscrap/internal/app"
	"wikiscrap/internal/fetch"
	"wikiscrap/internal/search"
)

const EnvPrefix = "WIKISCRAP"

// ErrInvalid matches app.ErrConfiguration.
var ErrInvalid = app.ErrConfiguration

// Config is the file and environment view of a session. Durations are seconds so
// JSON and YAML files stay readable.
type Config struct {
	URLs           []string `json:"urls,omitempty" mapstructure:"urls"`
	URLFile        string   `json:"url_file,omitempty" mapstructure:"url_file"`
	Keyword        string   `json:"keyword,omitempty" mapstructure:"keyword"`
	Limit          int      `json:"limit" mapstructure:"limit"`
	OutputDir      string   `json:"output_dir" mapstructure:"output_dir"`
	TimeoutSeconds float64  `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string   `json:"user_agent" mapstructure:"user_agent"`
	PauseSeconds   float64  `json:"pause_seconds" mapstructure:"pause_seconds"`
	Retries        int      `json:"retries" mapstructure:"retries"`
	MaxRedirects   int      `json:"max_redirects" mapstructure:"max_redirects"`
	SearchEndpoint string   `json:"search_endpoint" mapstructure:"search_endpoint"`
	DownloadImages bool     `json:"download_images" mapstructure:"download_images"`
	Verbose        bool     `json:"verbose" mapstructure:"verbose"`
}

func Default() Config {
	return Config{
		URLs:           []string{},
		Limit:          app.DefaultLimit,
		OutputDir:      app.DefaultOutputRoot,
		TimeoutSeconds: fetch.DefaultTimeout.Seconds(),
		UserAgent:      fetch.DefaultUserAgent,
		PauseSeconds:   app.DefaultPause.Seconds(),
		Retries:        app.DefaultRetries,
		MaxRedirects:   fetch.DefaultMaxRedirects,
		SearchEndpoint: search.DefaultEndpoint,
	}
}

// SetDefaults registers every key so env vars and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("urls", d.URLs)
	v.SetDefault("url_file", d.URLFile)
	v.SetDefault("keyword", d.Keyword)
	v.SetDefault("limit", d.Limit)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("timeout_seconds", d.TimeoutSeconds)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("pause_seconds", d.PauseSeconds)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("max_redirects", d.MaxRedirects)
	v.SetDefault("search_endpoint", d.SearchEndpoint)
	v.SetDefault("download_images", d.DownloadImages)
	v.SetDefault("verbose", d.Verbose)
}

// NewViper returns a viper instance with defaults, WIKISCRAP_* env vars and, when
// one is found, a config file. An explicit path that cannot be read is an error;
// a missing file in the search dirs is not.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		for _, dir := range SearchDirs() {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config: %w", ErrInvalid, err)
	}
	return v, nil
}

func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.URLs = splitList(cfg.URLs)
	cfg = cfg.Normalize()
	return cfg, cfg.Validate()
}

// Load reads a single config file on top of the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

func Marshal(cfg Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// Write stores cfg as indented JSON, creating parent directories.
func Write(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// Normalize clamps the result count into the range the search API accepts.
// An out of range limit is not an error.
func (c Config) Normalize() Config {
	c.Limit = search.ClampLimit(c.Limit)
	return c
}

func (c Config) Validate() error {
	switch {
	case c.TimeoutSeconds <= 0:
		return fmt.Errorf("%w: timeout_seconds must be > 0", ErrInvalid)
	case c.PauseSeconds < 0:
		return fmt.Errorf("%w: pause_seconds must be >= 0", ErrInvalid)
	case c.Retries < 0:
		return fmt.Errorf("%w: retries must be >= 0", ErrInvalid)
	case c.MaxRedirects < 1:
		return fmt.Errorf("%w: max_redirects must be >= 1", ErrInvalid)
	}
	return nil
}

// Options maps the config onto the orchestrator's options.
func (c Config) Options(out io.Writer, logger *zap.Logger) app.Options {
	return app.Options{
		URLs:           c.URLs,
		URLFile:        c.URLFile,
		Keyword:        c.Keyword,
		Limit:          c.Limit,
		OutputRoot:     c.OutputDir,
		Timeout:        seconds(c.TimeoutSeconds),
		UserAgent:      c.UserAgent,
		Pause:          seconds(c.PauseSeconds),
		Retries:        c.Retries,
		MaxRedirects:   c.MaxRedirects,
		SearchEndpoint: c.SearchEndpoint,
		DownloadImages: c.DownloadImages,
		Out:            out,
		Logger:         logger,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// splitList accepts both repeated values and comma separated ones.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
