// Package config loads settings from an optional YAML file and
// RFC2TEXI_* environment variables, with environment taking
// precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Output
	OutputDir   string `mapstructure:"output_dir"`
	CacheDir    string `mapstructure:"cache_dir"`
	DirCategory string `mapstructure:"dir_category"`

	// Server
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Archive fetching
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	FetchRetries int           `mapstructure:"fetch_retries"`

	// Conversion policy
	UnresolvedFatal bool `mapstructure:"unresolved_fatal"`

	// Specs is the document set for sync runs.
	Specs []SpecRef `mapstructure:"specs"`
}

// SpecRef names one document to fetch and convert. Exactly one of
// RFC, Draft, or URL must be set.
type SpecRef struct {
	RFC   int    `mapstructure:"rfc" yaml:"rfc,omitempty"`
	Draft string `mapstructure:"draft" yaml:"draft,omitempty"`
	URL   string `mapstructure:"url" yaml:"url,omitempty"`

	// Name overrides the cache and output base name. Required for
	// URL specs, optional otherwise.
	Name string `mapstructure:"name" yaml:"name,omitempty"`
}

func (s SpecRef) String() string {
	switch {
	case s.RFC > 0:
		return fmt.Sprintf("rfc%d", s.RFC)
	case s.Draft != "":
		return s.Draft
	case s.URL != "":
		if s.Name != "" {
			return s.Name
		}
		return s.URL
	}
	return "(empty spec)"
}

// Load reads configuration. cfgFile may be empty, in which case
// rfc2texi.yaml is looked up in the working directory and under
// $HOME/.rfc2texi, and a missing file is fine.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("output_dir", "info")
	v.SetDefault("cache_dir", "xml")
	v.SetDefault("dir_category", "")
	v.SetDefault("port", "8085")
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", 10485760) // 10MB
	v.SetDefault("job_ttl", 1*time.Hour)
	v.SetDefault("fetch_timeout", 30*time.Second)
	v.SetDefault("fetch_retries", 3)
	v.SetDefault("unresolved_fatal", false)

	v.SetEnvPrefix("RFC2TEXI")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("rfc2texi")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rfc2texi")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.FetchRetries <= 0 {
		cfg.FetchRetries = 3
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required")
	}
	for i, s := range c.Specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("specs[%d]: %w", i, err)
		}
	}
	return nil
}

func (s SpecRef) Validate() error {
	set := 0
	if s.RFC != 0 {
		if s.RFC < 0 {
			return fmt.Errorf("rfc number must be positive, got %d", s.RFC)
		}
		set++
	}
	if s.Draft != "" {
		set++
	}
	if s.URL != "" {
		if s.Name == "" {
			return fmt.Errorf("url spec %q needs a name", s.URL)
		}
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of rfc, draft, or url must be set")
	}
	return nil
}
