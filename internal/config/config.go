package config

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Backend    BackendConfig    `yaml:"backend" mapstructure:"backend"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Signals    SignalsConfig    `yaml:"signals" mapstructure:"signals"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// BackendConfig points the client at the HealthMap REST API.
type BackendConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"` // 0 = no client-side timeout
	MaxAttempts  int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the read-only view server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SignalsConfig configures health signal listings.
type SignalsConfig struct {
	DefaultDays int `yaml:"default_days" mapstructure:"default_days"`
}

// ExportConfig configures where report files are written.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// MonitoringConfig configures data-quality alerting.
type MonitoringConfig struct {
	WebhookURL            string `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs     int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	ElevatedAreaThreshold int    `yaml:"elevated_area_threshold" mapstructure:"elevated_area_threshold"`
	CriticalSiteThreshold int    `yaml:"critical_site_threshold" mapstructure:"critical_site_threshold"`
	BreakerThreshold      int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"` // 0 = never skip checks
	BreakerResetSecs      int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTHMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.timeout_secs", 0)
	v.SetDefault("backend.max_attempts", 1)
	v.SetDefault("backend.rate_limit_rps", 20)
	v.SetDefault("backend.user_agent", "healthmap-cli/1.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("signals.default_days", 7)
	v.SetDefault("export.dir", ".")
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.elevated_area_threshold", 1)
	v.SetDefault("monitoring.critical_site_threshold", 1)
	v.SetDefault("monitoring.breaker_threshold", 3)
	v.SetDefault("monitoring.breaker_reset_secs", 900)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields a command mode depends on are usable.
// Mode is one of "client", "serve" or "watch".
func (c *Config) Validate(mode string) error {
	var errs []string

	u, err := url.Parse(c.Backend.BaseURL)
	if c.Backend.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "backend.base_url must be an absolute URL")
	}
	if c.Backend.MaxAttempts < 1 {
		errs = append(errs, "backend.max_attempts must be at least 1")
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, "backend.timeout_secs must not be negative")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "watch":
		if c.Monitoring.CheckIntervalSecs <= 0 {
			errs = append(errs, "monitoring.check_interval_secs must be positive")
		}
		if c.Monitoring.BreakerThreshold < 0 {
			errs = append(errs, "monitoring.breaker_threshold must not be negative")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
