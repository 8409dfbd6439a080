package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Output   OutputConfig   `mapstructure:"output"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// ColorConfig maps log levels to console colors.
type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
	Fatal string `mapstructure:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"log_file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

// EngineConfig bounds the concurrency of the detection phase.
type EngineConfig struct {
	WorkerConcurrency int `mapstructure:"worker_concurrency"`
}

// AuditConfig holds settings for the read/build phase.
type AuditConfig struct {
	// ProgressInterval is the number of records between progress log lines.
	ProgressInterval int `mapstructure:"progress_interval"`
	// MaxLineBytes caps the scanner buffer for a single record line.
	MaxLineBytes int `mapstructure:"max_line_bytes"`
}

// OutputConfig holds settings for report artifacts.
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

// PostgresConfig holds settings for the optional results sink.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// SetDefaults registers defaults so the tool runs with no config file at all.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "relcheck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")
	v.SetDefault("engine.worker_concurrency", 4)
	v.SetDefault("audit.progress_interval", 5_000_000)
	v.SetDefault("audit.max_line_bytes", 1<<20)
	v.SetDefault("output.directory", "./output")
}

// Validate checks the configuration for values the run cannot proceed with.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Engine.WorkerConcurrency < 0 {
		return fmt.Errorf("engine.worker_concurrency must not be negative, got %d", c.Engine.WorkerConcurrency)
	}
	if c.Audit.ProgressInterval <= 0 {
		return fmt.Errorf("audit.progress_interval must be positive, got %d", c.Audit.ProgressInterval)
	}
	if c.Audit.MaxLineBytes <= 0 {
		return fmt.Errorf("audit.max_line_bytes must be positive, got %d", c.Audit.MaxLineBytes)
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("configuration not initialized, call config.Load() in the root command")
	}
	return instance
}
