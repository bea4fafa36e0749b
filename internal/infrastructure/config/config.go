package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported local store drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	User      UserConfig      `mapstructure:"user"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Evaluator EvaluatorConfig `mapstructure:"evaluator"`
	Practice  PracticeConfig  `mapstructure:"practice"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Log       LogConfig       `mapstructure:"log"`
}

// UserConfig identifies the local account all records belong to.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// DatabaseConfig holds local store configuration. SQLite is the default;
// postgres covers shared installs and uses the server fields.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RemoteConfig holds the backend progress API configuration.
type RemoteConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	HealthPath   string        `mapstructure:"health_path"`
	CallTimeout  time.Duration `mapstructure:"call_timeout"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	AuthToken    string        `mapstructure:"auth_token"`
}

// EvaluatorConfig holds the sentence-scoring service configuration and the
// weights of the local fallback heuristic.
type EvaluatorConfig struct {
	URL                  string        `mapstructure:"url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	WordPresencePoints   int           `mapstructure:"word_presence_points"`
	LengthPoints         int           `mapstructure:"length_points"`
	PunctuationPoints    int           `mapstructure:"punctuation_points"`
	CapitalizationPoints int           `mapstructure:"capitalization_points"`
	ContextPoints        int           `mapstructure:"context_points"`
	MinWords             int           `mapstructure:"min_words"`
	PassScore            int           `mapstructure:"pass_score"`
}

// PracticeConfig bounds a practice session.
type PracticeConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// SyncConfig controls the periodic sync watcher.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("user.id", "local")

	// Database defaults
	viper.SetDefault("database.driver", DriverSQLite)
	viper.SetDefault("database.path", "data/wordtrack.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "wordtrack")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")

	// Remote store defaults
	viper.SetDefault("remote.base_url", "http://localhost:8080")
	viper.SetDefault("remote.health_path", "/healthz")
	viper.SetDefault("remote.call_timeout", 10*time.Second)
	viper.SetDefault("remote.probe_timeout", 2*time.Second)

	// Evaluator defaults; the heuristic weights mirror the mobile client.
	viper.SetDefault("evaluator.url", "http://localhost:8081/evaluate")
	viper.SetDefault("evaluator.timeout", 8*time.Second)
	viper.SetDefault("evaluator.word_presence_points", 40)
	viper.SetDefault("evaluator.length_points", 20)
	viper.SetDefault("evaluator.punctuation_points", 10)
	viper.SetDefault("evaluator.capitalization_points", 10)
	viper.SetDefault("evaluator.context_points", 20)
	viper.SetDefault("evaluator.min_words", 5)
	viper.SetDefault("evaluator.pass_score", 60)

	viper.SetDefault("practice.queue_size", 10)
	viper.SetDefault("sync.interval", 5*time.Minute)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// DatabaseDSN returns the driver name and DSN for the configured local store.
func (c *Config) DatabaseDSN() (driver, dsn string, err error) {
	switch c.Database.Driver {
	case DriverSQLite, "sqlite":
		return DriverSQLite, c.Database.Path, nil
	case DriverPostgres:
		return DriverPostgres, fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}
