package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/callwise/flow-version-service/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the full application configuration.
type AppConfig struct {
	File     string         `yaml:"-"` // config file path, never serialized
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	Security SecurityConfig `yaml:"security"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is a zapcore level name, see zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File is the log file path, empty means stderr only
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production switches to JSON output
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// RunMode is the gin run mode
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort is the listen address
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout in seconds
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout in seconds
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// SecurityConfig configures actor token verification.
type SecurityConfig struct {
	// AuthTokenKey signs and verifies actor tokens
	AuthTokenKey string `yaml:"auth-token-key" default:"flow-version-auth-token"`
	// TokenExpiry supports formats like 7d, 24h, 30m
	TokenExpiry string `yaml:"token-expiry" default:"365d"`
	// AuthEnabled turns actor token verification on or off
	AuthEnabled bool `yaml:"auth-enabled" default:"true"`
}

// DatabaseConfig configures the version store database.
type DatabaseConfig struct {
	// Type is one of sqlite, mysql, postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path is the sqlite database file path
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName for mysql/postgres
	UserName string `yaml:"username"`
	// Password for mysql/postgres
	Password string `yaml:"password"`
	// Host for mysql/postgres
	Host string `yaml:"host"`
	// Name is the database name
	Name string `yaml:"name"`
	// TablePrefix prepends every table name
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate runs schema migration at startup
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset for mysql
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime for mysql
	ParseTime bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns caps idle pooled connections
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns caps open connections
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime supports formats like 30m, 1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime supports formats like 10m, 1h
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings holds request handling defaults.
type AppSettings struct {
	// DefaultPageSize for history listings
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize caps requested page sizes
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout in seconds for request contexts
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// DefaultLang is the response message language, en or zh-cn
	DefaultLang string `yaml:"default-lang" default:"en"`
}

// ArchiveConfig configures the scheduled archival sweep and its default
// policy. On-demand runs supply their own policy in the request body.
type ArchiveConfig struct {
	// Enabled turns the scheduled sweep on or off
	Enabled bool `yaml:"enabled" default:"true"`
	// Cron is a robfig/cron expression for the sweep schedule
	Cron string `yaml:"cron" default:"0 30 3 * * *"`
	// RetainLatestN newest versions are never archived by the sweep
	RetainLatestN int `yaml:"retain-latest-n" default:"20"`
	// RetainDurationDays keeps versions newer than this many days
	RetainDurationDays int `yaml:"retain-duration-days" default:"90"`
	// ProtectRollbackTargets keeps targets of active rollbacks
	ProtectRollbackTargets bool `yaml:"protect-rollback-targets" default:"true"`
}

// TracerConfig configures request tracing.
type TracerConfig struct {
	// Enabled turns trace ID propagation on or off
	Enabled bool `yaml:"enabled" default:"true"`
	// Header carries inbound trace IDs, defaults to X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig loads configuration from a YAML file, applying struct defaults
// before and after parsing so partially filled files still get defaults.
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save writes the configuration back to its file.
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetTokenExpiry parses the configured token expiry.
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil {
		return expiry
	}
	return 365 * 24 * time.Hour
}
