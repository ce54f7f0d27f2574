package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.3.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentAPIVersion    = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	API    APIConfig
}

// CommonConfig contains configuration shared between all services.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Voting     Voting     `koanf:"voting"`
	Alerting   Alerting   `koanf:"alerting"`
}

// APIConfig contains REST API specific configuration.
type APIConfig struct {
	// Version of the api config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int       `koanf:"request_timeout"`
	Server         Server    `koanf:"server"`
	RateLimit      RateLimit `koanf:"rate_limit"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Enable the Redis stats cache.
	Enabled bool `koanf:"enabled"`
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Voting contains community verification configuration.
type Voting struct {
	// Maximum distance in kilometers between a voter and the report.
	ProximityLimitKm float64 `koanf:"proximity_limit_km"`
	// Score at which a report becomes verified.
	VerificationThreshold int `koanf:"verification_threshold"`
	// Flag count at which a report is sent to review.
	FlagThreshold int `koanf:"flag_threshold"`
	// Vote stats cache lifetime in seconds.
	StatsCacheTTL int `koanf:"stats_cache_ttl"`
}

// Alerting contains cluster detection configuration.
type Alerting struct {
	// Cluster radius in meters.
	ClusterRadiusMeters float64 `koanf:"cluster_radius_meters"`
	// Trailing window in hours for reports to count towards a cluster.
	TimeWindowHours int `koanf:"time_window_hours"`
	// Cluster size that produces an alert.
	AlertThreshold int `koanf:"alert_threshold"`
	// Number of concurrent detection workers.
	MaxConcurrent int `koanf:"max_concurrent"`
	// Number of detections that may wait for a worker.
	QueueSize int `koanf:"queue_size"`
	// Detection timeout in milliseconds.
	DetectionTimeout int `koanf:"detection_timeout"`
}

// Server contains HTTP server configuration.
type Server struct {
	// Address to listen on.
	Host string `koanf:"host"`
	// Port to listen on.
	Port int `koanf:"port"`
}

// RateLimit contains per-client rate limiting configuration.
type RateLimit struct {
	// Sustained requests per second per client.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// Maximum burst per client.
	BurstSize int `koanf:"burst_size"`
	// Violations before a client is blocked.
	StrikeLimit int `koanf:"strike_limit"`
	// Block duration in seconds.
	BlockDuration int `koanf:"block_duration"`
}

// StatsCacheDuration returns the stats cache lifetime.
func (v *Voting) StatsCacheDuration() time.Duration {
	return time.Duration(v.StatsCacheTTL) * time.Second
}

// TimeWindow returns the cluster time window.
func (a *Alerting) TimeWindow() time.Duration {
	return time.Duration(a.TimeWindowHours) * time.Hour
}

// DetectionTimeoutDuration returns the detection timeout.
func (a *Alerting) DetectionTimeoutDuration() time.Duration {
	return time.Duration(a.DetectionTimeout) * time.Millisecond
}

// RequestTimeoutDuration returns the request timeout.
func (a *APIConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(a.RequestTimeout) * time.Millisecond
}

// LoadConfig loads the configuration from the default search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".civicwatch",
		homeDir + "/.civicwatch/config",
		"/etc/civicwatch/config",
		"/app/config",
		"config",
		".",
	}

	return LoadConfigFrom(configPaths)
}

// LoadConfigFrom loads the configuration files from the first matching search path.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "api"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	// Each file holds a table named after itself
	var config Config
	if err := k.Unmarshal("common", &config.Common); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling common config: %w", err)
	}

	if err := k.Unmarshal("api", &config.API); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling api config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("api", config.API.Version, CurrentAPIVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	return &config, usedConfigPath, nil
}

// Default returns a configuration with every value set to its default.
func Default() *Config {
	config := &Config{
		Common: CommonConfig{Version: CurrentCommonVersion},
		API:    APIConfig{Version: CurrentAPIVersion},
	}
	config.applyDefaults()

	return config
}

// applyDefaults fills unset values with the standard defaults.
func (c *Config) applyDefaults() {
	setDefault(&c.Common.Debug.LogLevel, "info")
	setDefault(&c.Common.Debug.MaxLogsToKeep, 10)
	setDefault(&c.Common.Debug.MaxLogLines, 100000)

	setDefault(&c.Common.PostgreSQL.Port, 5432)
	setDefault(&c.Common.PostgreSQL.MaxOpenConns, 20)
	setDefault(&c.Common.PostgreSQL.MaxIdleConns, 5)
	setDefault(&c.Common.PostgreSQL.MaxLifetime, 30)
	setDefault(&c.Common.PostgreSQL.MaxIdleTime, 5)

	setDefault(&c.Common.Redis.Port, 6379)

	setDefault(&c.Common.Voting.ProximityLimitKm, 5.0)
	setDefault(&c.Common.Voting.VerificationThreshold, 10)
	setDefault(&c.Common.Voting.FlagThreshold, 5)
	setDefault(&c.Common.Voting.StatsCacheTTL, 300)

	setDefault(&c.Common.Alerting.ClusterRadiusMeters, 1000.0)
	setDefault(&c.Common.Alerting.TimeWindowHours, 24)
	setDefault(&c.Common.Alerting.AlertThreshold, 3)
	setDefault(&c.Common.Alerting.MaxConcurrent, 4)
	setDefault(&c.Common.Alerting.QueueSize, 256)
	setDefault(&c.Common.Alerting.DetectionTimeout, 10000)

	setDefault(&c.API.RequestTimeout, 5000)
	setDefault(&c.API.Server.Host, "0.0.0.0")
	setDefault(&c.API.Server.Port, 8080)
	setDefault(&c.API.RateLimit.RequestsPerSecond, 5.0)
	setDefault(&c.API.RateLimit.BurstSize, 10)
	setDefault(&c.API.RateLimit.StrikeLimit, 10)
	setDefault(&c.API.RateLimit.BlockDuration, 60)
}

// setDefault assigns def when the value is the zero value.
func setDefault[T comparable](value *T, def T) {
	var zero T
	if *value == zero {
		*value = def
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/civicwatch/civicwatch/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
