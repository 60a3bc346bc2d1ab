package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-author-checker/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DesoConfig holds DeSo node configuration
type DesoConfig struct {
	NodeURL           string `mapstructure:"node_url"`
	PlatformPublicKey string `mapstructure:"platform_public_key"` // Transactor of the author associations and poster of the author NFTs
	AssociationType   string `mapstructure:"association_type"`
	PageLimit         int    `mapstructure:"page_limit"`
}

// AppServiceConfig holds the app service configuration
type AppServiceConfig struct {
	URL string `mapstructure:"url"`
}

// ExpiryConfig holds expiry evaluation configuration
type ExpiryConfig struct {
	AuthorNFTType string `mapstructure:"author_nft_type"` // Expected value of the nft_type post extra data
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	Timeout              time.Duration `mapstructure:"timeout"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	MaxRetryElapsed      time.Duration `mapstructure:"max_retry_elapsed"`
}

// JobConfig holds configuration of a single check run
type JobConfig struct {
	Concurrency int           `mapstructure:"concurrency"`  // Maximum associations checked at the same time
	UnitTimeout time.Duration `mapstructure:"unit_timeout"` // Deadline of a single association check
	Timeout     time.Duration `mapstructure:"timeout"`      // Deadline of the whole run
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL               string        `mapstructure:"url"`
	StreamName        string        `mapstructure:"stream_name"`
	ConsumerName      string        `mapstructure:"consumer_name"`
	MaxReconnects     int           `mapstructure:"max_reconnects"`
	ReconnectWait     time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName    string        `mapstructure:"connection_name"`
	AckWait           time.Duration `mapstructure:"ack_wait"`
	MaxDeliver        int           `mapstructure:"max_deliver"`
	TriggerSubject    string        `mapstructure:"trigger_subject"`
	RevocationSubject string        `mapstructure:"revocation_subject"`
}

// Enabled reports whether a NATS server is configured
func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	TaskQueue                          string  `mapstructure:"task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// ScheduleConfig holds the recurring trigger configuration
type ScheduleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ID         string `mapstructure:"id"`
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"` // Checker only
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds

	// CORSAllowedOrigins is empty to allow every origin
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// CheckerConfig holds configuration for the standalone checker
type CheckerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Deso       DesoConfig       `mapstructure:"deso"`
	AppService AppServiceConfig `mapstructure:"app_service"`
	Expiry     ExpiryConfig     `mapstructure:"expiry"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Job        JobConfig        `mapstructure:"job"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// WorkerConfig holds configuration for the Temporal worker
type WorkerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Deso       DesoConfig       `mapstructure:"deso"`
	AppService AppServiceConfig `mapstructure:"app_service"`
	Expiry     ExpiryConfig     `mapstructure:"expiry"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Job        JobConfig        `mapstructure:"job"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Deso       DesoConfig       `mapstructure:"deso"`
	AppService AppServiceConfig `mapstructure:"app_service"`
	Expiry     ExpiryConfig     `mapstructure:"expiry"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Job        JobConfig        `mapstructure:"job"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
}

// EventBridgeConfig holds configuration for event-bridge
type EventBridgeConfig struct {
	BaseConfig `mapstructure:",squash"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Job        JobConfig      `mapstructure:"job"`
}

// LoadCheckerConfig loads configuration for the standalone checker
func LoadCheckerConfig(configFile string, envPath string) (*CheckerConfig, error) {
	v := configureViper("checker", configFile, envPath)

	// Set defaults
	setCheckDefaults(v)
	setNATSDefaults(v, "checker")
	v.SetDefault("schedule.cron", "@daily")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")

	var cfg CheckerConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWorkerConfig loads configuration for the Temporal worker
func LoadWorkerConfig(configFile string, envPath string) (*WorkerConfig, error) {
	v := configureViper("worker", configFile, envPath)

	// Set defaults
	setCheckDefaults(v)
	setNATSDefaults(v, "worker")
	setTemporalDefaults(v)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 10)
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.id", "author-associations-daily-check")
	v.SetDefault("schedule.cron", "@daily")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")

	var cfg WorkerConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 330)
	v.SetDefault("server.idle_timeout", 120)
	setCheckDefaults(v)
	setNATSDefaults(v, "api")
	setTemporalDefaults(v)

	var cfg APIConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEventBridgeConfig loads configuration for event-bridge
func LoadEventBridgeConfig(configFile string, envPath string) (*EventBridgeConfig, error) {
	v := configureViper("event-bridge", configFile, envPath)

	// Set defaults
	setNATSDefaults(v, "event-bridge")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 3)
	setTemporalDefaults(v)
	v.SetDefault("job.timeout", "5m")

	var cfg EventBridgeConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setCheckDefaults(v *viper.Viper) {
	v.SetDefault("deso.node_url", domain.DEFAULT_DESO_NODE_URL)
	v.SetDefault("deso.platform_public_key", domain.DEFAULT_PLATFORM_PUBLIC_KEY)
	v.SetDefault("deso.association_type", domain.DEFAULT_ASSOCIATION_TYPE)
	v.SetDefault("deso.page_limit", 100)
	v.SetDefault("app_service.url", domain.DEFAULT_APP_SERVICE_URL)
	v.SetDefault("expiry.author_nft_type", domain.DEFAULT_AUTHOR_NFT_TYPE)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retry_initial_interval", "1s")
	v.SetDefault("http.retry_max_interval", "10s")
	v.SetDefault("http.max_retry_elapsed", "1m")
	v.SetDefault("job.concurrency", 8)
	v.SetDefault("job.unit_timeout", "1m")
	v.SetDefault("job.timeout", "5m")
}

func setNATSDefaults(v *viper.Viper, service string) {
	v.SetDefault("nats.stream_name", "AUTHOR_ASSOCIATIONS")
	v.SetDefault("nats.consumer_name", "event-bridge")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "author-checker-"+service)
	v.SetDefault("nats.trigger_subject", domain.SUBJECT_CHECK_TRIGGER)
	v.SetDefault("nats.revocation_subject", domain.SUBJECT_ASSOCIATION_REVOKED)
}

func setTemporalDefaults(v *viper.Viper) {
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "author-associations")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 50)
	v.SetDefault("temporal.worker_activities_per_second", 50)
}

// readAndUnmarshal reads the config file if present and decodes it into cfg
func readAndUnmarshal(v *viper.Viper, cfg any) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/checker/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("AUTHOR_CHECKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// DeSo
		"deso.node_url",
		"deso.platform_public_key",
		"deso.association_type",
		"deso.page_limit",
		// App service
		"app_service.url",
		// Expiry
		"expiry.author_nft_type",
		// HTTP
		"http.timeout",
		"http.retry_initial_interval",
		"http.retry_max_interval",
		"http.max_retry_elapsed",
		// Job
		"job.concurrency",
		"job.unit_timeout",
		"job.timeout",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.trigger_subject",
		"nats.revocation_subject",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Schedule
		"schedule.enabled",
		"schedule.id",
		"schedule.cron",
		"schedule.run_on_start",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Metrics
		"metrics.enabled",
		"metrics.address",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
