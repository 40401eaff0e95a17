package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const ProductionEnvironment = "production"

type (
	AppConfig struct {
		Name        string `mapstructure:"name"`
		Version     string `mapstructure:"version"`
		Port        int    `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
		PathPrefix  string `mapstructure:"path_prefix"` // Optional, can be used to set a base path for the application
		// RequestTimeout bounds every handler, in seconds.
		RequestTimeout  int `mapstructure:"request_timeout"`
		ShutdownTimeout int `mapstructure:"shutdown_timeout"`
	}

	LoggerConfig struct {
		Level       string `mapstructure:"level"`
		Format      string `mapstructure:"format"`
		FilePath    string `mapstructure:"filepath"`
		MaxSize     int    `mapstructure:"max_size"`
		MaxAge      int    `mapstructure:"max_age"`
		MaxBackups  int    `mapstructure:"max_backups"`
		Compress    bool   `mapstructure:"compress"`
		LocalTime   bool   `mapstructure:"localTime"`
		Environment string
	}

	PostgresConfig struct {
		Host              string `mapstructure:"host"`
		Port              int    `mapstructure:"port"`
		Username          string `mapstructure:"username"`
		Password          string `mapstructure:"password"`
		Database          string `mapstructure:"database"`
		SSLMode           string `mapstructure:"sslmode"`
		ConnectionString  string `mapstructure:"connection_string"`
		ConnectTimeout    int    `mapstructure:"connect_timeout"`
		ReadHost          string `mapstructure:"read_host"`
		ReadPort          int    `mapstructure:"read_port"`
		MaxConns          int32  `mapstructure:"max_conns"`
		MinConns          int32  `mapstructure:"min_conns"`
		ConnMaxLifetime   int    `mapstructure:"conn_max_lifetime"`
		ConnMaxIdleTime   int    `mapstructure:"conn_max_idle_time"`
		HealthCheckPeriod int    `mapstructure:"health_check_period"`
	}

	MongoConfig struct {
		URI            string `mapstructure:"uri"`
		Database       string `mapstructure:"database"`
		Collection     string `mapstructure:"collection"`
		ConnectTimeout int    `mapstructure:"connect_timeout"`
		MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
		MinPoolSize    uint64 `mapstructure:"min_pool_size"`
	}

	RedisConfig struct {
		Enabled    bool   `mapstructure:"enabled"`
		Type       string `mapstructure:"type"` // NORMAL or SENTINEL
		Addrs      string `mapstructure:"addrs"`
		MasterName string `mapstructure:"master_name"`
		Password   string `mapstructure:"password"`
	}

	CORSConfig struct {
		Enabled          bool     `mapstructure:"enabled"`
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	}

	JWTConfig struct {
		Secret string `mapstructure:"secret"`
		// Expiry in hours.
		Expiry   int    `mapstructure:"expiry"`
		Issuer   string `mapstructure:"issuer"`
		Audience string `mapstructure:"audience"`
	}

	CacheConfig struct {
		Type       string `mapstructure:"type"` // LRU or FIFO
		Capacity   int    `mapstructure:"capacity"`
		DefaultTTL int    `mapstructure:"default_ttl"`
		RedisTTL   int    `mapstructure:"redis_ttl"`
	}

	MetricsConfig struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	}

	RateLimitConfig struct {
		Enabled bool `mapstructure:"enabled"`
		// Window in seconds, shared by the global and the auth limiter.
		Window  int `mapstructure:"window"`
		Max     int `mapstructure:"max"`
		AuthMax int `mapstructure:"auth_max"`
	}

	ContactsConfig struct {
		Backend  string `mapstructure:"backend"` // postgres, mongodb or memory
		SeedDemo bool   `mapstructure:"seed_demo"`
	}

	TelemetryConfig struct {
		Endpoint string `mapstructure:"endpoint"`
		Insecure bool   `mapstructure:"insecure"`
	}

	ClientConfig struct {
		BaseURL          string `mapstructure:"base_url"`
		Production       bool   `mapstructure:"production"`
		RequestTimeout   int    `mapstructure:"request_timeout"` // seconds
		RetryAttempts    int    `mapstructure:"retry_attempts"`
		RetryDelay       int    `mapstructure:"retry_delay"` // milliseconds
		CacheTTL         int    `mapstructure:"cache_ttl"`   // seconds
		CacheCapacity    int    `mapstructure:"cache_capacity"`
		MaxLoginAttempts int    `mapstructure:"max_login_attempts"`
		RefreshThreshold int    `mapstructure:"refresh_threshold"` // seconds
		RefreshInterval  int    `mapstructure:"refresh_interval"`  // seconds
		StoragePath      string `mapstructure:"storage_path"`
	}
)

type Env struct {
	AppConfig       AppConfig       `mapstructure:"app"`
	LoggerConfig    LoggerConfig    `mapstructure:"logging"`
	PostgresConfig  PostgresConfig  `mapstructure:"postgres"`
	MongoConfig     MongoConfig     `mapstructure:"mongo"`
	RedisConfig     RedisConfig     `mapstructure:"redis"`
	CORSConfig      CORSConfig      `mapstructure:"cors"`
	JWTConfig       JWTConfig       `mapstructure:"jwt"`
	CacheConfig     CacheConfig     `mapstructure:"cache"`
	MetricsConfig   MetricsConfig   `mapstructure:"metrics"`
	RateLimitConfig RateLimitConfig `mapstructure:"rate_limit"`
	ContactsConfig  ContactsConfig  `mapstructure:"contacts"`
	TelemetryConfig TelemetryConfig `mapstructure:"telemetry"`
	ClientConfig    ClientConfig    `mapstructure:"client"`
}

// IsProduction reports whether the service runs in production mode.
func (e *Env) IsProduction() bool {
	return e.AppConfig.Environment == ProductionEnvironment
}

var (
	env     *Env
	envOnce sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "contact-enrichment-api")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.port", 3001)
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.path_prefix", "/api")
	v.SetDefault("app.request_timeout", 30)
	v.SetDefault("app.shutdown_timeout", 10)

	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.filepath", "logs/app.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.max_backups", 3)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", "outlook_addin")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.connect_timeout", 30)

	v.SetDefault("mongo.database", "outlook_addin")
	v.SetDefault("mongo.collection", "contacts")
	v.SetDefault("mongo.connect_timeout", 30)

	v.SetDefault("redis.type", "NORMAL")
	v.SetDefault("redis.addrs", "localhost:6379")

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Correlation-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("jwt.secret", DevelopmentJWTSecret)
	v.SetDefault("jwt.expiry", 24)
	v.SetDefault("jwt.issuer", "outlook-addin-api")
	v.SetDefault("jwt.audience", "outlook-addin-client")

	v.SetDefault("cache.type", "LRU")
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.default_ttl", 300)
	v.SetDefault("cache.redis_ttl", 300)

	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.window", 900)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.auth_max", 5)

	v.SetDefault("contacts.backend", "postgres")

	v.SetDefault("client.base_url", "http://localhost:3001/api")
	v.SetDefault("client.request_timeout", 30)
	v.SetDefault("client.retry_attempts", 3)
	v.SetDefault("client.retry_delay", 1000)
	v.SetDefault("client.cache_ttl", 300)
	v.SetDefault("client.cache_capacity", 500)
	v.SetDefault("client.max_login_attempts", 5)
	v.SetDefault("client.refresh_threshold", 300)
	v.SetDefault("client.refresh_interval", 300)
	v.SetDefault("client.storage_path", ".addin/session.json")
}

// DevelopmentJWTSecret is only accepted outside production.
const DevelopmentJWTSecret = "your-super-secret-jwt-key-change-in-production"

// LoadEnv reads config.yaml from the given directories (./config when none
// are given) and applies ENV_* overrides. A missing file is not an error;
// defaults cover every key.
func LoadEnv(paths ...string) (*Env, error) {
	v := viper.New()
	v.SetConfigName("config") // Config file name without extension
	v.SetConfigType("yaml")   // Config file type
	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	/*
	   AutomaticEnv will check for an environment variable any time a viper.Get request is made.
	   It will apply the following rules.
	       It will check for an environment variable with a name matching the key uppercased and prefixed with the EnvPrefix if set.
	*/
	v.AutomaticEnv()
	v.SetEnvPrefix("env") // will be uppercased automatically
	v.SetEnvKeyReplacer(
		strings.NewReplacer(".", "_"),
	) // app.port -> ENV_APP_PORT
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Secrets usually come from the deployment environment without the prefix.
	_ = v.BindEnv("jwt.secret", "ENV_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("postgres.connection_string", "ENV_POSTGRES_CONNECTION_STRING", "DATABASE_URL")

	var out Env
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	out.LoggerConfig.Environment = out.AppConfig.Environment // Set the logger environment from app config
	if out.IsProduction() {
		out.LoggerConfig.Level = "info" // Default to info level in production
		out.ClientConfig.Production = true
	}
	if out.ClientConfig.Production && out.ClientConfig.RequestTimeout > 15 {
		out.ClientConfig.RequestTimeout = 15
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Env) validate() error {
	if e.IsProduction() && (e.JWTConfig.Secret == DevelopmentJWTSecret || len(e.JWTConfig.Secret) < 32) {
		return errors.New("jwt.secret must be set to at least 32 bytes in production")
	}
	switch e.ContactsConfig.Backend {
	case "postgres", "mongodb", "memory":
	default:
		return fmt.Errorf("unsupported contacts.backend %q", e.ContactsConfig.Backend)
	}
	return nil
}

func GetEnv() *Env {
	envOnce.Do(func() {
		loaded, err := LoadEnv()
		if err != nil {
			log.Fatalf("Unable to load configuration, %v", err)
		}
		env = loaded
		printStartupConfig(env)
	})
	return env
}

func printStartupConfig(env *Env) {
	line := strings.Repeat("=", 40)
	fmt.Println(line)
	fmt.Println("🚀 Application Configuration")
	fmt.Println(line)

	fmt.Printf("%-15s: %s\n", "App Name", env.AppConfig.Name)
	fmt.Printf("%-15s: %s\n", "Version", env.AppConfig.Version)
	fmt.Printf("%-15s: %s\n", "Environment", env.AppConfig.Environment)
	fmt.Printf("%-15s: %d\n", "Port", env.AppConfig.Port)
	fmt.Printf("%-15s: %s\n", "Log Level", env.LoggerConfig.Level)
	fmt.Printf("%-15s: %s\n", "Contacts", env.ContactsConfig.Backend)
	fmt.Printf("%-15s: %t\n", "Redis", env.RedisConfig.Enabled)

	fmt.Println(line)
}
