// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "TASKMANAGER"
	EnvConfig  = "TASKMANAGER_CONFIG"
	configName = "config"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendInMemory = "inmemory"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Sessions   SessionsConfig   `mapstructure:"sessions"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustProxy makes X-Forwarded-Proto decide whether cookies are Secure.
	TrustProxy   bool  `mapstructure:"trust_proxy"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // mongo, postgres or inmemory
}

type SessionsConfig struct {
	Type       string        `mapstructure:"type"` // redis, mongo or inmemory
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

type AuthConfig struct {
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	Bootstrap  BootstrapUser `mapstructure:"bootstrap"`
}

// BootstrapUser is created at startup when Email is set and no account
// with that email exists yet. Role has no default.
type BootstrapUser struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Role     string `mapstructure:"role"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.host", "")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("logging.development", false)

	v.SetDefault("repository.type", BackendMongo)

	v.SetDefault("sessions.type", BackendMongo)
	v.SetDefault("sessions.ttl", 7*24*time.Hour)
	v.SetDefault("sessions.cookie_name", "sid")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.bootstrap.email", "")
	v.SetDefault("auth.bootstrap.password", "")
	v.SetDefault("auth.bootstrap.name", "")
	v.SetDefault("auth.bootstrap.role", "")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "taskmanager")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.query_timeout", 5*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_origins", []string{})

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// Load reads, in increasing priority: defaults, config.yml (or the file
// named by path / TASKMANAGER_CONFIG), .env and the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by the first deployment of the service
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding PORT: %w", err)
	}
	if err := v.BindEnv("mongo.uri", EnvPrefix+"_MONGO_URI", "MONGO_URI"); err != nil {
		return nil, fmt.Errorf("binding MONGO_URI: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Repository.Type {
	case BackendMongo, BackendPostgres, BackendInMemory:
	default:
		errs = append(errs, fmt.Errorf("repository.type: unknown backend %q", c.Repository.Type))
	}
	switch c.Sessions.Type {
	case BackendRedis, BackendMongo, BackendInMemory:
	default:
		errs = append(errs, fmt.Errorf("sessions.type: unknown backend %q", c.Sessions.Type))
	}
	if c.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("sessions.ttl must be positive"))
	}
	if strings.TrimSpace(c.Sessions.CookieName) == "" {
		errs = append(errs, errors.New("sessions.cookie_name is required"))
	}
	if c.Auth.Bootstrap.Email != "" {
		if c.Auth.Bootstrap.Password == "" {
			errs = append(errs, errors.New("auth.bootstrap.password is required with auth.bootstrap.email"))
		}
		switch strings.ToLower(c.Auth.Bootstrap.Role) {
		case "admin", "user":
		default:
			errs = append(errs, fmt.Errorf("auth.bootstrap.role must be admin or user, got %q", c.Auth.Bootstrap.Role))
		}
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.UsesMongo() && c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri (MONGO_URI) is required for the mongo backend"))
	}
	if c.Repository.Type == BackendPostgres && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for the postgres backend"))
	}
	if c.Sessions.Type == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis session backend"))
	}

	return errors.Join(errs...)
}

func (c *Config) UsesMongo() bool {
	return c.Repository.Type == BackendMongo || c.Sessions.Type == BackendMongo
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
