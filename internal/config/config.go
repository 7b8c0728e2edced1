package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile    = "file"
	BackendMongoDB = "mongodb"
	BackendRedis   = "redis"
)

// EnvPrefix prefixes every environment override, e.g. REPORTCARD_DATA_FILE or
// REPORTCARD_MONGO_URL.
const EnvPrefix = "REPORTCARD"

type Config struct {
	Backend           string      `mapstructure:"backend"`
	DataFile          string      `mapstructure:"data_file"`
	HTTPAddr          string      `mapstructure:"http_addr"`
	RequestsPerMinute int         `mapstructure:"requests_per_minute"`
	Mongo             MongoConfig `mapstructure:"mongo"`
	Redis             RedisConfig `mapstructure:"redis"`
	Admin             AdminConfig `mapstructure:"admin"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	JWTSecret    string `mapstructure:"jwt_secret"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:           BackendFile,
		DataFile:          "students.json",
		HTTPAddr:          ":8080",
		RequestsPerMinute: 100,
		Mongo: MongoConfig{
			Database: "reportcard",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
	}
}

// defaults lists every key so that viper resolves environment overrides for
// all of them.
func defaults(cfg *Config) map[string]any {
	return map[string]any{
		"backend":             cfg.Backend,
		"data_file":           cfg.DataFile,
		"http_addr":           cfg.HTTPAddr,
		"requests_per_minute": cfg.RequestsPerMinute,
		"mongo.url":           cfg.Mongo.URL,
		"mongo.database":      cfg.Mongo.Database,
		"redis.addr":          cfg.Redis.Addr,
		"redis.password":      cfg.Redis.Password,
		"redis.db":            cfg.Redis.DB,
		"admin.username":      cfg.Admin.Username,
		"admin.password_hash": cfg.Admin.PasswordHash,
		"admin.jwt_secret":    cfg.Admin.JWTSecret,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configFile and REPORTCARD_* environment variables, in increasing order of
// precedence.
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	for key, value := range defaults(cfg) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig error: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.DataFile == "" {
			return errors.New("config: data_file is required for the file backend")
		}
	case BackendMongoDB:
		if c.Mongo.URL == "" || c.Mongo.Database == "" {
			return errors.New("config: mongo.url and mongo.database are required for the mongodb backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("config: redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: invalid backend %q (must be %s, %s or %s)", c.Backend, BackendFile, BackendMongoDB, BackendRedis)
	}

	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("config: requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}

	if c.Admin.Username != "" && c.Admin.PasswordHash == "" {
		return errors.New("config: admin.password_hash is required when admin.username is set")
	}

	return nil
}
