package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points the console at the printer backend service.
type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	PageLimit int
}

type SessionConfig struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type FleetConfig struct {
	RefreshInterval   time.Duration
	LowTonerThreshold int
	StatusConcurrency int
	RedirectDelay     time.Duration
	FeedSize          int
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	Retention     time.Duration
	PruneSchedule string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Backend     BackendConfig
	Session     SessionConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Archive     ArchiveConfig
	Fleet       FleetConfig
	Worker      WorkerConfig
}

func (c *AppConfig) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *AppConfig) PostgresEnabled() bool {
	return c.Postgres.DSN != ""
}

func (c *AppConfig) ArchiveEnabled() bool {
	return c.Archive.Endpoint != ""
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PRINTHUB")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseurl is required")
	}
	if c.Environment == "production" && c.Session.Secret == defaultSessionSecret {
		return fmt.Errorf("session.secret must be set in production")
	}
	if c.Fleet.LowTonerThreshold < 1 || c.Fleet.LowTonerThreshold > 100 {
		return fmt.Errorf("fleet.lowtonerthreshold must be within 1-100, got %d", c.Fleet.LowTonerThreshold)
	}
	if c.Fleet.RefreshInterval <= 0 {
		return fmt.Errorf("fleet.refreshinterval must be positive, got %s", c.Fleet.RefreshInterval)
	}
	return nil
}
