package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		TTL      string `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`
	Schemes struct {
		File string `mapstructure:"file"`
		TTL  string `mapstructure:"ttl"`
	} `mapstructure:"schemes"`
	Questionnaire struct {
		Skip []string `mapstructure:"skip"`
	} `mapstructure:"questionnaire"`
	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
	HTTP struct {
		RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
	} `mapstructure:"http"`
}

// EnvPrefix namespaces environment overrides, e.g. SCHEMES_REDIS_ADDR.
const EnvPrefix = "SCHEMES"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "30m")
	v.SetDefault("postgres.url", "")
	v.SetDefault("schemes.file", "")
	v.SetDefault("schemes.ttl", "10m")
	v.SetDefault("questionnaire.skip", []string{"q_21", "q_21_1", "q_22", "q_23"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("http.rate_limit_per_minute", 120)
}

// Load reads YAML config from path, then applies SCHEMES_* environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// ValidationError reports the first configuration field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks the values Load cannot reject on its own.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return ValidationError{Field: "server.port", Message: "port cannot be empty"}
	}
	for field, raw := range map[string]string{"redis.ttl": c.Redis.TTL, "schemes.ttl": c.Schemes.TTL} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return ValidationError{Field: field, Message: fmt.Sprintf("invalid duration %q", raw)}
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if c.HTTP.RateLimitPerMinute < 0 {
		return ValidationError{Field: "http.rate_limit_per_minute", Message: "must not be negative"}
	}
	return nil
}
