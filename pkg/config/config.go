package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the filterd service configuration. Defaults cover a local
// setup; every key can be overridden via FILTERD_* environment variables.
type Config struct {
	Listen  string        `mapstructure:"listen"`
	Env     string        `mapstructure:"env"`
	Logging LoggingConfig `mapstructure:"logging"`
	Backend BackendConfig `mapstructure:"backend"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Rabbit  RabbitConfig  `mapstructure:"rabbit"`
	Suggest SuggestConfig `mapstructure:"suggest"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RabbitConfig struct {
	Url string `mapstructure:"url"`
}

type SuggestConfig struct {
	Debounce  time.Duration `mapstructure:"debounce"`
	MinPrefix int           `mapstructure:"minPrefix"`
	CacheSize int           `mapstructure:"cacheSize"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		filename := filepath.Base(path)
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.BindEnv("listen", "FILTERD_LISTEN")
	v.BindEnv("env", "FILTERD_ENV")
	v.BindEnv("logging.level", "FILTERD_LOG_LEVEL")
	v.BindEnv("backend.baseUrl", "FILTERD_BACKEND_URL")
	v.BindEnv("redis.addr", "FILTERD_REDIS_ADDR")
	v.BindEnv("redis.password", "FILTERD_REDIS_PASSWORD")
	v.BindEnv("rabbit.url", "FILTERD_RABBIT_URL")

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if conf.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.baseUrl is required")
	}
	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("env", "dev")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("redis.ttl", 30*24*time.Hour)
	v.SetDefault("suggest.debounce", 300*time.Millisecond)
	v.SetDefault("suggest.minPrefix", 3)
	v.SetDefault("suggest.cacheSize", 512*1024)
}
