package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "HKM"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("site.addr", ":8080")
	v.SetDefault("site.dir", "site")
	v.SetDefault("site.staticDir", "site/static")
	v.SetDefault("site.templatesDir", "")
	v.SetDefault("site.baseURL", "https://hiskingdomministry.no")
	v.SetDefault("site.timeZone", "Europe/Oslo")

	v.SetDefault("content.overrideFile", "hkm_content_config.yaml")
	v.SetDefault("content.cacheTTL", 5*time.Minute)
	v.SetDefault("content.connection.backend", BackendSurreal)
	v.SetDefault("content.connection.endpoint", PlaceholderEndpoint)
	v.SetDefault("content.connection.namespace", "hkm")
	v.SetDefault("content.connection.database", "site")
	v.SetDefault("content.connection.user", "")
	v.SetDefault("content.connection.password", "")
	v.SetDefault("content.connection.redisDB", 3)
	v.SetDefault("content.seedFile", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.cacheDB", 0)
	v.SetDefault("redis.lockDB", 1)

	v.SetDefault("kafka.seeds", []string{})

	v.SetDefault("kafka.topic", "hkm.content.changes")
	v.SetDefault("kafka.consumerGroup", "hkm-site")

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.user", "")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "pages")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.serviceName", "hkm-site")

	v.SetDefault("podcast.addr", ":8081")
	v.SetDefault("podcast.feedURL", "https://anchor.fm/s/f7a13dec/podcast/rss")
	v.SetDefault("podcast.cacheTTL", 10*time.Minute)
	v.SetDefault("podcast.userAgent", "hkm-podcast-proxy")

	v.SetDefault("events.calendarAPIBase", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("events.syncEvery", 0)
	v.SetDefault("events.syncLockTTL", 2*time.Minute)
}

// Load layers compiled-in defaults, an optional config file and HKM_* env vars.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}
