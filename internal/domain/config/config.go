package config

import (
	"time"
)

type Config struct {
	Env string `mapstructure:"env"`

	Site    SiteConfig    `mapstructure:"site"`
	Content ContentConfig `mapstructure:"content"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	Otel    OtelConfig    `mapstructure:"otel"`
	Podcast PodcastConfig `mapstructure:"podcast"`
	Events  EventsConfig  `mapstructure:"events"`
}

type SiteConfig struct {
	Addr         string `mapstructure:"addr"`
	Dir          string `mapstructure:"dir"`
	StaticDir    string `mapstructure:"staticDir"`
	TemplatesDir string `mapstructure:"templatesDir"`
	BaseURL      string `mapstructure:"baseURL"`
	TimeZone     string `mapstructure:"timeZone"`
}

type ContentConfig struct {
	OverrideFile string        `mapstructure:"overrideFile"`
	CacheTTL     time.Duration `mapstructure:"cacheTTL"`
	SeedFile     string        `mapstructure:"seedFile"`

	Connection ContentConnection `mapstructure:"connection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	CacheDB  int    `mapstructure:"cacheDB"`
	LockDB   int    `mapstructure:"lockDB"`
}

type KafkaConfig struct {
	Seeds         []string `mapstructure:"seeds"`
	Topic         string   `mapstructure:"topic"`
	ConsumerGroup string   `mapstructure:"consumerGroup"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type OtelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"serviceName"`
}

type PodcastConfig struct {
	Addr      string        `mapstructure:"addr"`
	FeedURL   string        `mapstructure:"feedURL"`
	CacheTTL  time.Duration `mapstructure:"cacheTTL"`
	UserAgent string        `mapstructure:"userAgent"`
}

type EventsConfig struct {
	CalendarAPIBase string        `mapstructure:"calendarAPIBase"`
	SyncEvery       time.Duration `mapstructure:"syncEvery"`
	SyncLockTTL     time.Duration `mapstructure:"syncLockTTL"`
}

func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Seeds) > 0 && c.Kafka.Topic != ""
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) Neo4jEnabled() bool {
	return c.Neo4j.URI != ""
}
