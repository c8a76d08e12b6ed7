package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting of the auction service.
// Values come from command-line flags, then environment variables
// (DB_HOST, KAFKA_BROKERS, ...), then the defaults declared in Load.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig points at the PostgreSQL database that owns categories,
// auctions, bids, ratings and comments.
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// RedisConfig is shared with users-service: the category cache lives here and
// the access-token blacklist is read from the same database.
type RedisConfig struct {
	Host          string
	Port          string
	Password      string
	DB            int
	CategoriesTTL time.Duration
}

type KafkaConfig struct {
	Brokers      []string
	AuctionTopic string // AUCTION_*, BID_PLACED, RATING_CREATED, COMMENT_CREATED
	UserTopic    string // USER_DELETED, consumed for cascading deletes
	GroupID      string
	MinBytes     int
	MaxBytes     int
}

type JWTConfig struct {
	Secret string // must match users-service
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load parses args (usually os.Args[1:]) and the environment.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("auction-service", pflag.ContinueOnError)

	fs.String("server-host", "0.0.0.0", "HTTP listen host")
	fs.String("server-port", "8081", "HTTP listen port")

	fs.String("db-host", "localhost", "PostgreSQL host")
	fs.String("db-port", "5432", "PostgreSQL port")
	fs.String("db-user", "postgres", "PostgreSQL user")
	fs.String("db-password", "postgres", "PostgreSQL password")
	fs.String("db-name", "auction_service", "PostgreSQL database")
	fs.String("db-sslmode", "disable", "PostgreSQL sslmode")
	fs.Bool("db-auto-migrate", true, "create or update tables on startup")

	fs.String("redis-host", "localhost", "Redis host")
	fs.String("redis-port", "6379", "Redis port")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.Duration("redis-categories-ttl", time.Hour, "category list cache TTL")

	fs.String("kafka-brokers", "localhost:9092", "comma separated Kafka brokers")
	fs.String("kafka-auction-topic", "auction_events", "topic for auction events")
	fs.String("kafka-user-topic", "user_events", "topic with USER_DELETED events")
	fs.String("kafka-group-id", "auction-service-group", "consumer group for user events")
	fs.Int("kafka-min-bytes", 1, "consumer fetch min bytes")
	fs.Int("kafka-max-bytes", 10e6, "consumer fetch max bytes")

	fs.String("jwt-secret", "your-secret-key-change-this-in-production", "HS256 secret shared with users-service")

	fs.String("log-level", "info", "zerolog level")
	fs.String("logstash-addr", "", "optional logstash TCP address")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server-host"),
			Port: v.GetString("server-port"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("db-host"),
			Port:        v.GetString("db-port"),
			User:        v.GetString("db-user"),
			Password:    v.GetString("db-password"),
			DBName:      v.GetString("db-name"),
			SSLMode:     v.GetString("db-sslmode"),
			AutoMigrate: v.GetBool("db-auto-migrate"),
		},
		Redis: RedisConfig{
			Host:          v.GetString("redis-host"),
			Port:          v.GetString("redis-port"),
			Password:      v.GetString("redis-password"),
			DB:            v.GetInt("redis-db"),
			CategoriesTTL: v.GetDuration("redis-categories-ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(v.GetString("kafka-brokers")),
			AuctionTopic: v.GetString("kafka-auction-topic"),
			UserTopic:    v.GetString("kafka-user-topic"),
			GroupID:      v.GetString("kafka-group-id"),
			MinBytes:     v.GetInt("kafka-min-bytes"),
			MaxBytes:     v.GetInt("kafka-max-bytes"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt-secret"),
		},
		Log: LogConfig{
			Level:        v.GetString("log-level"),
			LogstashAddr: v.GetString("logstash-addr"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	return cfg, nil
}

// DSN returns a libpq connection string for the gorm postgres driver.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
