package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting of the users service. Flags win over
// environment variables (DB_HOST, JWT_SECRET, ...), which win over defaults.
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

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig points at the Redis shared with auction-service, which reads
// the access-token blacklist written here.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers   []string
	UserTopic string
}

type JWTConfig struct {
	Secret               string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("users-service", pflag.ContinueOnError)

	fs.String("server-host", "0.0.0.0", "HTTP listen host")
	fs.String("server-port", "8080", "HTTP listen port")

	fs.String("db-host", "localhost", "PostgreSQL host")
	fs.String("db-port", "5432", "PostgreSQL port")
	fs.String("db-user", "postgres", "PostgreSQL user")
	fs.String("db-password", "postgres", "PostgreSQL password")
	fs.String("db-name", "users_service", "PostgreSQL database")
	fs.String("db-sslmode", "disable", "PostgreSQL sslmode")
	fs.Int32("db-max-conns", 25, "connection pool size")

	fs.String("redis-host", "localhost", "Redis host")
	fs.String("redis-port", "6379", "Redis port")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")

	fs.String("kafka-brokers", "localhost:9092", "comma separated Kafka brokers")
	fs.String("kafka-user-topic", "user_events", "topic for USER_DELETED events")

	fs.String("jwt-secret", "your-secret-key-change-this-in-production", "HS256 secret shared with auction-service")
	fs.Duration("jwt-access-duration", 15*time.Minute, "access token lifetime")
	fs.Duration("jwt-refresh-duration", 7*24*time.Hour, "refresh token lifetime")

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
			Host:     v.GetString("db-host"),
			Port:     v.GetString("db-port"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			DBName:   v.GetString("db-name"),
			SSLMode:  v.GetString("db-sslmode"),
			MaxConns: v.GetInt32("db-max-conns"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis-host"),
			Port:     v.GetString("redis-port"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		},
		Kafka: KafkaConfig{
			Brokers:   splitList(v.GetString("kafka-brokers")),
			UserTopic: v.GetString("kafka-user-topic"),
		},
		JWT: JWTConfig{
			Secret:               v.GetString("jwt-secret"),
			AccessTokenDuration:  v.GetDuration("jwt-access-duration"),
			RefreshTokenDuration: v.GetDuration("jwt-refresh-duration"),
		},
		Log: LogConfig{
			Level:        v.GetString("log-level"),
			LogstashAddr: v.GetString("logstash-addr"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if cfg.JWT.AccessTokenDuration <= 0 || cfg.JWT.RefreshTokenDuration <= 0 {
		return nil, errors.New("token durations must be positive")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	return cfg, nil
}

// ConnString returns a pgx connection URL.
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
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
