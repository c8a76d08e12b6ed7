package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings of the activity worker. Flags win over
// environment variables (MONGO_URI, ACTIVITY_RETENTION, ...).
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Kafka    KafkaConfig
	Activity ActivityConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
}

type KafkaConfig struct {
	Brokers      []string
	AuctionTopic string
	GroupID      string
	MinBytes     int
	MaxBytes     int
}

// ActivityConfig controls retention. PruneSchedule is a standard five-field
// cron expression or a descriptor such as @hourly.
type ActivityConfig struct {
	PruneSchedule string
	Retention     time.Duration
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("activity-worker-service", pflag.ContinueOnError)

	fs.String("server-host", "0.0.0.0", "HTTP listen host")
	fs.String("server-port", "8082", "HTTP listen port")

	fs.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	fs.String("mongo-database", "activity_service", "MongoDB database")
	fs.String("mongo-collection", "activities", "MongoDB collection for activity entries")

	fs.String("kafka-brokers", "localhost:9092", "comma separated Kafka brokers")
	fs.String("kafka-auction-topic", "auction_events", "topic with auction events")
	fs.String("kafka-group-id", "activity-worker-group", "consumer group")
	fs.Int("kafka-min-bytes", 1, "consumer fetch min bytes")
	fs.Int("kafka-max-bytes", 10e6, "consumer fetch max bytes")

	fs.String("activity-prune-schedule", "0 * * * *", "cron schedule of the retention job")
	fs.Duration("activity-retention", 720*time.Hour, "age after which activity entries are deleted")

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
		MongoDB: MongoDBConfig{
			URI:        v.GetString("mongo-uri"),
			Database:   v.GetString("mongo-database"),
			Collection: v.GetString("mongo-collection"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(v.GetString("kafka-brokers")),
			AuctionTopic: v.GetString("kafka-auction-topic"),
			GroupID:      v.GetString("kafka-group-id"),
			MinBytes:     v.GetInt("kafka-min-bytes"),
			MaxBytes:     v.GetInt("kafka-max-bytes"),
		},
		Activity: ActivityConfig{
			PruneSchedule: v.GetString("activity-prune-schedule"),
			Retention:     v.GetDuration("activity-retention"),
		},
		Log: LogConfig{
			Level:        v.GetString("log-level"),
			LogstashAddr: v.GetString("logstash-addr"),
		},
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if cfg.Activity.Retention <= 0 {
		return nil, errors.New("activity retention must be positive")
	}
	if _, err := cron.ParseStandard(cfg.Activity.PruneSchedule); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", cfg.Activity.PruneSchedule, err)
	}

	return cfg, nil
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
