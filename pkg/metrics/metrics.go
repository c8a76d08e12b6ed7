package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP metrics (shared by every service)
// =============================================================================

// HttpRequestsTotal counts every HTTP request.
// Labels: service, method, path, status
// PromQL: rate(http_requests_total{service="auction-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration is the response latency histogram.
// PromQL: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database metrics
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis metrics
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // get, set, del, exists
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka metrics
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // produce, fetch, process, commit
)

// =============================================================================
// Business metrics
// =============================================================================

// --- users-service ---

var AuthRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of user registrations",
	},
)

var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed
)

var AuthTokensIssued = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of tokens issued",
	},
	[]string{"type"}, // access, refresh
)

// --- auction-service ---

var AuctionsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auctions_created_total",
		Help: "Total number of auctions created",
	},
)

var BidsPlaced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bids_placed_total",
		Help: "Total number of bids placed",
	},
	[]string{"auction_state"}, // open, closed
)

var BidPrice = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "bid_price",
		Help:    "Distribution of placed bid prices",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	},
)

var RatingsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "ratings_created_total",
		Help: "Total number of auction ratings created",
	},
)

var RatingValue = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "rating_value",
		Help:    "Distribution of auction rating values",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

var CommentsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "Total number of auction comments created",
	},
)

var UserDataPurged = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_data_purged_total",
		Help: "Rows removed after USER_DELETED events",
	},
	[]string{"table"},
)

// --- activity-worker-service ---

var ActivityRecorded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activity_recorded_total",
		Help: "Total number of activity entries recorded",
	},
	[]string{"event_type", "status"}, // status: stored, duplicate, failed
)

var ActivityPruned = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activity_pruned_total",
		Help: "Total number of activity entries removed by retention",
	},
	[]string{"status"}, // success, failed
)
