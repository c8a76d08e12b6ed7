package metrics

import "time"

// Timer measures one operation from the moment it is created.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// --- redis ---

type RedisOperation string

const (
	RedisOpGet    RedisOperation = "get"
	RedisOpSet    RedisOperation = "set"
	RedisOpDel    RedisOperation = "del"
	RedisOpExists RedisOperation = "exists"
)

type RedisTimer struct {
	Timer
	service   string
	operation RedisOperation
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{Timer: *NewTimer(), service: service, operation: op}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(rt.Duration().Seconds())
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

// --- kafka ---

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

// KafkaProduceTimer covers one WriteMessages call.
type KafkaProduceTimer struct {
	Timer
	service string
	topic   string
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{Timer: *NewTimer(), service: service, topic: topic}
}

// ObserveDuration counts a produced message, or a produce error when err is
// non-nil.
func (kt *KafkaProduceTimer) ObserveDuration(err error) {
	if err != nil {
		RecordKafkaError(kt.service, kt.topic, "produce")
		return
	}
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(kt.Duration().Seconds())
}

// KafkaConsumeTimer covers the handling of one fetched message.
type KafkaConsumeTimer struct {
	Timer
	service string
	topic   string
	group   string
}

func NewKafkaConsumeTimer(service, topic, group string) *KafkaConsumeTimer {
	return &KafkaConsumeTimer{Timer: *NewTimer(), service: service, topic: topic, group: group}
}

// ObserveDuration counts a consumed message, or a processing error when err
// is non-nil.
func (kt *KafkaConsumeTimer) ObserveDuration(err error) {
	if err != nil {
		RecordKafkaError(kt.service, kt.topic, "process")
		return
	}
	KafkaMessagesConsumed.WithLabelValues(kt.service, kt.topic, kt.group).Inc()
	KafkaConsumeDuration.WithLabelValues(kt.service, kt.topic).Observe(kt.Duration().Seconds())
}

// --- database ---

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
	DbOpRaw    DbOperation = "raw"
)

type DbTimer struct {
	Timer
	service   string
	operation DbOperation
	table     string
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{Timer: *NewTimer(), service: service, operation: op, table: table}
}

// ObserveDuration records the elapsed time and, when err is non-nil, a DB error.
func (dt *DbTimer) ObserveDuration(err error) {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(dt.Duration().Seconds())
	if err != nil {
		DbErrors.WithLabelValues(dt.service, string(dt.operation)).Inc()
	}
}
