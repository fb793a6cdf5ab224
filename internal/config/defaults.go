package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultProviderBaseURL   = "https://hackathon.api.qloo.com"
	DefaultProviderTimeout   = 60 * time.Second
	DefaultProviderRateLimit = 10.0
	DefaultProviderRateBurst = 5
	DefaultProviderUserAgent = "resonance-intelligence/1.0"

	// A full analysis issues several provider round trips.
	DefaultServerWriteTimeout = 5 * time.Minute

	DefaultGridLimit      = 50
	DefaultRetryAttempts  = 2
	DefaultRetryBackoff   = 2 * time.Second
	DefaultHistorySize    = 10
	DefaultArtifactBucket = "resonance-analyses"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "resonance"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "resonance:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaTopicPrefix = "resonance."
	DefaultKafkaGroupID     = "resonance-worker"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "resonance"
)

// ApplyDefaults fills every zero-valued field of cfg. Configured values are
// kept.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	srv := &cfg.Server
	orDefault(&srv.Port, DefaultServerPort)
	orDefault(&srv.Mode, DefaultServerMode)
	orDefault(&srv.ReadTimeout, 15*time.Second)
	orDefault(&srv.WriteTimeout, DefaultServerWriteTimeout)
	orDefault(&srv.ShutdownTimeout, 30*time.Second)
	orDefaultSlice(&srv.AllowedOrigins, "*")
	if srv.RequestRate > 0 {
		orDefault(&srv.RequestBurst, int(srv.RequestRate)*2)
	}

	p := &cfg.Provider
	orDefault(&p.BaseURL, DefaultProviderBaseURL)
	orDefault(&p.Timeout, DefaultProviderTimeout)
	orDefault(&p.RateLimit, DefaultProviderRateLimit)
	orDefault(&p.RateBurst, DefaultProviderRateBurst)
	orDefault(&p.UserAgent, DefaultProviderUserAgent)

	a := &cfg.Analysis
	orDefault(&a.GridLimit, DefaultGridLimit)
	orDefault(&a.RetryAttempts, DefaultRetryAttempts)
	orDefault(&a.RetryBackoff, DefaultRetryBackoff)
	orDefault(&a.HistorySize, DefaultHistorySize)
	orDefault(&a.ArtifactBucket, DefaultArtifactBucket)

	db := &cfg.Database
	orDefault(&db.Host, DefaultDBHost)
	orDefault(&db.Port, DefaultDBPort)
	orDefault(&db.DBName, DefaultDBName)
	orDefault(&db.MaxConns, DefaultDBMaxConns)
	orDefault(&db.SSLMode, "disable")

	r := &cfg.Redis
	orDefault(&r.Addr, DefaultRedisAddr)
	orDefault(&r.KeyPrefix, DefaultRedisKeyPrefix)
	orDefault(&r.PoolSize, 10)
	orDefault(&r.DialTimeout, 5*time.Second)

	k := &cfg.Kafka
	orDefaultSlice(&k.Brokers, DefaultKafkaBroker)
	orDefault(&k.Acks, "one")
	orDefault(&k.TopicPrefix, DefaultKafkaTopicPrefix)
	orDefault(&k.GroupID, DefaultKafkaGroupID)

	orDefault(&cfg.MinIO.Endpoint, DefaultMinIOEndpoint)
	// Analyses are the only objects stored, so the bucket follows them.
	orDefault(&cfg.MinIO.Bucket, a.ArtifactBucket)

	orDefault(&cfg.Log.Level, DefaultLogLevel)
	orDefault(&cfg.Log.Format, DefaultLogFormat)
	orDefault(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
}

func orDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}

func orDefaultSlice(field *[]string, def ...string) {
	if len(*field) == 0 {
		*field = def
	}
}

//Personal.AI order the ending
