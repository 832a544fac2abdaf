package types

type RunMode string

const (
	ModeLocal  RunMode = "local"
	ModeAPI    RunMode = "api"
	ModeWorker RunMode = "worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// DatabaseDriver selects the gorm dialector
type DatabaseDriver string

const (
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// PubSubType selects the watermill backend for activity events
type PubSubType string

const (
	PubSubTypeMemory PubSubType = "memory"
	PubSubTypeKafka  PubSubType = "kafka"
)

// CacheType selects the offer read cache backend
type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
	CacheTypeNone     CacheType = "none"
)
