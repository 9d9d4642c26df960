package config

// Default configuration values.
const (
	DefaultBackendKind  = "string"
	DefaultCapacity     = 0
	DefaultByteCapacity = ""
	DefaultHasherKind   = "xxhash"
	DefaultHasherSeed   = 0
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// serviceName is the service attribute attached to log records.
const serviceName = "interner"
