package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// CHConfig configures clickhouse connectivity (native protocol)
type CHConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string

	DialTimeout time.Duration
	ReadTimeout time.Duration

	// ClientTag labels this process in clickhouse query logs ("scrape", "api")
	ClientTag string
}
