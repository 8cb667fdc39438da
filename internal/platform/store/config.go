package store

import (
	"time"

	"immiwatch/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	// AppName is the process role reported to backends ("api", "monthly")
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	MaxIdleTime time.Duration
	LogSQL      bool
	SlowQueryMs int

	// boot knobs; zero means the defaults in openers.go
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*. Both backends are
// off unless their ENABLED flag is set, and an enabled backend requires DBURL
func FromEnv(root config.Conf, app string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")

	c := Config{AppName: app}
	if pg.MayBool("ENABLED", false) {
		c.PG = PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			MaxIdleTime: pg.MayDuration("MAX_IDLE", 5*time.Minute),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		}
	}
	if ch.MayBool("ENABLED", false) {
		c.CH = CHConfig{Enabled: true, URL: ch.MustString("DBURL")}
	}
	return c
}
