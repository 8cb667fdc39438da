package modkit

import (
	"immiwatch/internal/modkit/repokit"
	"immiwatch/internal/platform/config"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/metrics"
	"immiwatch/internal/platform/store"
)

// Deps is what every module constructor receives. The zero value is usable:
// optional backends are nil when disabled
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner // nil when Postgres is disabled
	CH      store.Clickhouse // nil when ClickHouse is disabled
	Metrics *metrics.Metrics // nil disables instrumentation
}
