package database

import (
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Metrics tracks query statistics with atomic counters
type Metrics struct {
	queryCount     int64
	queryDuration  int64 // nanoseconds
	errorCount     int64
	slowQueryCount int64

	perType sync.Map // query type -> *typeCounters

	db            *sql.DB
	slowThreshold time.Duration
	logger        *zap.Logger
	startedAt     time.Time
	stopOnce      sync.Once
}

type typeCounters struct {
	count    int64
	duration int64
	errors   int64
}

// MetricsSnapshot is a point-in-time view of query metrics
type MetricsSnapshot struct {
	QueryCount      int64                    `json:"query_count"`
	ErrorCount      int64                    `json:"error_count"`
	SlowQueryCount  int64                    `json:"slow_query_count"`
	AvgQueryTime    time.Duration            `json:"avg_query_time"`
	TotalQueryTime  time.Duration            `json:"total_query_time"`
	Uptime          time.Duration            `json:"uptime"`
	QueriesByType   map[string]TypeSnapshot  `json:"queries_by_type"`
	ConnectionStats ConnectionStatsSnapshot  `json:"connection_stats"`
}

// TypeSnapshot summarizes metrics for one query type
type TypeSnapshot struct {
	Count        int64         `json:"count"`
	ErrorCount   int64         `json:"error_count"`
	AvgQueryTime time.Duration `json:"avg_query_time"`
}

// ConnectionStatsSnapshot summarizes pool state
type ConnectionStatsSnapshot struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
	WaitDuration    int64 `json:"wait_duration_ms"`
}

// NewMetrics creates a metrics collector
func NewMetrics(db *sql.DB, slowThreshold time.Duration, logger *zap.Logger) *Metrics {
	if slowThreshold <= 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &Metrics{
		db:            db,
		slowThreshold: slowThreshold,
		logger:        logger,
		startedAt:     time.Now(),
	}
}

// RecordQuery records a single query execution
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	atomic.AddInt64(&m.queryCount, 1)
	atomic.AddInt64(&m.queryDuration, int64(duration))

	if err != nil {
		atomic.AddInt64(&m.errorCount, 1)
	}

	if duration > m.slowThreshold {
		atomic.AddInt64(&m.slowQueryCount, 1)
		m.logger.Warn("Slow query detected",
			zap.String("type", queryType),
			zap.Duration("duration", duration),
			zap.Duration("threshold", m.slowThreshold),
		)
	}

	value, _ := m.perType.LoadOrStore(queryType, &typeCounters{})
	counters := value.(*typeCounters)
	atomic.AddInt64(&counters.count, 1)
	atomic.AddInt64(&counters.duration, int64(duration))
	if err != nil {
		atomic.AddInt64(&counters.errors, 1)
	}
}

// Snapshot returns current metrics values
func (m *Metrics) Snapshot() *MetricsSnapshot {
	queryCount := atomic.LoadInt64(&m.queryCount)
	totalDuration := time.Duration(atomic.LoadInt64(&m.queryDuration))

	var avg time.Duration
	if queryCount > 0 {
		avg = totalDuration / time.Duration(queryCount)
	}

	byType := make(map[string]TypeSnapshot)
	m.perType.Range(func(key, value interface{}) bool {
		counters := value.(*typeCounters)
		count := atomic.LoadInt64(&counters.count)
		var typeAvg time.Duration
		if count > 0 {
			typeAvg = time.Duration(atomic.LoadInt64(&counters.duration)) / time.Duration(count)
		}
		byType[key.(string)] = TypeSnapshot{
			Count:        count,
			ErrorCount:   atomic.LoadInt64(&counters.errors),
			AvgQueryTime: typeAvg,
		}
		return true
	})

	stats := m.db.Stats()

	return &MetricsSnapshot{
		QueryCount:     queryCount,
		ErrorCount:     atomic.LoadInt64(&m.errorCount),
		SlowQueryCount: atomic.LoadInt64(&m.slowQueryCount),
		AvgQueryTime:   avg,
		TotalQueryTime: totalDuration,
		Uptime:         time.Since(m.startedAt),
		QueriesByType:  byType,
		ConnectionStats: ConnectionStatsSnapshot{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
			WaitCount:       stats.WaitCount,
			WaitDuration:    stats.WaitDuration.Milliseconds(),
		},
	}
}

// Reset zeroes all counters
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.queryCount, 0)
	atomic.StoreInt64(&m.queryDuration, 0)
	atomic.StoreInt64(&m.errorCount, 0)
	atomic.StoreInt64(&m.slowQueryCount, 0)
	m.perType.Range(func(key, _ interface{}) bool {
		m.perType.Delete(key)
		return true
	})
	m.startedAt = time.Now()
}

// Stop is a no-op hook kept for symmetric lifecycle management
func (m *Metrics) Stop() {
	m.stopOnce.Do(func() {
		snapshot := m.Snapshot()
		m.logger.Info("Database metrics final snapshot",
			zap.Int64("query_count", snapshot.QueryCount),
			zap.Int64("error_count", snapshot.ErrorCount),
			zap.Int64("slow_query_count", snapshot.SlowQueryCount),
			zap.Duration("avg_query_time", snapshot.AvgQueryTime),
		)
	})
}
