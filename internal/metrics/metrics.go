package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedFailures       int64
	ArticlesCollected  int64
	DuplicatesFiltered int64
	AIFallbacks        int64

	// Timings
	LastRefreshTime    time.Duration
	AverageRefreshTime time.Duration
	TotalRefreshTime   time.Duration
	RefreshCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFailures++
}

func (m *Metrics) AddArticlesCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesCollected += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) IncrementAIFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIFallbacks++
}

func (m *Metrics) RecordRefreshTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRefreshTime = duration
	m.TotalRefreshTime += duration
	m.RefreshCount++

	if m.RefreshCount > 0 {
		m.AverageRefreshTime = m.TotalRefreshTime / time.Duration(m.RefreshCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":           m.FeedsFetched,
		"feed_failures":           m.FeedFailures,
		"articles_collected":      m.ArticlesCollected,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"ai_fallbacks":            m.AIFallbacks,
		"last_refresh_time_ms":    m.LastRefreshTime.Milliseconds(),
		"average_refresh_time_ms": m.AverageRefreshTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
