package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type CheckFunc func(ctx context.Context) error

// StatsFunc contributes a named stats block to the metrics payload, e.g.
// cache hit counts or the upstream circuit breaker state.
type StatsFunc func() map[string]interface{}

type CheckResult struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

// Monitor tracks request metrics and runs registered health checks on
// demand. One instance serves the whole process.
type Monitor struct {
	mu             sync.RWMutex
	requestCount   int64
	errorCount     int64
	activeRequests int64
	totalDuration  time.Duration
	statusCodes    map[string]int64
	endpoints      map[string]int64
	lastRequest    time.Time
	startTime      time.Time

	checks map[string]CheckFunc
	stats  map[string]StatsFunc
}

func NewMonitor() *Monitor {
	return &Monitor{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		checks:      make(map[string]CheckFunc),
		stats:       make(map[string]StatsFunc),
		startTime:   time.Now(),
	}
}

// RegisterCheck adds a dependency probe run on every health request.
func (m *Monitor) RegisterCheck(name string, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = fn
}

// RegisterStats adds a named stats block to the metrics payload.
func (m *Monitor) RegisterStats(name string, fn StatsFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[name] = fn
}

func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.requestCount++
		m.activeRequests--
		m.totalDuration += duration
		m.lastRequest = time.Now()
		if status >= 400 {
			m.errorCount++
		}
		m.statusCodes[http.StatusText(status)]++
		m.endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func (m *Monitor) runChecks() map[string]CheckResult {
	m.mu.RLock()
	checks := make(map[string]CheckFunc, len(m.checks))
	for name, fn := range m.checks {
		checks[name] = fn
	}
	m.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	for name, fn := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		result := CheckResult{Name: name, Status: "healthy", LastRun: time.Now()}
		if err := fn(ctx); err != nil {
			result.Status = "unhealthy"
			result.Message = err.Error()
		}
		cancel()
		results[name] = result
	}
	return results
}

// HealthHandler runs every registered check and reports 503 when any fails.
func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := m.runChecks()

		overall := "healthy"
		for _, check := range checks {
			if check.Status != "healthy" {
				overall = "unhealthy"
				break
			}
		}

		status := http.StatusOK
		if overall != "healthy" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(m.startTime).String(),
		})
	}
}

func (m *Monitor) MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.mu.RLock()
		app := gin.H{
			"request_count":   m.requestCount,
			"error_count":     m.errorCount,
			"active_requests": m.activeRequests,
			"status_codes":    copyCounts(m.statusCodes),
			"endpoint_calls":  copyCounts(m.endpoints),
			"last_request":    m.lastRequest,
			"start_time":      m.startTime,
		}
		if m.requestCount > 0 {
			app["avg_request_duration"] = (m.totalDuration / time.Duration(m.requestCount)).String()
		}
		extra := make(gin.H, len(m.stats))
		for name, fn := range m.stats {
			extra[name] = fn()
		}
		m.mu.RUnlock()

		c.JSON(http.StatusOK, gin.H{
			"application": app,
			"components":  extra,
			"system":      systemMetrics(),
			"timestamp":   time.Now(),
		})
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func systemMetrics() gin.H {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return gin.H{
		"alloc_mb":        ms.Alloc / 1024 / 1024,
		"sys_mb":          ms.Sys / 1024 / 1024,
		"num_gc":          ms.NumGC,
		"goroutine_count": runtime.NumGoroutine(),
		"cpu_count":       runtime.NumCPU(),
		"go_version":      runtime.Version(),
	}
}
