package observability

import (
	"sync"
	"time"
)

type routeKey struct {
	Path   string
	Method string
	Status int
}

type errorKey struct {
	Path   string
	Method string
	Code   string
}

// RouteStat aggregates requests for one path/method/status combination.
type RouteStat struct {
	Count         int64
	TotalDuration time.Duration
}

// Metrics keeps in-memory request and error counters, grouped by route.
type Metrics struct {
	mu     sync.Mutex
	routes map[routeKey]RouteStat
	errors map[errorKey]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		routes: make(map[routeKey]RouteStat),
		errors: make(map[errorKey]int64),
	}
}

// RecordRequest accumulates one completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey{Path: path, Method: method, Status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	stat := m.routes[key]
	stat.Count++
	stat.TotalDuration += duration
	m.routes[key] = stat
}

// RecordError counts a request that resolved to a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[errorKey{Path: path, Method: method, Code: code}]++
}

// RequestStat returns the aggregate for one route.
func (m *Metrics) RequestStat(path, method string, status int) RouteStat {
	if m == nil {
		return RouteStat{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routes[routeKey{Path: path, Method: method, Status: status}]
}

// ErrorCount returns how often the given error code was produced on a
// route.
func (m *Metrics) ErrorCount(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorKey{Path: path, Method: method, Code: code}]
}
