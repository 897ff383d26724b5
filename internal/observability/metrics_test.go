package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsAggregatesPerRoute(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/stories/latest", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/stories/latest", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/stories/latest", "GET", 404, 5*time.Millisecond)
	m.RecordError("/stories/:id", "PATCH", "NOT_FOUND")
	m.RecordError("/stories/:id", "PATCH", "NOT_FOUND")

	ok := m.RequestStat("/stories/latest", "GET", 200)
	assert.Equal(t, int64(2), ok.Count)
	assert.Equal(t, 40*time.Millisecond, ok.TotalDuration)

	missed := m.RequestStat("/stories/latest", "GET", 404)
	assert.Equal(t, int64(1), missed.Count)

	assert.Equal(t, int64(2), m.ErrorCount("/stories/:id", "PATCH", "NOT_FOUND"))
	assert.Equal(t, int64(0), m.ErrorCount("/stories/:id", "PATCH", "FORBIDDEN"))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	assert.Equal(t, RouteStat{}, m.RequestStat("/x", "GET", 200))
	assert.Equal(t, int64(0), m.ErrorCount("/x", "GET", "INTERNAL_ERROR"))
}

func TestMetricsConcurrentRecording(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordRequest("/stories", "POST", 201, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1600), m.RequestStat("/stories", "POST", 201).Count)
}
