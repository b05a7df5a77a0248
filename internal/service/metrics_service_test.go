package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesCacheHistograms(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, 2*time.Millisecond)
	m.RecordCacheOperation(false, 3*time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "cache_latency_seconds_count 2")
	assert.Contains(t, body, "cache_write_seconds_count 1")
	assert.Contains(t, body, `cache_lookups_total{result="hit"} 1`)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}
