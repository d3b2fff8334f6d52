package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

func newTestTracker(max int) *UsageTracker {
	ut := NewUsageTracker(max)
	ut.now = func() time.Time { return testNow }
	return ut
}

func TestUsageTracker_Record(t *testing.T) {
	tracker := newTestTracker(100)
	tracker.Record(&GenerationMetric{
		MessageTypeID: 10,
		HL7Type:       "ORU_R01",
		Format:        "xml",
		Duration:      20 * time.Millisecond,
		Bytes:         4096,
	})
	tracker.Record(&GenerationMetric{
		MessageTypeID: 10,
		HL7Type:       "ORU_R01",
		Format:        "json",
		Framed:        true,
		Duration:      40 * time.Millisecond,
		Bytes:         1024,
	})
	tracker.Record(&GenerationMetric{MessageTypeID: 99, Duration: 0, Failed: true})

	o := tracker.Overview()
	if o.TotalGenerated != 2 || o.TotalFailed != 1 {
		t.Fatalf("expected 2 generated and 1 failed, got %d/%d", o.TotalGenerated, o.TotalFailed)
	}
	if o.BytesOut != 5120 {
		t.Errorf("expected 5120 bytes out, got %d", o.BytesOut)
	}
	if o.Framed != 1 {
		t.Errorf("expected 1 framed, got %d", o.Framed)
	}
	if o.ByFormat["xml"] != 1 || o.ByFormat["json"] != 1 || len(o.ByFormat) != 2 {
		t.Errorf("unexpected format breakdown %v", o.ByFormat)
	}
	if o.UniqueTypes != 2 {
		t.Errorf("expected 2 unique types, got %d", o.UniqueTypes)
	}
	if o.AvgLatency != 20*time.Millisecond {
		t.Errorf("expected avg latency 20ms, got %s", o.AvgLatency)
	}
	if o.ErrorRate < 0.33 || o.ErrorRate > 0.34 {
		t.Errorf("expected error rate 1/3, got %f", o.ErrorRate)
	}
}

func TestUsageTracker_NilSafe(t *testing.T) {
	var tracker *UsageTracker
	tracker.Record(&GenerationMetric{MessageTypeID: 1})
}

func TestUsageTracker_TimestampDefaultsToNow(t *testing.T) {
	tracker := newTestTracker(10)
	m := &GenerationMetric{MessageTypeID: 1}
	tracker.Record(m)
	if !m.Timestamp.Equal(testNow) {
		t.Errorf("expected timestamp %s, got %s", testNow, m.Timestamp)
	}
	if s := tracker.TypeStats(1); s == nil || !s.LastAt.Equal(testNow) {
		t.Errorf("unexpected type stats %+v", s)
	}
}

func TestUsageTracker_RingBufferCaps(t *testing.T) {
	tracker := newTestTracker(50)
	for i := 0; i < 120; i++ {
		tracker.Record(&GenerationMetric{MessageTypeID: 2, Duration: time.Millisecond})
	}

	tracker.mu.RLock()
	n := len(tracker.metrics)
	tracker.mu.RUnlock()
	if n != 50 {
		t.Fatalf("expected ring buffer to cap at 50, got %d", n)
	}
	if got := tracker.Overview().TotalGenerated; got != 120 {
		t.Errorf("expected 120 generated, got %d", got)
	}
}

func TestUsageTracker_TopTypes(t *testing.T) {
	tracker := newTestTracker(100)
	counts := map[int]int{13: 5, 2: 3, 8: 3, 30: 1}
	for id, n := range counts {
		for i := 0; i < n; i++ {
			tracker.Record(&GenerationMetric{MessageTypeID: id})
		}
	}

	top := tracker.TopTypes(3)
	if len(top) != 3 {
		t.Fatalf("expected 3 types, got %d", len(top))
	}
	want := []int{13, 2, 8}
	for i, id := range want {
		if top[i].MessageTypeID != id {
			t.Errorf("position %d: expected type %d, got %d", i, id, top[i].MessageTypeID)
		}
	}
	if all := tracker.TopTypes(100); len(all) != 4 {
		t.Errorf("expected limit clamped to 4 types, got %d", len(all))
	}
}

func TestUsageTracker_P95(t *testing.T) {
	tracker := newTestTracker(1000)
	for i := 1; i <= 100; i++ {
		tracker.Record(&GenerationMetric{MessageTypeID: 7, Duration: time.Duration(i) * time.Millisecond})
	}
	s := tracker.TypeStats(7)
	if s == nil {
		t.Fatal("expected stats for type 7")
	}
	if s.P95Latency != 96*time.Millisecond {
		t.Errorf("expected p95 96ms, got %s", s.P95Latency)
	}
	if tracker.TypeStats(8) != nil {
		t.Error("expected nil for unrecorded type")
	}
}

func TestUsageTracker_TimeSeries(t *testing.T) {
	tracker := newTestTracker(100)
	tracker.Record(&GenerationMetric{Timestamp: testNow.Add(-90 * time.Second), MessageTypeID: 1, Duration: 10 * time.Millisecond})
	tracker.Record(&GenerationMetric{Timestamp: testNow.Add(-80 * time.Second), MessageTypeID: 1, Duration: 30 * time.Millisecond})
	tracker.Record(&GenerationMetric{Timestamp: testNow.Add(-10 * time.Second), MessageTypeID: 1, Failed: true})
	tracker.Record(&GenerationMetric{Timestamp: testNow.Add(-2 * time.Hour), MessageTypeID: 1})

	buckets := tracker.TimeSeries(time.Minute, 5*time.Minute)
	if len(buckets) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(buckets))
	}

	var generated, failed int64
	for _, b := range buckets {
		generated += b.Generated
		failed += b.Failed
	}
	if generated != 2 || failed != 1 {
		t.Errorf("expected 2 generated and 1 failed in window, got %d/%d", generated, failed)
	}

	b := buckets[3]
	if b.Generated != 2 || b.AvgLatency != 20*time.Millisecond {
		t.Errorf("unexpected bucket %+v", b)
	}

	if tracker.TimeSeries(0, time.Hour) != nil {
		t.Error("expected nil for zero interval")
	}
}

func TestUsageTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewUsageTracker(500)
	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				tracker.Record(&GenerationMetric{MessageTypeID: g%31 + 1, Format: "xml"})
				_ = tracker.Overview()
			}
		}(g)
	}
	wg.Wait()

	if got := tracker.Overview().TotalGenerated; got != 1000 {
		t.Errorf("expected 1000 generated, got %d", got)
	}
}

func TestParseDurationParam(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"5m", 5 * time.Minute},
		{"2d", 48 * time.Hour},
		{"xd", time.Minute},
		{"-1h", time.Minute},
		{"bogus", time.Minute},
	}
	for _, tt := range tests {
		if got := parseDurationParam(tt.in, time.Minute); got != tt.want {
			t.Errorf("parseDurationParam(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func newStatsServer(tracker *UsageTracker) *echo.Echo {
	e := echo.New()
	NewUsageHandler(tracker).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUsageHandler_Overview(t *testing.T) {
	tracker := newTestTracker(100)
	tracker.Record(&GenerationMetric{MessageTypeID: 13, HL7Type: "ACK", Format: "raw"})
	e := newStatsServer(tracker)

	rec := get(e, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var o Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if o.TotalGenerated != 1 || len(o.TopTypes) != 1 || o.TopTypes[0].HL7Type != "ACK" {
		t.Errorf("unexpected overview %+v", o)
	}
}

func TestUsageHandler_Types(t *testing.T) {
	tracker := newTestTracker(100)
	tracker.Record(&GenerationMetric{MessageTypeID: 8, HL7Type: "SIU_S12"})
	tracker.Record(&GenerationMetric{MessageTypeID: 9, HL7Type: "SIU_S12"})
	e := newStatsServer(tracker)

	rec := get(e, "/api/v1/stats/types?limit=1")
	var top []TypeSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(top) != 1 {
		t.Errorf("expected 1 type with limit=1, got %d", len(top))
	}

	tests := []struct {
		path string
		code int
	}{
		{"/api/v1/stats/types/8", http.StatusOK},
		{"/api/v1/stats/types/20", http.StatusNotFound},
		{"/api/v1/stats/types/abc", http.StatusBadRequest},
		{"/api/v1/stats/timeseries?interval=1m&duration=10m", http.StatusOK},
		{"/api/v1/stats/timeseries?interval=1s&duration=7d", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := get(e, tt.path); rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, rec.Code)
		}
	}
}
