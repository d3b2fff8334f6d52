// Package analytics keeps in-memory generation statistics: how many messages
// of each type were built, in which output format, how long they took and
// how many failed.
package analytics

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// GenerationMetric captures one message generation.
type GenerationMetric struct {
	Timestamp     time.Time     `json:"timestamp"`
	MessageTypeID int           `json:"message_type_id"`
	HL7Type       string        `json:"hl7_type"`
	Format        string        `json:"format"`
	Framed        bool          `json:"framed"`
	Duration      time.Duration `json:"duration"`
	Bytes         int64         `json:"bytes"`
	Failed        bool          `json:"failed"`
}

type typeStats struct {
	MessageTypeID  int
	HL7Type        string
	TotalGenerated int64
	TotalFailed    int64
	TotalDuration  int64 // nanoseconds
	LastAt         time.Time
	mu             sync.Mutex
}

// TypeSummary aggregates the generations of one message type.
type TypeSummary struct {
	MessageTypeID int           `json:"message_type_id"`
	HL7Type       string        `json:"hl7_type"`
	Generated     int64         `json:"generated"`
	Failed        int64         `json:"failed"`
	ErrorRate     float64       `json:"error_rate"`
	AvgLatency    time.Duration `json:"avg_latency"`
	P95Latency    time.Duration `json:"p95_latency"`
	LastAt        time.Time     `json:"last_at"`
}

// Overview is the high-level summary returned by GET /stats.
type Overview struct {
	TotalGenerated int64            `json:"total_generated"`
	TotalFailed    int64            `json:"total_failed"`
	ErrorRate      float64          `json:"error_rate"`
	AvgLatency     time.Duration    `json:"avg_latency"`
	BytesOut       int64            `json:"bytes_out"`
	Framed         int64            `json:"framed"`
	ByFormat       map[string]int64 `json:"by_format"`
	UniqueTypes    int              `json:"unique_types"`
	TopTypes       []*TypeSummary   `json:"top_types"`
}

// TimeSeriesBucket holds aggregated metrics for a single time bucket.
type TimeSeriesBucket struct {
	Timestamp  time.Time     `json:"timestamp"`
	Generated  int64         `json:"generated"`
	Failed     int64         `json:"failed"`
	AvgLatency time.Duration `json:"avg_latency"`
}

// UsageTracker is a thread-safe aggregator with a bounded ring buffer of
// recent metrics and running per-type counters.
type UsageTracker struct {
	metrics    []*GenerationMetric
	maxMetrics int
	writePos   int
	full       bool
	types      map[int]*typeStats
	formats    map[string]int64
	mu         sync.RWMutex
	now        func() time.Time

	totalGenerated int64
	totalFailed    int64
	totalDuration  int64 // nanoseconds
	totalBytes     int64
	totalFramed    int64
}

// NewUsageTracker creates a tracker keeping up to maxMetrics recent metrics.
func NewUsageTracker(maxMetrics int) *UsageTracker {
	if maxMetrics <= 0 {
		maxMetrics = 10000
	}
	return &UsageTracker{
		metrics:    make([]*GenerationMetric, 0, maxMetrics),
		maxMetrics: maxMetrics,
		types:      make(map[int]*typeStats),
		formats:    make(map[string]int64),
		now:        time.Now,
	}
}

// Record stores a metric and updates the counters. A nil tracker ignores it.
func (ut *UsageTracker) Record(m *GenerationMetric) {
	if ut == nil || m == nil {
		return
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = ut.now()
	}

	if m.Failed {
		atomic.AddInt64(&ut.totalFailed, 1)
	} else {
		atomic.AddInt64(&ut.totalGenerated, 1)
		atomic.AddInt64(&ut.totalBytes, m.Bytes)
		if m.Framed {
			atomic.AddInt64(&ut.totalFramed, 1)
		}
	}
	atomic.AddInt64(&ut.totalDuration, int64(m.Duration))

	ut.mu.Lock()
	if ut.full {
		ut.metrics[ut.writePos] = m
	} else {
		ut.metrics = append(ut.metrics, m)
	}
	ut.writePos++
	if ut.writePos >= ut.maxMetrics {
		ut.writePos = 0
		ut.full = true
	}

	if !m.Failed && m.Format != "" {
		ut.formats[m.Format]++
	}

	ts, ok := ut.types[m.MessageTypeID]
	if !ok {
		ts = &typeStats{MessageTypeID: m.MessageTypeID}
		ut.types[m.MessageTypeID] = ts
	}
	ut.mu.Unlock()

	ts.mu.Lock()
	if m.HL7Type != "" {
		ts.HL7Type = m.HL7Type
	}
	if m.Failed {
		ts.TotalFailed++
	} else {
		ts.TotalGenerated++
	}
	ts.TotalDuration += int64(m.Duration)
	if m.Timestamp.After(ts.LastAt) {
		ts.LastAt = m.Timestamp
	}
	ts.mu.Unlock()
}

// Overview returns the overall summary with the five busiest types.
func (ut *UsageTracker) Overview() *Overview {
	generated := atomic.LoadInt64(&ut.totalGenerated)
	failed := atomic.LoadInt64(&ut.totalFailed)
	dur := atomic.LoadInt64(&ut.totalDuration)

	total := generated + failed
	var errorRate float64
	var avgLatency time.Duration
	if total > 0 {
		errorRate = float64(failed) / float64(total)
		avgLatency = time.Duration(dur / total)
	}

	ut.mu.RLock()
	byFormat := make(map[string]int64, len(ut.formats))
	for f, n := range ut.formats {
		byFormat[f] = n
	}
	uniqueTypes := len(ut.types)
	ut.mu.RUnlock()

	return &Overview{
		TotalGenerated: generated,
		TotalFailed:    failed,
		ErrorRate:      errorRate,
		AvgLatency:     avgLatency,
		BytesOut:       atomic.LoadInt64(&ut.totalBytes),
		Framed:         atomic.LoadInt64(&ut.totalFramed),
		ByFormat:       byFormat,
		UniqueTypes:    uniqueTypes,
		TopTypes:       ut.TopTypes(5),
	}
}

// TypeStats returns the summary for one message type id, or nil when
// nothing of that type was recorded.
func (ut *UsageTracker) TypeStats(id int) *TypeSummary {
	ut.mu.RLock()
	ts, ok := ut.types[id]
	ut.mu.RUnlock()
	if !ok {
		return nil
	}
	return ut.buildTypeSummary(ts)
}

// TopTypes returns up to limit types ordered by generated count, ties broken
// by id.
func (ut *UsageTracker) TopTypes(limit int) []*TypeSummary {
	ut.mu.RLock()
	all := make([]*typeStats, 0, len(ut.types))
	for _, ts := range ut.types {
		all = append(all, ts)
	}
	ut.mu.RUnlock()

	summaries := make([]*TypeSummary, 0, len(all))
	for _, ts := range all {
		summaries = append(summaries, ut.buildTypeSummary(ts))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Generated != summaries[j].Generated {
			return summaries[i].Generated > summaries[j].Generated
		}
		return summaries[i].MessageTypeID < summaries[j].MessageTypeID
	})

	if limit > len(summaries) {
		limit = len(summaries)
	}
	return summaries[:limit]
}

// TimeSeries buckets the retained metrics by interval over the lookback
// duration ending now.
func (ut *UsageTracker) TimeSeries(interval, duration time.Duration) []*TimeSeriesBucket {
	if interval <= 0 || duration <= 0 {
		return nil
	}
	now := ut.now()
	start := now.Add(-duration).Truncate(interval)
	numBuckets := int(now.Sub(start)/interval) + 1

	buckets := make([]*TimeSeriesBucket, numBuckets)
	for i := range buckets {
		buckets[i] = &TimeSeriesBucket{Timestamp: start.Add(time.Duration(i) * interval)}
	}

	ut.mu.RLock()
	metricsCopy := make([]*GenerationMetric, len(ut.metrics))
	copy(metricsCopy, ut.metrics)
	ut.mu.RUnlock()

	counts := make([]int64, numBuckets)
	for _, m := range metricsCopy {
		if m.Timestamp.Before(start) || m.Timestamp.After(now) {
			continue
		}
		idx := int(m.Timestamp.Sub(start) / interval)
		if idx < 0 || idx >= numBuckets {
			continue
		}
		b := buckets[idx]
		if m.Failed {
			b.Failed++
		} else {
			b.Generated++
		}
		b.AvgLatency += m.Duration
		counts[idx]++
	}

	for i, b := range buckets {
		if counts[i] > 0 {
			b.AvgLatency = time.Duration(int64(b.AvgLatency) / counts[i])
		}
	}
	return buckets
}

func (ut *UsageTracker) buildTypeSummary(ts *typeStats) *TypeSummary {
	ts.mu.Lock()
	s := &TypeSummary{
		MessageTypeID: ts.MessageTypeID,
		HL7Type:       ts.HL7Type,
		Generated:     ts.TotalGenerated,
		Failed:        ts.TotalFailed,
		LastAt:        ts.LastAt,
	}
	total := ts.TotalGenerated + ts.TotalFailed
	if total > 0 {
		s.ErrorRate = float64(ts.TotalFailed) / float64(total)
		s.AvgLatency = time.Duration(ts.TotalDuration / total)
	}
	ts.mu.Unlock()

	s.P95Latency = ut.p95ForType(ts.MessageTypeID)
	return s
}

func (ut *UsageTracker) p95ForType(id int) time.Duration {
	ut.mu.RLock()
	var durations []time.Duration
	for _, m := range ut.metrics {
		if m.MessageTypeID == id {
			durations = append(durations, m.Duration)
		}
	}
	ut.mu.RUnlock()

	if len(durations) == 0 {
		return 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	idx := int(float64(len(durations)) * 0.95)
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx]
}

// UsageHandler serves the statistics endpoints.
type UsageHandler struct {
	tracker *UsageTracker
}

func NewUsageHandler(tracker *UsageTracker) *UsageHandler {
	return &UsageHandler{tracker: tracker}
}

func (h *UsageHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats", h.HandleOverview)
	g.GET("/stats/types", h.HandleTopTypes)
	g.GET("/stats/types/:id", h.HandleTypeStats)
	g.GET("/stats/timeseries", h.HandleTimeSeries)
}

func (h *UsageHandler) HandleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.Overview())
}

// HandleTopTypes lists types by generated count; limit defaults to 31.
func (h *UsageHandler) HandleTopTypes(c echo.Context) error {
	limit := 31
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return c.JSON(http.StatusOK, h.tracker.TopTypes(limit))
}

func (h *UsageHandler) HandleTypeStats(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message type ID must be a number."})
	}
	summary := h.tracker.TypeStats(id)
	if summary == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no messages generated for this type"})
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleTimeSeries accepts interval (default 1m) and duration (default 1h).
func (h *UsageHandler) HandleTimeSeries(c echo.Context) error {
	interval := parseDurationParam(c.QueryParam("interval"), time.Minute)
	duration := parseDurationParam(c.QueryParam("duration"), time.Hour)
	if duration/interval > 10000 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "too many buckets, widen the interval"})
	}
	return c.JSON(http.StatusOK, h.tracker.TimeSeries(interval, duration))
}

// parseDurationParam parses "30s", "5m", "1h" or "7d". Invalid or
// non-positive values give defaultVal.
func parseDurationParam(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	if strings.HasSuffix(s, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(s, "d")); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
