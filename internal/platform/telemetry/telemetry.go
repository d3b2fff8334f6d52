// Package telemetry records HTTP server and narrative provider metrics and
// serves them in the Prometheus text exposition format.
package telemetry

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config holds the telemetry settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricsEnabled *bool // nil = enabled
}

func (c *Config) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "hl7syntgen"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// BoolPtr is a helper to create a *bool for Config fields.
func BoolPtr(b bool) *bool {
	return &b
}

// histogram is a thread-safe histogram. Bucket counts are stored
// non-cumulative and made cumulative at export.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			break
		}
	}
	h.mu.Unlock()
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	var running int64
	for i, c := range raw {
		running += c
		raw[i] = running
	}
	return raw
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(next)) {
			return
		}
	}
}

// labeledHistograms keys histograms by a "|"-joined label tuple.
type labeledHistograms struct {
	mu         sync.RWMutex
	boundaries []float64
	items      map[string]*histogram
}

func newLabeledHistograms(boundaries []float64) *labeledHistograms {
	return &labeledHistograms{boundaries: boundaries, items: make(map[string]*histogram)}
}

func (s *labeledHistograms) get(key string) *histogram {
	s.mu.RLock()
	h, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.items[key]; !ok {
		h = newHistogram(s.boundaries)
		s.items[key] = h
	}
	return h
}

// sortedKeys returns the keys in order so exports are stable.
func (s *labeledHistograms) sortedKeys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{items: make(map[string]*int64)}
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if p, ok = s.items[key]; !ok {
			p = new(int64)
			s.items[key] = p
		}
		s.mu.Unlock()
	}
	atomic.AddInt64(p, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *counterStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

// durationBuckets are histogram boundaries in seconds.
var durationBuckets = []float64{
	0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
}

// sizeBuckets are histogram boundaries in bytes.
var sizeBuckets = []float64{
	100, 1_000, 10_000, 100_000, 1_000_000,
}

// Provider holds all metric state.
type Provider struct {
	cfg Config

	requestDuration  *labeledHistograms // method|route|status_code
	responseSize     *histogram
	activeRequests   int64
	narrativeCalls   *counterStore      // kind|outcome
	narrativeLatency *labeledHistograms // kind
}

// NewProvider creates a provider with cfg's defaults applied.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:              cfg,
		requestDuration:  newLabeledHistograms(durationBuckets),
		responseSize:     newHistogram(sizeBuckets),
		narrativeCalls:   newCounterStore(),
		narrativeLatency: newLabeledHistograms(durationBuckets),
	}
}

// LabelsKey joins label values the way the stores key them.
func LabelsKey(values ...string) string {
	return strings.Join(values, "|")
}

// ActiveRequests returns the number of requests in flight.
func (tp *Provider) ActiveRequests() int64 {
	return atomic.LoadInt64(&tp.activeRequests)
}

// RequestCount returns how many requests matched the labels.
func (tp *Provider) RequestCount(method, route string, status int) int64 {
	tp.requestDuration.mu.RLock()
	h, ok := tp.requestDuration.items[LabelsKey(method, route, strconv.Itoa(status))]
	tp.requestDuration.mu.RUnlock()
	if !ok {
		return 0
	}
	return h.Count()
}

// NarrativeCount returns the number of resolutions of kind with outcome.
func (tp *Provider) NarrativeCount(kind, outcome string) int64 {
	return tp.narrativeCalls.get(LabelsKey(kind, outcome))
}

// ObserveNarrative records one narrative resolution. elapsed is only
// observed when the provider was actually called.
func (tp *Provider) ObserveNarrative(kind, outcome string, elapsed time.Duration) {
	if !tp.cfg.metricsOn() {
		return
	}
	tp.narrativeCalls.inc(LabelsKey(kind, outcome))
	if elapsed > 0 {
		tp.narrativeLatency.get(kind).Observe(elapsed.Seconds())
	}
}

// MetricsMiddleware records duration, response size and in-flight count for
// every request.
func (tp *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !tp.cfg.metricsOn() {
				return next(c)
			}

			atomic.AddInt64(&tp.activeRequests, 1)
			start := time.Now()

			err := next(c)

			atomic.AddInt64(&tp.activeRequests, -1)
			elapsed := time.Since(start).Seconds()

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			tp.requestDuration.get(LabelsKey(c.Request().Method, route, strconv.Itoa(status))).Observe(elapsed)
			if size := c.Response().Size; size > 0 {
				tp.responseSize.Observe(float64(size))
			}
			return err
		}
	}
}

// PrometheusHandler serves all metrics in Prometheus text format.
func (tp *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP build_info Service build information.\n")
		b.WriteString("# TYPE build_info gauge\n")
		fmt.Fprintf(&b, "build_info{service=%q,version=%q,environment=%q} 1\n\n",
			tp.cfg.ServiceName, tp.cfg.ServiceVersion, tp.cfg.Environment)

		writeLabeledHistogram(&b, "http_server_request_duration_seconds",
			"Duration of HTTP requests in seconds.",
			[]string{"method", "route", "status_code"}, tp.requestDuration)

		b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", tp.ActiveRequests())

		b.WriteString("# HELP http_server_response_size_bytes Size of HTTP response bodies in bytes.\n")
		b.WriteString("# TYPE http_server_response_size_bytes histogram\n")
		writeSingleHistogram(&b, "http_server_response_size_bytes", "", tp.responseSize)
		b.WriteByte('\n')

		b.WriteString("# HELP narrative_requests_total Narrative text resolutions by kind and outcome.\n")
		b.WriteString("# TYPE narrative_requests_total counter\n")
		counters := tp.narrativeCalls.snapshot()
		keys := make([]string, 0, len(counters))
		for k := range counters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			parts := strings.SplitN(key, "|", 2)
			if len(parts) != 2 {
				continue
			}
			fmt.Fprintf(&b, "narrative_requests_total{kind=%q,outcome=%q} %d\n", parts[0], parts[1], counters[key])
		}
		b.WriteByte('\n')

		writeLabeledHistogram(&b, "narrative_request_duration_seconds",
			"Duration of narrative provider calls in seconds.",
			[]string{"kind"}, tp.narrativeLatency)

		return c.String(http.StatusOK, b.String())
	}
}

func writeLabeledHistogram(b *strings.Builder, name, help string, labelNames []string, store *labeledHistograms) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s histogram\n", name)
	for _, key := range store.sortedKeys() {
		values := strings.SplitN(key, "|", len(labelNames))
		if len(values) != len(labelNames) {
			continue
		}
		pairs := make([]string, len(labelNames))
		for i, n := range labelNames {
			pairs[i] = fmt.Sprintf("%s=%q", n, values[i])
		}
		writeSingleHistogram(b, name, strings.Join(pairs, ","), store.get(key))
	}
	b.WriteByte('\n')
}

func writeSingleHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()

	prefix, suffix := "", ""
	if labels != "" {
		prefix = labels + ","
		suffix = "{" + labels + "}"
	}
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%sle=\"%g\"} %d\n", name, prefix, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%sle=\"+Inf\"} %d\n", name, prefix, total)
	fmt.Fprintf(b, "%s_sum%s %g\n", name, suffix, h.Sum())
	fmt.Fprintf(b, "%s_count%s %d\n", name, suffix, total)
}
