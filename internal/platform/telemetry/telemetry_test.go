package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestConfig_Defaults(t *testing.T) {
	tp := NewProvider(Config{})
	if tp.cfg.ServiceName != "hl7syntgen" {
		t.Errorf("expected default ServiceName, got %q", tp.cfg.ServiceName)
	}
	if tp.cfg.ServiceVersion != "dev" {
		t.Errorf("expected default ServiceVersion, got %q", tp.cfg.ServiceVersion)
	}
	if tp.cfg.Environment != "development" {
		t.Errorf("expected default Environment, got %q", tp.cfg.Environment)
	}
	if !tp.cfg.metricsOn() {
		t.Error("expected metrics enabled by default")
	}
}

func TestHistogram_Observe(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	for _, v := range []float64{0.5, 1, 3, 7, 20} {
		h.Observe(v)
	}

	if h.Count() != 5 {
		t.Errorf("expected count 5, got %d", h.Count())
	}
	if h.Sum() != 31.5 {
		t.Errorf("expected sum 31.5, got %g", h.Sum())
	}
	want := []int64{2, 3, 4}
	for i, c := range h.cumulativeBuckets() {
		if c != want[i] {
			t.Errorf("bucket %d: expected %d, got %d", i, want[i], c)
		}
	}
}

func TestHistogram_ConcurrentObserve(t *testing.T) {
	h := newHistogram(durationBuckets)
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Observe(0.001)
			}
		}()
	}
	wg.Wait()

	if h.Count() != 1000 {
		t.Errorf("expected count 1000, got %d", h.Count())
	}
	if s := h.Sum(); s < 0.999 || s > 1.001 {
		t.Errorf("expected sum ~1, got %g", s)
	}
}

func newMetricsServer(tp *Provider) *echo.Echo {
	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.GET("/metrics", tp.PrometheusHandler())
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("boom")
	})
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMetricsMiddleware_RecordsRequests(t *testing.T) {
	tp := NewProvider(Config{})
	e := newMetricsServer(tp)

	get(e, "/ok")
	get(e, "/ok")
	get(e, "/teapot")
	get(e, "/fail")

	tests := []struct {
		route  string
		status int
		want   int64
	}{
		{"/ok", http.StatusOK, 2},
		{"/teapot", http.StatusTeapot, 1},
		{"/fail", http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		if got := tp.RequestCount(http.MethodGet, tt.route, tt.status); got != tt.want {
			t.Errorf("%s %d: expected %d, got %d", tt.route, tt.status, tt.want, got)
		}
	}
	if tp.ActiveRequests() != 0 {
		t.Errorf("expected no active requests, got %d", tp.ActiveRequests())
	}
	if tp.responseSize.Count() == 0 {
		t.Error("expected response sizes recorded")
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(false)})
	e := newMetricsServer(tp)

	get(e, "/ok")
	tp.ObserveNarrative("lab_result", "local", 0)

	if got := tp.RequestCount(http.MethodGet, "/ok", http.StatusOK); got != 0 {
		t.Errorf("expected nothing recorded, got %d", got)
	}
	if got := tp.NarrativeCount("lab_result", "local"); got != 0 {
		t.Errorf("expected no narrative count, got %d", got)
	}
}

func TestObserveNarrative(t *testing.T) {
	tp := NewProvider(Config{})
	tp.ObserveNarrative("clinical_note", "provider", 120*time.Millisecond)
	tp.ObserveNarrative("clinical_note", "provider", 80*time.Millisecond)
	tp.ObserveNarrative("clinical_note", "local", 0)

	if got := tp.NarrativeCount("clinical_note", "provider"); got != 2 {
		t.Errorf("expected 2 provider resolutions, got %d", got)
	}
	if got := tp.NarrativeCount("clinical_note", "local"); got != 1 {
		t.Errorf("expected 1 local resolution, got %d", got)
	}
	if h := tp.narrativeLatency.get("clinical_note"); h.Count() != 2 {
		t.Errorf("expected only provider calls timed, got %d", h.Count())
	}
}

func TestPrometheusHandler(t *testing.T) {
	tp := NewProvider(Config{ServiceVersion: "1.2.3", Environment: "test"})
	e := newMetricsServer(tp)

	get(e, "/ok")
	tp.ObserveNarrative("referral_reason", "error", 50*time.Millisecond)

	rec := get(e, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		`build_info{service="hl7syntgen",version="1.2.3",environment="test"} 1`,
		"# TYPE http_server_request_duration_seconds histogram",
		`http_server_request_duration_seconds_bucket{method="GET",route="/ok",status_code="200",le="+Inf"} 1`,
		`http_server_request_duration_seconds_count{method="GET",route="/ok",status_code="200"} 1`,
		"# TYPE http_server_active_requests gauge",
		"http_server_active_requests 1",
		"# TYPE http_server_response_size_bytes histogram",
		`narrative_requests_total{kind="referral_reason",outcome="error"} 1`,
		`narrative_request_duration_seconds_bucket{kind="referral_reason",le="0.05"} 1`,
		`narrative_request_duration_seconds_count{kind="referral_reason"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}
