package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubProvider struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (s *stubProvider) Complete(ctx context.Context, _ Prompt) (string, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.text, s.err
}

func fallbackText() string { return "fallback" }

func TestResolver_NilProvider(t *testing.T) {
	r := NewResolver(nil, time.Second, zerolog.Nop())
	if r.Available() {
		t.Error("expected resolver without provider to be unavailable")
	}
	if got := r.Resolve(context.Background(), NewPrompt(KindClinicalNote, "", "x"), 0, fallbackText); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestResolver_NilResolver(t *testing.T) {
	var r *Resolver
	if r.Available() {
		t.Error("expected nil resolver to be unavailable")
	}
	if got := r.Resolve(context.Background(), Prompt{}, 0, fallbackText); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubProvider
		maxLen int
		want   string
	}{
		{"provider text", &stubProvider{text: "  6.1 mmol/L\n"}, 50, "6.1 mmol/L"},
		{"provider error", &stubProvider{err: errors.New("boom")}, 50, "fallback"},
		{"unavailable", &stubProvider{err: ErrUnavailable}, 0, "fallback"},
		{"empty text", &stubProvider{text: "   "}, 0, "fallback"},
		{"too long", &stubProvider{text: strings.Repeat("x", 51)}, 50, "fallback"},
		{"exact limit", &stubProvider{text: strings.Repeat("x", 50)}, 50, strings.Repeat("x", 50)},
		{"unbounded", &stubProvider{text: strings.Repeat("y", 500)}, 0, strings.Repeat("y", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.stub, time.Second, zerolog.Nop())
			got := r.Resolve(context.Background(), NewPrompt(KindLabResult, "", "x"), tt.maxLen, fallbackText)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if tt.stub.calls != 1 {
				t.Errorf("expected exactly one provider call, got %d", tt.stub.calls)
			}
		})
	}
}

func TestResolver_Timeout(t *testing.T) {
	stub := &stubProvider{text: "late", delay: time.Second}
	r := NewResolver(stub, 20*time.Millisecond, zerolog.Nop())

	start := time.Now()
	got := r.Resolve(context.Background(), NewPrompt(KindRadiologyReport, "", "x"), 0, fallbackText)
	if got != "fallback" {
		t.Errorf("expected fallback after timeout, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expected resolution bounded by timeout, took %s", elapsed)
	}
}

func TestResolver_FallbackNotCalledOnSuccess(t *testing.T) {
	r := NewResolver(&stubProvider{text: "ok"}, time.Second, zerolog.Nop())
	called := false
	r.Resolve(context.Background(), Prompt{}, 0, func() string {
		called = true
		return "fallback"
	})
	if called {
		t.Error("expected fallback not invoked when provider succeeds")
	}
}

func TestResolver_Observer(t *testing.T) {
	tests := []struct {
		name   string
		stub   Provider
		maxLen int
		want   Outcome
	}{
		{"no provider", nil, 0, OutcomeLocal},
		{"provider text", &stubProvider{text: "ok"}, 0, OutcomeProvider},
		{"provider error", &stubProvider{err: errors.New("boom")}, 0, OutcomeError},
		{"empty text", &stubProvider{text: "  "}, 0, OutcomeEmpty},
		{"too long", &stubProvider{text: "abcdef"}, 3, OutcomeTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Outcome
			var kinds []Kind
			r := NewResolver(tt.stub, time.Second, zerolog.Nop(), WithObserver(func(k Kind, o Outcome, _ time.Duration) {
				kinds = append(kinds, k)
				got = append(got, o)
			}))
			r.Resolve(context.Background(), NewPrompt(KindLabResult, "", "x"), tt.maxLen, fallbackText)

			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("expected [%s], got %v", tt.want, got)
			}
			if len(kinds) == 1 && kinds[0] != KindLabResult {
				t.Errorf("expected kind %s, got %s", KindLabResult, kinds[0])
			}
		})
	}
}
