package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, srv *httptest.Server) *AzureClient {
	t.Helper()
	c, err := NewAzureClient(AzureConfig{
		Endpoint:   srv.URL + "/",
		APIKey:     "test-key",
		APIVersion: "2024-02-15-preview",
		Deployment: "gpt-4.1-mini",
	}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNewAzureClient_NotConfigured(t *testing.T) {
	tests := []AzureConfig{
		{},
		{Endpoint: "https://example.openai.azure.com"},
		{APIKey: "secret"},
	}
	for _, cfg := range tests {
		c, err := NewAzureClient(cfg)
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("config %+v: expected ErrUnavailable, got %v", cfg, err)
		}
		if c != nil {
			t.Errorf("config %+v: expected nil client", cfg)
		}
	}
}

func TestNewAzureClient_MissingDeployment(t *testing.T) {
	_, err := NewAzureClient(AzureConfig{Endpoint: "https://example.openai.azure.com", APIKey: "secret"})
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestAzureClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/openai/deployments/gpt-4.1-mini/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("api-version"); v != "2024-02-15-preview" {
			t.Errorf("expected api-version query, got %q", v)
		}
		if k := r.Header.Get("api-key"); k != "test-key" {
			t.Errorf("expected api-key header, got %q", k)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"5.4 mmol/L"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	text, err := c.Complete(context.Background(), NewPrompt(KindLabResult, "system text", "user text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "5.4 mmol/L" {
		t.Errorf("expected '5.4 mmol/L', got %q", text)
	}

	if got.MaxTokens != 50 {
		t.Errorf("expected max_tokens 50, got %d", got.MaxTokens)
	}
	if got.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("expected system and user messages, got %+v", got.Messages)
	}
}

func TestAzureClient_Complete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"429"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Complete(context.Background(), NewPrompt(KindClinicalNote, "", "note"))
	if err == nil {
		t.Fatal("expected error for 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestAzureClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv).Complete(context.Background(), NewPrompt(KindClinicalNote, "", "note")); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestAzureClient_Complete_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv).Complete(context.Background(), NewPrompt(KindClinicalNote, "", "note")); err == nil {
		t.Error("expected decode error")
	}
}

func TestAzureClient_Complete_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := newTestClient(t, srv).Complete(ctx, NewPrompt(KindRadiologyReport, "", "report")); err == nil {
		t.Error("expected error when the deadline passes")
	}
}

func TestAzureClient_NilReceiver(t *testing.T) {
	var c *AzureClient
	if _, err := c.Complete(context.Background(), Prompt{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestKind_MaxTokens(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindLabResult, 50},
		{KindRadiologyReport, 250},
		{KindReferralReason, 200},
		{KindClinicalNote, 150},
		{KindDischargeSummary, 200},
	}
	for _, tt := range tests {
		if got := tt.kind.MaxTokens(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
}
