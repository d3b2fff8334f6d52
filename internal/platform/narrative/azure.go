package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a completion response is read.
const maxResponseBytes = 1 << 20

// AzureConfig holds the Azure OpenAI deployment settings.
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string

	// RequestsPerSecond and Burst throttle outbound calls. A zero rate
	// disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// Configured reports whether both the endpoint and the key are present.
func (c AzureConfig) Configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// ClientOption configures an AzureClient.
type ClientOption func(*AzureClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AzureClient) { c.httpClient = hc }
}

// AzureClient calls the chat completions endpoint of an Azure OpenAI
// deployment.
type AzureClient struct {
	cfg        AzureConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAzureClient returns a client for the deployment. It returns
// ErrUnavailable when the endpoint or key is missing.
func NewAzureClient(cfg AzureConfig, opts ...ClientOption) (*AzureClient, error) {
	if !cfg.Configured() {
		return nil, ErrUnavailable
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("narrative: deployment name is required")
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &AzureClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *AzureClient) completionsURL() string {
	base := strings.TrimRight(c.cfg.Endpoint, "/")
	q := url.Values{}
	if c.cfg.APIVersion != "" {
		q.Set("api-version", c.cfg.APIVersion)
	}
	u := base + "/openai/deployments/" + url.PathEscape(c.cfg.Deployment) + "/chat/completions"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Complete sends the prompt and returns the first choice's content.
func (c *AzureClient) Complete(ctx context.Context, p Prompt) (string, error) {
	if c == nil {
		return "", ErrUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("narrative: rate limit wait: %w", err)
	}

	body := chatRequest{
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	if p.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: p.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: p.User})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("narrative: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("narrative: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("narrative: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("narrative: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(data)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return "", fmt.Errorf("narrative: unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("narrative: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("narrative: response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}
