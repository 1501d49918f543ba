package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// ErrEmptyTranslation is returned when the service answers without text.
var ErrEmptyTranslation = errors.New("empty translation")

// Config configures the LibreTranslate-compatible client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Source     string
	Target     string
	Timeout    time.Duration
	MaxRetries int
	// InitialBackoff is the first retry delay. Zero means 200ms.
	InitialBackoff time.Duration
}

// Client calls POST {base}/translate on a LibreTranslate-compatible API.
// Transport errors, 429 and 5xx are retried with exponential backoff.
// Five consecutive failed calls open the circuit breaker for 30s.
type Client struct {
	baseURL        string
	apiKey         string
	source         string
	target         string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	breaker        *gobreaker.CircuitBreaker[string]
}

// NewClient creates a translation client. The API key is optional.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("translator base url is required")
	}
	if cfg.Source == "" {
		cfg.Source = "id"
	}
	if cfg.Target == "" {
		cfg.Target = "en"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         key,
		source:         cfg.Source,
		target:         cfg.Target,
		client:         &http.Client{Timeout: t},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "translator",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c, nil
}

// Name returns the identifier of this translator.
func (c *Client) Name() string { return "libretranslate" }

// Translate translates text from the configured source to target language.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" || c.source == c.target {
		return text, nil
	}
	return c.breaker.Execute(func() (string, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.initialBackoff
		b.MaxInterval = 5 * time.Second
		b.MaxElapsedTime = 0
		policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
		return backoff.RetryWithData(func() (string, error) {
			return c.translateOnce(ctx, text)
		}, policy)
	})
}

func (c *Client) translateOnce(ctx context.Context, text string) (string, error) {
	body := map[string]string{
		"q":      text,
		"source": c.source,
		"target": c.target,
		"format": "text",
	}
	if c.apiKey != "" {
		body["api_key"] = c.apiKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(data))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("translate failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return "", backoff.Permanent(fmt.Errorf("translate failed: %s", resp.Status))
	}
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode translation: %w", err))
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return "", backoff.Permanent(ErrEmptyTranslation)
	}
	return out.TranslatedText, nil
}
