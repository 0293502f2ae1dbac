package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnknownProvider = errors.New("imagegen: unknown provider")
	ErrTokenRequired   = errors.New("imagegen: api token is required")
)

// Request is a single generation call.
type Request struct {
	Prompt string
	Size   string
	Model  string
}

// Provider turns a prompt into image bytes. The generator normalizes
// whatever format comes back to PNG.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// ProviderConfig configures a provider.
type ProviderConfig struct {
	Token string
	Model string
	// BaseURL overrides the provider API root.
	BaseURL    string
	HTTPClient *http.Client
	// PollInterval spaces status checks for asynchronous providers.
	PollInterval time.Duration
	// MaxRetries is passed to SDK-backed providers. Zero disables retries.
	MaxRetries int
}

// NewProvider builds the provider called name.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrTokenRequired
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return newOpenAI(cfg), nil
	case "replicate":
		return newReplicate(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// APIError is a non-2xx provider response.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("imagegen: %s returned %d: %s", e.Provider, e.Status, e.Body)
}

func checkResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &APIError{Provider: provider, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func download(ctx context.Context, client *http.Client, provider, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: download: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(provider, resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

const maxImageBytes = 32 << 20
