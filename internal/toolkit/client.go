// Package toolkit is a JSON-over-HTTP client for the hosted tool execution
// API that fronts the user's mail and calendar accounts.
package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const executePath = "/v1/tools/execute"

var (
	// ErrAuthorizationRequired indicates the user has not yet granted the
	// toolkit access to the underlying account.
	ErrAuthorizationRequired = errors.New("toolkit authorization required")

	// ErrCircuitOpen indicates the client is refusing calls after repeated
	// failures.
	ErrCircuitOpen = errors.New("toolkit circuit open")
)

// Config configures the toolkit client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.toolkit.example.
	BaseURL string

	// ClientID and ClientSecret authenticate this application via the
	// client-credentials grant at TokenURL.
	ClientID     string
	ClientSecret string
	TokenURL     string

	// UserID identifies the end user whose accounts the tools act on.
	UserID string

	// Timeout bounds each HTTP call. Defaults to 30 seconds.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the circuit breaker. Defaults to 5.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	// Defaults to 30 seconds.
	OpenTimeout time.Duration
}

// Client executes named tools against the toolkit API. Calls go through a
// circuit breaker so a degraded provider does not stall every command.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
	logger     *slog.Logger
}

// NewClient creates a toolkit client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("toolkit base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = creds.Client(context.Background())
		httpClient.Timeout = cfg.Timeout
	}

	settings := gobreaker.Settings{
		Name:    "toolkit",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userID:     cfg.UserID,
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[json.RawMessage](settings),
		logger:     logger,
	}, nil
}

type executeRequest struct {
	ToolName string `json:"tool_name"`
	Input    any    `json:"input"`
	UserID   string `json:"user_id"`
}

type executeResponse struct {
	Output struct {
		Value json.RawMessage `json:"value"`
	} `json:"output"`
	Error string `json:"error,omitempty"`
}

// Execute runs a named tool and decodes its output value into out. A nil out
// discards the output.
func (c *Client) Execute(ctx context.Context, toolName string, input any, out any) error {
	value, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.execute(ctx, toolName, input)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, toolName)
	}
	if err != nil {
		return err
	}

	if out == nil || len(value) == 0 {
		return nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("decode %s output: %w", toolName, err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, toolName string, input any) (json.RawMessage, error) {
	body, err := json.Marshal(executeRequest{
		ToolName: toolName,
		Input:    input,
		UserID:   c.userID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", toolName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+executePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", toolName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", toolName, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: %s", ErrAuthorizationRequired, toolName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("execute %s: unexpected status %d", toolName, resp.StatusCode)
	}

	var decoded executeResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", toolName, err)
	}
	if decoded.Error != "" {
		if strings.Contains(decoded.Error, "authorization required") {
			return nil, fmt.Errorf("%w: %s", ErrAuthorizationRequired, toolName)
		}
		return nil, fmt.Errorf("execute %s: %s", toolName, decoded.Error)
	}
	return decoded.Output.Value, nil
}
