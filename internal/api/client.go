package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	serviceName = "preference"
	maxBodySize = 1 << 20
)

// ErrUnauthorized is returned when the credential is rejected
var ErrUnauthorized = errors.New("credential rejected")

// Preference is the body exchanged with the remote preference endpoint
type Preference struct {
	ThemePreference string `json:"themePreference"`
}

// UserPreference is the decoded GET response. Raw keeps the whole body so
// callers can cache the full user record.
type UserPreference struct {
	Preference
	Raw json.RawMessage
}

// Result describes one completed exchange with the preference endpoint
type Result struct {
	RequestID  string
	StatusCode int
	Attempts   int
	Latency    time.Duration
}

// APIError represents an API error
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Service    string `json:"service"`
	Retryable  bool   `json:"retryable"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API Error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Unwrap maps 401/403 to ErrUnauthorized
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// RetryConfig contains retry configuration
type RetryConfig struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ExponentBase    float64
	JitterMax       time.Duration
	RetryableErrors []int // HTTP status codes that should trigger retries
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		BaseDelay:       500 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		ExponentBase:    2.0,
		JitterMax:       250 * time.Millisecond,
		RetryableErrors: []int{429, 500, 502, 503, 504},
	}
}

// Options configures a PreferenceClient
type Options struct {
	// URL is the full preference endpoint, e.g. https://host/api/users/theme
	URL         string
	UserAgent   string
	RetryConfig *RetryConfig
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// PreferenceClient reads and writes the user's theme preference on the
// remote service
type PreferenceClient struct {
	url         string
	userAgent   string
	httpClient  *http.Client
	logger      *log.Logger
	retryConfig *RetryConfig
}

// NewPreferenceClient creates a client for the preference endpoint. The
// default HTTP client has no overall timeout; callers bound requests through
// the context.
func NewPreferenceClient(opts Options) (*PreferenceClient, error) {
	if opts.URL == "" {
		return nil, errors.New("preference url is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	retry := opts.RetryConfig
	if retry == nil {
		retry = DefaultRetryConfig()
	}

	return &PreferenceClient{
		url:         opts.URL,
		userAgent:   opts.UserAgent,
		httpClient:  httpClient,
		logger:      logger,
		retryConfig: retry,
	}, nil
}

// URL returns the preference endpoint
func (c *PreferenceClient) URL() string {
	return c.url
}

// GetPreference fetches the user's record from the preference endpoint.
// An empty ThemePreference means the user has none.
func (c *PreferenceClient) GetPreference(ctx context.Context, token string) (*UserPreference, *Result, error) {
	body, result, err := c.do(ctx, http.MethodGet, token, nil)
	if err != nil {
		return nil, result, err
	}

	pref := &UserPreference{}
	if len(bytes.TrimSpace(body)) == 0 {
		return pref, result, nil
	}
	if err := json.Unmarshal(body, &pref.Preference); err != nil {
		return nil, result, fmt.Errorf("failed to decode preference response: %w", err)
	}
	pref.Raw = body
	return pref, result, nil
}

// SetPreference writes themeID as the user's preference
func (c *PreferenceClient) SetPreference(ctx context.Context, token, themeID string) (*Result, error) {
	body, err := json.Marshal(Preference{ThemePreference: themeID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}
	_, result, err := c.do(ctx, http.MethodPut, token, body)
	return result, err
}

// do executes the request with retry logic and returns the 2xx body
func (c *PreferenceClient) do(ctx context.Context, method, token string, body []byte) ([]byte, *Result, error) {
	if token == "" {
		return nil, nil, errors.New("bearer token is required")
	}

	result := &Result{RequestID: uuid.NewString()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/json",
		"X-Request-ID":  result.RequestID,
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	if c.userAgent != "" {
		headers["User-Agent"] = c.userAgent
	}

	var err error
	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		result.Attempts = attempt + 1
		var respBody []byte
		respBody, err = c.attempt(ctx, method, headers, body, result)
		if err == nil {
			return respBody, result, nil
		}

		if !c.shouldRetry(err, attempt) {
			break
		}

		delay := c.calculateBackoff(attempt)
		c.logger.Debug("Retrying preference request", "method", method, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, result, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, result, err
}

func (c *PreferenceClient) attempt(ctx context.Context, method string, headers map[string]string, body []byte, result *Result) ([]byte, error) {
	resp, err := MakeHTTPRequest(ctx, c.httpClient, method, c.url, headers, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ParseErrorResponse(resp, serviceName)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read preference response: %w", err)
	}
	return respBody, nil
}

// shouldRetry determines if an error should trigger a retry
func (c *PreferenceClient) shouldRetry(err error, attempt int) bool {
	if attempt >= c.retryConfig.MaxRetries {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		for _, retryableCode := range c.retryConfig.RetryableErrors {
			if apiErr.StatusCode == retryableCode {
				return true
			}
		}
		return apiErr.Retryable
	}

	msg := err.Error()
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network")
}

// calculateBackoff calculates the backoff delay for a retry attempt
func (c *PreferenceClient) calculateBackoff(attempt int) time.Duration {
	base := float64(c.retryConfig.BaseDelay)
	delay := base * math.Pow(c.retryConfig.ExponentBase, float64(attempt))

	if c.retryConfig.JitterMax > 0 {
		jitter := time.Duration(rand.Int63n(int64(c.retryConfig.JitterMax)))
		delay += float64(jitter)
	}

	if time.Duration(delay) > c.retryConfig.MaxDelay {
		return c.retryConfig.MaxDelay
	}

	return time.Duration(delay)
}

// MakeHTTPRequest creates and executes an HTTP request
func MakeHTTPRequest(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// ParseErrorResponse extracts error information from an HTTP response
func ParseErrorResponse(resp *http.Response, service string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Failed to read error response: %v", err),
			Service:    service,
			Retryable:  isRetryableStatusCode(resp.StatusCode),
		}
	}

	var errorData map[string]interface{}
	if json.Unmarshal(body, &errorData) == nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(errorData),
			Service:    service,
			Retryable:  isRetryableStatusCode(resp.StatusCode),
		}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Service:    service,
		Retryable:  isRetryableStatusCode(resp.StatusCode),
	}
}

// extractErrorMessage extracts the message from common error body shapes
func extractErrorMessage(errorData map[string]interface{}) string {
	if msg, ok := errorData["message"].(string); ok && msg != "" {
		return msg
	}
	if err, ok := errorData["error"].(string); ok && err != "" {
		return err
	}
	if details, ok := errorData["error"].(map[string]interface{}); ok {
		if msg, ok := details["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return "Unknown error"
}

// isRetryableStatusCode checks if an HTTP status code is retryable
func isRetryableStatusCode(statusCode int) bool {
	retryableCodes := []int{429, 500, 502, 503, 504}
	for _, code := range retryableCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}
