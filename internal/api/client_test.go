package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      2,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		ExponentBase:    2.0,
		RetryableErrors: []int{429, 500, 502, 503, 504},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *PreferenceClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewPreferenceClient(Options{
		URL:         server.URL + "/api/users/theme",
		UserAgent:   "themer-test",
		RetryConfig: fastRetry(),
		Logger:      log.New(io.Discard),
	})
	require.NoError(t, err)
	return client
}

func TestNewPreferenceClient(t *testing.T) {
	_, err := NewPreferenceClient(Options{})
	assert.ErrorContains(t, err, "preference url is required")

	client, err := NewPreferenceClient(Options{URL: "http://localhost/api/users/theme"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/api/users/theme", client.URL())
	assert.Zero(t, client.httpClient.Timeout)
	assert.Equal(t, DefaultRetryConfig(), client.retryConfig)
}

func TestSetPreference(t *testing.T) {
	var got Preference
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/theme", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "themer-test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.SetPreference(context.Background(), "tok-123", "teal")
	require.NoError(t, err)
	assert.Equal(t, "teal", got.ThemePreference)
	assert.Equal(t, http.StatusNoContent, result.StatusCode)
	assert.Equal(t, 1, result.Attempts)
	assert.Len(t, result.RequestID, 36)
}

func TestGetPreference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"themePreference": "purple", "other": 1}`))
	})

	pref, result, err := client.GetPreference(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "purple", pref.ThemePreference)
	assert.JSONEq(t, `{"themePreference": "purple", "other": 1}`, string(pref.Raw))
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestGetPreferenceEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	pref, _, err := client.GetPreference(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, pref.ThemePreference)
	assert.Nil(t, pref.Raw)
}

func TestGetPreferenceRejectsGarbage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, _, err := client.GetPreference(context.Background(), "tok")
	assert.ErrorContains(t, err, "failed to decode preference response")
}

func TestRequestsRequireToken(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := client.SetPreference(context.Background(), "", "dark")
	assert.ErrorContains(t, err, "bearer token is required")
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSetPreferenceRetriesServerErrors(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	result, err := client.SetPreference(context.Background(), "tok", "red")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestSetPreferenceGivesUp(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "upstream down"}`))
	})

	result, err := client.SetPreference(context.Background(), "tok", "red")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, 3, result.Attempts)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "token expired"}`))
	})

	_, err := client.SetPreference(context.Background(), "tok", "blue")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestSetPreferenceHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client.retryConfig.BaseDelay = time.Second
	client.retryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SetPreference(ctx, "tok", "blue")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	client := &PreferenceClient{retryConfig: DefaultRetryConfig()}
	client.retryConfig.JitterMax = 0

	assert.Equal(t, 500*time.Millisecond, client.calculateBackoff(0))
	assert.Equal(t, time.Second, client.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, client.calculateBackoff(2))
	assert.Equal(t, client.retryConfig.MaxDelay, client.calculateBackoff(10))
}

func TestShouldRetry(t *testing.T) {
	client := &PreferenceClient{retryConfig: DefaultRetryConfig()}

	tests := []struct {
		name        string
		err         error
		attempt     int
		shouldRetry bool
	}{
		{"service unavailable", &APIError{StatusCode: 503}, 0, true},
		{"rate limited", &APIError{StatusCode: 429}, 0, true},
		{"unauthorized", &APIError{StatusCode: 401}, 0, false},
		{"bad request", &APIError{StatusCode: 400}, 0, false},
		{"max attempts", &APIError{StatusCode: 503}, 3, false},
		{"canceled", context.Canceled, 0, false},
		{"connection refused", errors.New("request failed: dial tcp: connection refused"), 1, true},
		{"other", errors.New("boom"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shouldRetry, client.shouldRetry(tt.err, tt.attempt))
		})
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Not found", Service: "preference"}
	assert.Equal(t, "preference API Error (404): Not found", err.Error())
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, errors.Is(&APIError{StatusCode: 403}, ErrUnauthorized))
}

func TestParseErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nested":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "Invalid theme"}}`))
		case "/simple":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "Simple error"}`))
		case "/plain":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Plain text error"))
		case "/empty":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tests := []struct {
		path    string
		message string
	}{
		{"/nested", "Invalid theme"},
		{"/simple", "Simple error"},
		{"/plain", "Plain text error"},
		{"/empty", "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			var apiErr *APIError
			require.ErrorAs(t, ParseErrorResponse(resp, "preference"), &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, resp.StatusCode, apiErr.StatusCode)
		})
	}
}
