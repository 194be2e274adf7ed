package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSleeps replaces the wait between attempts with a recorder.
func recordSleeps(c *Client) *[]time.Duration {
	var delays []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return &delays
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(time.Second, 0))
	assert.Equal(t, 2*time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 4*time.Second, Backoff(time.Second, 2))
}

func TestRetryable(t *testing.T) {
	cases := map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusNotFound:            false,
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
	}
	for status, want := range cases {
		assert.Equal(t, want, Retryable(&http.Response{StatusCode: status}, nil), status)
	}
	assert.True(t, Retryable(nil, &NetworkError{Err: errors.New("refused")}))
	assert.False(t, Retryable(nil, errors.New("bad url")))
}

func TestRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"username":"root","password":"pw"}`, string(body), "body is re-sent on every attempt")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok", "admin": map[string]any{"username": "root"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	delays := recordSleeps(c)

	session, err := c.AdminLogin(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "root", session.Admin.Username)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
	assert.Equal(t, "tok", c.token)
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"maintenance"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(2, 10*time.Millisecond))
	delays := recordSleeps(c)

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "maintenance", apiErr.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *delays)
	assert.Equal(t, DestServerError, Classify(err))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid or expired token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("secret"))
	delays := recordSleeps(c)

	_, err := c.ListProducts(context.Background(), url.Values{"category": {"lamps"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, *delays)
	assert.Equal(t, DestAuth, Classify(err))
}

func TestNetworkErrorIsRetriedAndClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(base, WithRetry(1, time.Millisecond))
	delays := recordSleeps(c)

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Len(t, *delays, 1)
	assert.Equal(t, DestNetworkError, Classify(err))
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(srv.URL, WithRetry(5, time.Hour))
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListProductsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "lamps", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"products":[],"total":0,"page":1,"limit":20,"pages":0}`))
	}))
	defer srv.Close()

	list, err := New(srv.URL+"/api/").ListProducts(context.Background(), url.Values{"category": {"lamps"}})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, DestNone, Classify(nil))
	assert.Equal(t, DestNotFound, Classify(&APIError{Status: http.StatusNotFound}))
	assert.Equal(t, DestServerError, Classify(&APIError{Status: http.StatusBadGateway}))
	assert.Equal(t, DestNone, Classify(&APIError{Status: http.StatusConflict}))
	assert.Equal(t, DestNone, Classify(errors.New("other")))
}
