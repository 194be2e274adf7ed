package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Retryable reports whether a request that ended with resp or err should be sent again:
// transport failures, 5xx, 408 and 429.
func Retryable(resp *http.Response, err error) bool {
	if err != nil {
		return IsNetworkError(err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return true
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return true
	}
	return false
}

// Backoff returns the wait before retry n (0-based): base * 2^n.
func Backoff(base time.Duration, n int) time.Duration {
	return base * time.Duration(1<<uint(n))
}

// send issues the request built by newRequest, retrying per Retryable.
// newRequest runs once per attempt so the body can be re-read.
func (c *Client) send(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			err = &NetworkError{Err: err}
		}
		if attempt >= c.maxRetries || !Retryable(resp, err) {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		delay := Backoff(c.baseDelay, attempt)
		c.log.Warn("retrying request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", status),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
