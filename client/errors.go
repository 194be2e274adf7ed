package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Destination is the page a front end should send the user to after an error.
type Destination string

const (
	DestNetworkError Destination = "/network-error"
	DestServerError  Destination = "/error"
	DestAuth         Destination = "/auth"
	DestNotFound     Destination = "/404"
	// DestNone means the caller handles the error itself.
	DestNone Destination = ""
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NetworkError is a request that got no response at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is, or wraps, a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Classify maps err onto the page it should lead to.
func Classify(err error) Destination {
	if err == nil {
		return DestNone
	}
	if IsNetworkError(err) {
		return DestNetworkError
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return DestNone
	}
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		return DestServerError
	case apiErr.Status == http.StatusUnauthorized:
		return DestAuth
	case apiErr.Status == http.StatusNotFound:
		return DestNotFound
	}
	return DestNone
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
