package ghl

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ghl %s %s failed: status=%d body=%s", e.Method, e.Path, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return syncerr.ErrRemoteFetchFailed }

// Retryable reports whether the request may succeed when repeated.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Details returns the response body as JSON when it parses, otherwise as text.
func (e *APIError) Details() any {
	if json.Valid([]byte(e.Body)) {
		return json.RawMessage(e.Body)
	}
	return e.Body
}
