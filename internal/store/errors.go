package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrConflict is returned when a conditional update's expectations no longer
// hold, i.e. another writer got there first.
var ErrConflict = errors.New("store: conditional update conflict")

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// APIError is a structured error response from the record store.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the error means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error is a conditional-update conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = string(raw)
	}
	apiErr.StatusCode = resp.StatusCode

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
	default:
		return apiErr
	}
}
