package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	perr "starwatch/internal/platform/errors"
)

// unparsableBody replaces the message when the error payload is not JSON
const unparsableBody = "Failed to parse error response"

// StatusError carries the upstream failure detail behind a platform error
type StatusError struct {
	Status  int
	Message string
	URL     string

	// ResetAt is the quota reset time in epoch seconds, set only when the
	// response was classified as rate limited
	ResetAt int64
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("github %d at %s: %s", e.Status, e.URL, e.Message)
}

// ResetAt extracts the rate limit reset time from a classified error
func ResetAt(err error) (int64, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.ResetAt > 0 {
		return se.ResetAt, true
	}
	return 0, false
}

// StatusOf extracts the upstream HTTP status from a classified error
func StatusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}

// errorMessage pulls the "message" field out of an error payload
// Anything that does not parse as a JSON object yields a fixed message
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return unparsableBody
	}
	return payload.Message
}

// classify maps an upstream status and headers to a coded platform error
// wrapping a StatusError
func classify(status int, hdr http.Header, msg, url string) error {
	se := &StatusError{Status: status, Message: msg, URL: url}

	var code perr.ErrorCode
	switch {
	case status == http.StatusBadRequest:
		code = perr.ErrorCodeBadRequest
	case status == http.StatusUnauthorized:
		code = perr.ErrorCodeUnauthorized
	case status == http.StatusForbidden && hdr.Get("X-RateLimit-Remaining") == "0":
		code = perr.ErrorCodeTooManyRequests
		se.ResetAt = atoi64(hdr.Get("X-RateLimit-Reset"))
	case status == http.StatusForbidden:
		code = perr.ErrorCodeForbidden
	case status == http.StatusNotFound:
		code = perr.ErrorCodeNotFound
	case status == http.StatusConflict:
		code = perr.ErrorCodeConflict
	case status == http.StatusUnprocessableEntity:
		code = perr.ErrorCodeValidation
	case status >= 500 && status <= 599:
		code = perr.ErrorCodeUnavailable
	default:
		code = perr.ErrorCodeUnknown
	}

	return perr.Wrapf(se, code, "github request failed with status %d", status)
}
