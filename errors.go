package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldMissing means a required field is absent or null.
	ErrFieldMissing = errors.New("field missing")
	// ErrFieldInvalid means a field is present but malformed.
	ErrFieldInvalid = errors.New("field invalid")
	// ErrReconcile means a mention's declared indices could not be matched to the text.
	ErrReconcile = errors.New("mention range not found in text")
	// ErrMalformedPayload means a response body is not usable JSON.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrTransport means the request never produced a usable response.
	ErrTransport = errors.New("transport error")
)

// FieldError reports which field of which entity failed validation.
type FieldError struct {
	Entity string // "post", "user", "media", "mention"
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func missing(entity, field string) error {
	return &FieldError{Entity: entity, Field: field, Err: ErrFieldMissing}
}

func invalid(entity, field string, cause error) error {
	if cause == nil {
		return &FieldError{Entity: entity, Field: field, Err: ErrFieldInvalid}
	}
	return &FieldError{Entity: entity, Field: field, Err: fmt.Errorf("%w: %v", ErrFieldInvalid, cause)}
}

// errorClass categorizes v1.1 API error bodies.
type errorClass int

const (
	errNone          errorClass = iota
	errAuthExpired              // 32, 89: could not authenticate / invalid token
	errNotFound                 // 34: page does not exist
	errRateLimited              // 88: rate limit exceeded
	errOverCapacity             // 130: over capacity
	errInternal                 // 131: internal error
	errBadAuthData              // 215: bad authentication data
)

func (c errorClass) String() string {
	switch c {
	case errAuthExpired:
		return "auth expired"
	case errNotFound:
		return "not found"
	case errRateLimited:
		return "rate limited"
	case errOverCapacity:
		return "over capacity"
	case errInternal:
		return "internal error"
	case errBadAuthData:
		return "bad authentication data"
	}
	return "none"
}

// APIError is an error body returned by the API.
type APIError struct {
	Status  int
	Code    int
	Message string
	class   errorClass
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("twitter API HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("twitter API HTTP %d: code %d (%s): %s", e.Status, e.Code, e.class, e.Message)
}

// Unwrap lets callers match every API failure with errors.Is(err, ErrTransport).
func (e *APIError) Unwrap() error { return ErrTransport }

// RateLimited reports whether the API refused the call for exceeding its limit.
func (e *APIError) RateLimited() bool { return e.class == errRateLimited || e.Status == 429 }

type apiErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// classifyError inspects a response body for known v1.1 error codes.
func classifyError(body []byte) (errorClass, int, string) {
	var errResp apiErrorBody
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone, 0, ""
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 32, 89:
			return errAuthExpired, e.Code, e.Message
		case 34:
			return errNotFound, e.Code, e.Message
		case 88:
			return errRateLimited, e.Code, e.Message
		case 130:
			return errOverCapacity, e.Code, e.Message
		case 131:
			return errInternal, e.Code, e.Message
		case 215:
			return errBadAuthData, e.Code, e.Message
		}
	}
	return errNone, errResp.Errors[0].Code, errResp.Errors[0].Message
}

// newAPIError builds the error for a non-200 response.
func newAPIError(status int, body []byte) *APIError {
	class, code, msg := classifyError(body)
	if msg == "" {
		msg = truncateBytes(body, 200)
	}
	return &APIError{Status: status, Code: code, Message: strings.TrimSpace(msg), class: class}
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
