package invoke

import (
	"fmt"
)

// ErrorKind classifies a failed outbound call.
type ErrorKind int

const (
	// KindTimeout means the call hit the proxy timeout.
	KindTimeout ErrorKind = iota + 1
	// KindHTTPStatus means the remote answered with a non-2xx status.
	KindHTTPStatus
	// KindTransport covers DNS, connection and TLS failures.
	KindTransport
	// KindTooLarge means a JSON body ran past the read limit and
	// cannot be rendered whole.
	KindTooLarge
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindTransport:
		return "transport"
	case KindTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// CallError is the failure of a single outbound call.
// Status and Body are set only for KindHTTPStatus; Body is already truncated.
// Limit is set only for KindTooLarge.
type CallError struct {
	Kind   ErrorKind
	Status int
	Body   string
	Limit  int64
	Err    error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "Request timed out"
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
	case KindTooLarge:
		return fmt.Sprintf("Response too large: JSON body exceeds %d bytes", e.Limit)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "request failed"
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// UnsupportedMethodError is returned for any method other than GET or POST.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("Unsupported method: %s", e.Method)
}

// NoTestURLError is returned by QuickTest for an API without a test URL.
type NoTestURLError struct {
	Name string
}

func (e *NoTestURLError) Error() string {
	return fmt.Sprintf("No test URL available for %s", e.Name)
}

// Hint is advisory text shown next to the error.
func (e *NoTestURLError) Hint() string {
	return "This API may require authentication. Check the main URL."
}
