package edgar

import "fmt"

// Error taxonomy for registry interactions. "Not found" outcomes are not
// errors anywhere in this package: operations whose contract allows absence
// return an ok bool instead.

// TransientNetworkError reports a failed network interaction: a timeout, a
// refused connection, or a non-success status. The core never retries it;
// callers surface it as that one item's failure.
type TransientNetworkError struct {
	URL        string
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("edgar: request %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("edgar: request %s: %v", e.URL, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response body that could not be decoded
// into the shape an operation requires. Where a fallback parse tier exists
// it is tried before this error is produced; otherwise the operation
// degrades to an empty result.
type MalformedResponseError struct {
	URL string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("edgar: malformed response from %s: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ConfigurationError reports a caller-side precondition violation, such as
// a missing identifying user agent. It fails only the operation that needed
// the setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("edgar: configuration %s: %s", e.Setting, e.Reason)
}
