package inbox

import (
	"errors"
	"fmt"
)

// ErrRefreshInFlight is returned when Refresh is called while another refresh
// on the same controller has not finished yet. The pending cycle is
// unaffected.
var ErrRefreshInFlight = errors.New("inbox refresh already in flight")

// ErrControllerClosed is returned when the controller was torn down; a
// response arriving after Close is discarded rather than rendered.
var ErrControllerClosed = errors.New("inbox controller closed")

// FetchError reports a transport failure or a non-2xx status while reading
// from the messaging API. StatusCode is zero on transport failures.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch messages: %v", e.Err)
	}
	return fmt.Sprintf("fetch messages: unexpected status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports a response body that could not be decoded.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return fmt.Sprintf("decode response: %v", e.Err) }

func (e *FormatError) Unwrap() error { return e.Err }

// SendError reports a failed message submit. The caller may retry manually;
// nothing in this package retries automatically.
type SendError struct {
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send message: %v", e.Err)
	}
	return fmt.Sprintf("send message: unexpected status %d", e.StatusCode)
}

func (e *SendError) Unwrap() error { return e.Err }

// MarkReadError reports a failed mark-read call. It is best effort: the
// controller logs it and keeps the rendered view.
type MarkReadError struct {
	StatusCode int
	Err        error
}

func (e *MarkReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mark messages read: %v", e.Err)
	}
	return fmt.Sprintf("mark messages read: unexpected status %d", e.StatusCode)
}

func (e *MarkReadError) Unwrap() error { return e.Err }
