package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedURL      = errors.New("malformed url")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrConnection        = errors.New("connection error")
	ErrProtocol          = errors.New("protocol error")
	ErrTruncatedResponse = errors.New("truncated response")
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrHTTPStatus        = errors.New("unexpected http status")
)

// ConnectionError reports a dial, handshake or I/O failure on the underlying stream.
type ConnectionError struct {
	Op   string
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is lets callers match any ConnectionError with errors.Is(err, ErrConnection).
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
