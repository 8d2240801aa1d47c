package wire

import "errors"

var (
	// ErrStarved indicates a read was attempted with no buffered bytes.
	ErrStarved = errors.New("no buffered bytes")
	// ErrInvalidMark indicates Reset is called without a valid mark.
	ErrInvalidMark = errors.New("invalid mark")
	// ErrClosed indicates the stream is closed.
	ErrClosed = errors.New("stream closed")
)
