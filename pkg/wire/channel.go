package wire

import "io"

// Channel is the duplex byte channel to the sensor platform.
// Reads never block: a caller must check Available first.
type Channel interface {
	io.ByteReader
	io.ByteWriter
	// Available returns the number of bytes readable without blocking.
	Available() int
	// Mark remembers the current read position. The mark stays valid
	// for at most readLimit bytes.
	Mark(readLimit int)
	// Reset rewinds to the marked position.
	Reset() error
	// Skip skips up to n bytes and returns the number of skipped bytes.
	Skip(n int) (int, error)
	// Clear drops all buffered bytes.
	Clear() error
}

// Refill is the buffering strategy applied before decoding.
// It forces the channel to merge received bytes into its buffer when fewer
// than Min bytes are visible, without consuming any byte.
type Refill struct {
	Min     int
	Request int
}

// DefaultRefill returns the default strategy.
func DefaultRefill() Refill {
	return Refill{Min: DefaultMinBuffered, Request: DefaultRefillRequest}
}

// Prime applies the strategy on ch.
func (r Refill) Prime(ch Channel) error {
	if ch.Available() >= r.Min {
		return nil
	}
	ch.Mark(r.Request + 2)
	_, err := ch.Skip(r.Request + 1)
	if resetErr := ch.Reset(); err == nil {
		err = resetErr
	}
	return err
}
