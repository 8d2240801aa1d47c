package wire

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/inertial.go/pkg/framework"
)

// DefaultChunkSize is the default size of a single transport read.
const DefaultChunkSize = 1024

// Stream implements Channel over a transport.
// Received bytes land in an incoming area and only become visible to
// Available and ReadByte after being merged by Skip (see Refill), or when
// ReadByte finds the buffer empty.
type Stream struct {
	ReadWriter io.ReadWriter
	ChunkSize  int

	lock      sync.Mutex
	incoming  []byte
	buf       []byte
	pos       int
	mark      int
	markLimit int
	err       error

	writeLock sync.Mutex
}

// NewStream creates a Stream.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{ReadWriter: rw, ChunkSize: DefaultChunkSize, mark: -1}
}

// Run receives bytes from the transport in the background until ctx is
// done or the transport fails.
func (s *Stream) Run(ctx context.Context) error {
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, s.receive)
	}
	return fx.RunWithContext(ctx, s.receive)
}

func (s *Stream) receive() error {
	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunk := make([]byte, size)
	for {
		n, err := s.ReadWriter.Read(chunk)
		if n > 0 {
			s.feed(chunk[:n])
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			glog.V(2).Infof("stream receive stopped: %v", err)
			s.lock.Lock()
			if s.err == nil {
				s.err = err
			}
			s.lock.Unlock()
			return err
		}
	}
}

func (s *Stream) feed(p []byte) {
	s.lock.Lock()
	s.incoming = append(s.incoming, p...)
	s.lock.Unlock()
}

// merge must be called with lock held.
func (s *Stream) merge() {
	if len(s.incoming) == 0 {
		return
	}
	keep := s.pos
	if s.mark >= 0 {
		keep = s.mark
	}
	if keep > 0 {
		n := copy(s.buf, s.buf[keep:])
		s.buf = s.buf[:n]
		s.pos -= keep
		if s.mark >= 0 {
			s.mark -= keep
		}
	}
	s.buf = append(s.buf, s.incoming...)
	s.incoming = s.incoming[:0]
}

// Available implements Channel.
func (s *Stream) Available() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.buf) - s.pos
}

// Pending returns the number of received bytes not merged yet.
func (s *Stream) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.incoming)
}

// ReadByte implements Channel.
func (s *Stream) ReadByte() (byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.pos >= len(s.buf) {
		s.merge()
		if s.pos >= len(s.buf) {
			if s.err != nil {
				return 0, s.err
			}
			return 0, ErrStarved
		}
	}
	b := s.buf[s.pos]
	s.pos++
	s.checkMark()
	return b, nil
}

// Mark implements Channel.
func (s *Stream) Mark(readLimit int) {
	s.lock.Lock()
	s.mark, s.markLimit = s.pos, readLimit
	s.lock.Unlock()
}

// Reset implements Channel. The mark is consumed.
func (s *Stream) Reset() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.mark < 0 {
		return ErrInvalidMark
	}
	s.pos, s.mark = s.mark, -1
	return nil
}

// Skip implements Channel. Received bytes are merged first.
// Once the transport failed and every received byte has been merged, the
// transport error is returned even if buffered bytes remain, as no more
// bytes will complete them.
func (s *Stream) Skip(n int) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	merged := len(s.incoming) > 0
	s.merge()
	skipped := len(s.buf) - s.pos
	if skipped > n {
		skipped = n
	}
	s.pos += skipped
	s.checkMark()
	if s.err != nil && !merged {
		return skipped, s.err
	}
	return skipped, nil
}

func (s *Stream) checkMark() {
	if s.mark >= 0 && s.pos-s.mark > s.markLimit {
		s.mark = -1
	}
}

// Clear implements Channel.
func (s *Stream) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.buf, s.pos, s.mark = s.buf[:0], 0, -1
	s.incoming = s.incoming[:0]
	return s.err
}

// WriteByte implements Channel.
func (s *Stream) WriteByte(b byte) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	_, err := s.ReadWriter.Write([]byte{b})
	return err
}

// Close closes the transport if it's a Closer.
func (s *Stream) Close() error {
	s.lock.Lock()
	if s.err == nil {
		s.err = ErrClosed
	}
	s.lock.Unlock()
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
