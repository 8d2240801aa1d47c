package wire

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type bufferReadWriter struct {
	bytes.Buffer
	written []byte
}

func (b *bufferReadWriter) Write(p []byte) (int, error) {
	b.written = append(b.written, p...)
	return len(p), nil
}

func TestStreamMergeOnSkip(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{1, 2, 3})
	require.Equal(t, 0, s.Available())
	require.Equal(t, 3, s.Pending())

	s.Mark(10)
	n, err := s.Skip(9)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, s.Reset())
	require.Equal(t, 3, s.Available())
	require.Equal(t, 0, s.Pending())

	for _, expected := range []byte{1, 2, 3} {
		b, err := s.ReadByte()
		require.NoError(t, err)
		require.Equal(t, expected, b)
	}
	_, err = s.ReadByte()
	require.Equal(t, ErrStarved, err)
}

func TestStreamReadMergesWhenEmpty(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{7})
	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(7), b)
}

func TestStreamMarkKeptAcrossMerge(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{1, 2, 3, 4})
	DefaultRefill().Prime(s)
	s.ReadByte()
	s.ReadByte()
	s.Mark(8)
	s.feed([]byte{5, 6})
	n, err := s.Skip(8)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.NoError(t, s.Reset())
	require.Equal(t, 4, s.Available())
	b, _ := s.ReadByte()
	require.Equal(t, byte(3), b)
}

func TestStreamMarkLimit(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{1, 2, 3, 4})
	s.Mark(2)
	_, err := s.Skip(3)
	require.NoError(t, err)
	require.Equal(t, ErrInvalidMark, s.Reset())
}

func TestStreamClear(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{1, 2, 3})
	s.Skip(1)
	s.feed([]byte{4})
	require.NoError(t, s.Clear())
	require.Equal(t, 0, s.Available())
	require.Equal(t, 0, s.Pending())
}

func TestStreamErrorWithLeftover(t *testing.T) {
	s := NewStream(&bufferReadWriter{})
	s.feed([]byte{1, 2, 3, 4, 5})
	s.lock.Lock()
	s.err = io.EOF
	s.lock.Unlock()

	require.NoError(t, DefaultRefill().Prime(s))
	require.Equal(t, 5, s.Available())
	require.Equal(t, io.EOF, DefaultRefill().Prime(s))
	require.Equal(t, 5, s.Available())
	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
}

func TestStreamWrite(t *testing.T) {
	rw := &bufferReadWriter{}
	s := NewStream(rw)
	require.NoError(t, CmdSample.Send(s))
	require.Equal(t, []byte{byte(CmdSample)}, rw.written)
}

func TestStreamRun(t *testing.T) {
	local, remote := net.Pipe()
	s := NewStream(local)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	frame := AppendFrame(nil, testRaw())
	_, err := remote.Write(frame)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Pending() == len(frame) }, time.Second, time.Millisecond)

	require.NoError(t, DefaultRefill().Prime(s))
	require.Equal(t, len(frame), s.Available())

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop")
	}
	remote.Close()
}

func TestStreamTransportError(t *testing.T) {
	local, remote := net.Pipe()
	s := NewStream(local)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background()) }()
	remote.Close()
	select {
	case err := <-errCh:
		require.Equal(t, io.EOF, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop")
	}
	_, err := s.ReadByte()
	require.Equal(t, io.EOF, err)
	_, err = s.Skip(1)
	require.Equal(t, io.EOF, err)
	require.Equal(t, io.EOF, s.Clear())
}

func TestStreamClose(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	s := NewStream(local)
	require.NoError(t, s.Close())
	_, err := s.ReadByte()
	require.Equal(t, ErrClosed, err)
	require.Error(t, s.WriteByte(1))
}
