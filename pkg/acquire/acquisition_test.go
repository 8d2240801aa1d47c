package acquire

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/inertial.go/pkg/framework"
	"github.com/robotalks/inertial.go/pkg/sensor"
	"github.com/robotalks/inertial.go/pkg/wire"
)

// fakePlatform is a wire.Channel answering commands like the sensor
// platform. Frames become available on the next Skip.
type fakePlatform struct {
	lock      sync.Mutex
	frame     []byte
	data      []byte
	pending   []byte
	pos       int
	mark      int
	written   []byte
	streaming bool
	readErr   error
}

func newFakePlatform() *fakePlatform {
	raw := sensor.Raw{Delta: 7, Accel: [3]int16{1, 2, 3}, AltInteger: 10, Light: 512}
	return &fakePlatform{frame: wire.AppendFrame(nil, raw), mark: -1}
}

func (p *fakePlatform) WriteByte(b byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.written = append(p.written, b)
	switch wire.Command(b) {
	case wire.CmdStartStream:
		p.streaming = true
	case wire.CmdStopStream:
		p.streaming = false
	case wire.CmdSample:
		p.pending = append(p.pending, p.frame...)
	}
	return nil
}

func (p *fakePlatform) ReadByte() (byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	if p.pos >= len(p.data) {
		return 0, wire.ErrStarved
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

func (p *fakePlatform) Available() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.data) - p.pos
}

func (p *fakePlatform) Mark(int) {
	p.lock.Lock()
	p.mark = p.pos
	p.lock.Unlock()
}

func (p *fakePlatform) Reset() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.mark < 0 {
		return wire.ErrInvalidMark
	}
	p.pos, p.mark = p.mark, -1
	return nil
}

func (p *fakePlatform) Skip(n int) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.streaming {
		p.pending = append(p.pending, p.frame...)
	}
	p.data, p.pending = append(p.data, p.pending...), nil
	if avail := len(p.data) - p.pos; n > avail {
		n = avail
	}
	p.pos += n
	return n, nil
}

func (p *fakePlatform) Clear() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.data, p.pending, p.pos, p.mark = nil, nil, 0, -1
	return nil
}

func (p *fakePlatform) commands() []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]byte(nil), p.written...)
}

func (p *fakePlatform) failReads(err error) {
	p.lock.Lock()
	p.readErr = err
	p.lock.Unlock()
}

type fakeSink struct {
	lock     sync.Mutex
	openErr  error
	opened   int
	begun    int
	closed   int
	appended []sensor.Sample
}

func (s *fakeSink) Open() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened++
	return nil
}

func (s *fakeSink) Begin(time.Time) error {
	s.lock.Lock()
	s.begun++
	s.lock.Unlock()
	return nil
}

func (s *fakeSink) Append(sample sensor.Sample) error {
	s.lock.Lock()
	s.appended = append(s.appended, sample)
	s.lock.Unlock()
	return nil
}

func (s *fakeSink) Close() error {
	s.lock.Lock()
	s.closed++
	s.lock.Unlock()
	return nil
}

func (s *fakeSink) appends() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.appended)
}

type errorRecorder struct {
	lock sync.Mutex
	errs []error
}

func (r *errorRecorder) ReportError(err error) {
	r.lock.Lock()
	r.errs = append(r.errs, err)
	r.lock.Unlock()
}

func (r *errorRecorder) steps() []Step {
	r.lock.Lock()
	defer r.lock.Unlock()
	var steps []Step
	for _, err := range r.errs {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			steps = append(steps, stepErr.Step)
		}
	}
	return steps
}

func newTestAcquisition() (*Acquisition, *fakePlatform, *fakeSink, *errorRecorder) {
	platform, sink, rec := newFakePlatform(), &fakeSink{}, &errorRecorder{}
	a := New(platform)
	a.Sink, a.Reporter = sink, rec
	a.Interval = time.Millisecond
	return a, platform, sink, rec
}

func TestAcquisitionStreaming(t *testing.T) {
	a, platform, sink, rec := newTestAcquisition()
	var shown atomic.Uint64
	a.Display = ShowSampleFunc(func(_ context.Context, snap Snapshot) error {
		shown.Store(snap.Seq)
		return nil
	})
	require.NoError(t, a.Start(context.Background()))
	require.True(t, a.Running())
	mode, active := a.Mode()
	require.True(t, active)
	require.Equal(t, ModeStreaming, mode)

	require.Eventually(t, func() bool { return sink.appends() >= 3 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return shown.Load() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, a.Stop())
	require.False(t, a.Running())

	cmds := platform.commands()
	require.Equal(t, []byte{byte(wire.CmdStartStream), byte(wire.CmdStopStream)}, cmds)
	require.Equal(t, 1, sink.opened)
	require.Equal(t, 1, sink.begun)
	require.Equal(t, 1, sink.closed)
	require.Equal(t, int16(7), sink.appended[0].Delta)
	require.Empty(t, rec.steps())

	latest := a.Publisher.Latest()
	require.Equal(t, int16(7), latest.Delta)
	require.InDelta(t, 10.0, latest.Altitude, 1e-9)
	require.True(t, latest.Errors.Empty())
	require.Equal(t, a.Publisher.Count(), a.Stats().Published)
	require.Equal(t, a.Stats().Frames, a.Stats().Published)
}

func TestAcquisitionPolling(t *testing.T) {
	a, platform, sink, _ := newTestAcquisition()
	a.SetLogging(false)
	require.NoError(t, a.Start(context.Background()))
	mode, _ := a.Mode()
	require.Equal(t, ModePolling, mode)
	require.Eventually(t, func() bool { return a.Publisher.Count() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, a.Stop())

	for _, b := range platform.commands() {
		require.Equal(t, byte(wire.CmdSample), b)
	}
	require.Zero(t, sink.opened)
	require.Zero(t, sink.appends())
	require.True(t, a.Publisher.Latest().Errors.Empty())
}

func TestAcquisitionModeCapturedAtStart(t *testing.T) {
	a, platform, sink, _ := newTestAcquisition()
	require.NoError(t, a.Start(context.Background()))
	a.SetLogging(false)
	require.False(t, a.Logging())
	require.Eventually(t, func() bool { return sink.appends() >= 1 }, time.Second, time.Millisecond)
	require.NoError(t, a.Stop())
	require.Equal(t, byte(wire.CmdStartStream), platform.commands()[0])

	require.NoError(t, a.Start(context.Background()))
	mode, _ := a.Mode()
	require.Equal(t, ModePolling, mode)
	require.NoError(t, a.Stop())
}

func TestAcquisitionStartStop(t *testing.T) {
	a, _, _, _ := newTestAcquisition()
	require.Equal(t, ErrNotRunning, a.Stop())
	require.NoError(t, a.Start(context.Background()))
	require.Equal(t, ErrRunning, a.Start(context.Background()))
	require.NoError(t, a.Stop())
	require.Equal(t, ErrNotRunning, a.Stop())
	_, active := a.Mode()
	require.False(t, active)
}

func TestAcquisitionDecodeErrorEndsStreaming(t *testing.T) {
	a, platform, sink, rec := newTestAcquisition()
	errBroken := errors.New("broken")
	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return sink.appends() >= 1 }, time.Second, time.Millisecond)
	platform.failReads(errBroken)
	require.Eventually(t, func() bool { return !a.Running() }, time.Second, time.Millisecond)

	require.Equal(t, []Step{StepDecode}, rec.steps())
	rec.lock.Lock()
	require.True(t, errors.Is(rec.errs[0], errBroken))
	rec.lock.Unlock()
	cmds := platform.commands()
	require.Equal(t, byte(wire.CmdStopStream), cmds[len(cmds)-1])
	require.Equal(t, ErrRunning, a.Start(context.Background()))
	require.NoError(t, a.Stop())
	require.Equal(t, 1, sink.closed)
}

func TestAcquisitionDecodeErrorPollingContinues(t *testing.T) {
	a, platform, _, rec := newTestAcquisition()
	a.SetLogging(false)
	platform.failReads(errors.New("broken"))
	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return len(rec.steps()) >= 3 }, time.Second, time.Millisecond)
	require.True(t, a.Running())
	require.NoError(t, a.Stop())
	for _, step := range rec.steps() {
		require.Equal(t, StepDecode, step)
	}
}

func TestAcquisitionOpenLogFailure(t *testing.T) {
	a, platform, sink, rec := newTestAcquisition()
	sink.openErr = errors.New("read-only")
	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return !a.Running() }, time.Second, time.Millisecond)
	require.NoError(t, a.Stop())
	require.Empty(t, platform.commands())
	require.Equal(t, []Step{StepOpenLog}, rec.steps())
	require.Zero(t, sink.closed)
}

func TestAcquisitionJoinTimeout(t *testing.T) {
	a, _, _, _ := newTestAcquisition()
	a.JoinTimeout = 10 * time.Millisecond
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	a.Display = ShowSampleFunc(func(context.Context, Snapshot) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	})
	require.NoError(t, a.Start(context.Background()))
	<-entered
	require.Equal(t, fx.ErrJoinTimeout, a.Stop())
	require.False(t, a.Running())
	require.Equal(t, ErrRunning, a.Start(context.Background()))
	close(release)
	a.JoinTimeout = time.Second
	require.NoError(t, a.Stop())
}

func TestDisplayErrorsReported(t *testing.T) {
	a, _, _, rec := newTestAcquisition()
	errGone := errors.New("gone")
	a.Display = DisplayMux{
		ShowSampleFunc(func(context.Context, Snapshot) error { return nil }),
		ShowSampleFunc(func(context.Context, Snapshot) error { return errGone }),
	}
	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return len(rec.steps()) > 0 }, time.Second, time.Millisecond)
	require.NoError(t, a.Stop())
	require.Equal(t, StepDisplay, rec.steps()[0])

	rec.lock.Lock()
	defer rec.lock.Unlock()
	require.True(t, errors.Is(rec.errs[0], errGone))
	var agg *fx.AggregatedError
	require.True(t, errors.As(rec.errs[0], &agg))
	require.Len(t, agg.Errors, 1)
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: StepSend, Err: wire.ErrClosed}
	require.Equal(t, "send: "+wire.ErrClosed.Error(), err.Error())
	require.True(t, errors.Is(err, wire.ErrClosed))
}
