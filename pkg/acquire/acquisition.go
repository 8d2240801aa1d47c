package acquire

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/inertial.go/pkg/framework"
	"github.com/robotalks/inertial.go/pkg/sensor"
	"github.com/robotalks/inertial.go/pkg/wire"
)

// Defaults.
const (
	DefaultInterval    = 100 * time.Millisecond
	DefaultJoinTimeout = time.Second
)

// Sink records completed samples.
type Sink interface {
	Open() error
	Begin(time.Time) error
	Append(sensor.Sample) error
	Close() error
}

// Mode is the mode of a run.
type Mode int

// Modes.
const (
	ModePolling Mode = iota
	ModeStreaming
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeStreaming {
		return "streaming"
	}
	return "polling"
}

// Stats reports the counters of an Acquisition.
type Stats struct {
	wire.Stats
	Published uint64
}

// Acquisition coordinates the runs against one Channel.
type Acquisition struct {
	Channel   wire.Channel
	Decoder   *wire.Decoder
	Publisher *Publisher
	Refill    wire.Refill
	Sink      Sink
	Display   Display
	Reporter  ErrorReporter

	Interval    time.Duration
	JoinTimeout time.Duration

	logging    atomic.Bool
	appending  atomic.Bool
	collecting atomic.Bool

	lock    sync.Mutex
	session *session
}

type session struct {
	cancel context.CancelFunc
	runner *fx.Runner
	mode   Mode
}

// New creates an Acquisition over ch with logging enabled.
func New(ch wire.Channel) *Acquisition {
	a := &Acquisition{
		Channel:     ch,
		Publisher:   &Publisher{},
		Refill:      wire.DefaultRefill(),
		Reporter:    LogReporter,
		Interval:    DefaultInterval,
		JoinTimeout: DefaultJoinTimeout,
	}
	a.Decoder = wire.NewDecoder(wire.HandleFrameFunc(a.HandleFrame))
	a.logging.Store(true)
	return a
}

// SetLogging sets whether the next run streams and logs samples.
// It doesn't affect an active run.
func (a *Acquisition) SetLogging(enabled bool) {
	a.logging.Store(enabled)
}

// Logging returns the logging flag.
func (a *Acquisition) Logging() bool {
	return a.logging.Load()
}

// Running indicates a run is collecting samples.
func (a *Acquisition) Running() bool {
	return a.collecting.Load()
}

// Mode returns the mode of the active run.
func (a *Acquisition) Mode() (Mode, bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.session == nil {
		return ModePolling, false
	}
	return a.session.mode, true
}

// Stats gets the counters.
func (a *Acquisition) Stats() Stats {
	return Stats{Stats: a.Decoder.Stats(), Published: a.Publisher.Count()}
}

// Start starts a run. The mode is chosen from the logging flag.
// A run which stopped by itself still needs a Stop before the next Start.
func (a *Acquisition) Start(ctx context.Context) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.session != nil {
		return ErrRunning
	}
	s := &session{mode: ModePolling}
	if a.logging.Load() {
		s.mode = ModeStreaming
	}
	a.appending.Store(s.mode == ModeStreaming)
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	acquire := a.poll
	if s.mode == ModeStreaming {
		acquire = a.stream
	}
	a.collecting.Store(true)
	s.runner = fx.NewRunnerWith(runCtx)
	s.runner.Go(
		fx.NamedRun("acquire-"+s.mode.String(), fx.RunFunc(func(ctx context.Context) error {
			// the run ends with the acquisition loop.
			defer cancel()
			defer a.collecting.Store(false)
			return acquire(ctx)
		})),
		fx.NamedRun("display", fx.RunFunc(a.display)),
	)
	a.session = s
	glog.Infof("acquisition started in %s mode", s.mode)
	return nil
}

// Stop stops the active run and waits for it up to JoinTimeout.
// On ErrJoinTimeout the run is still considered active and Stop can be
// retried.
func (a *Acquisition) Stop() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	s := a.session
	if s == nil {
		return ErrNotRunning
	}
	s.cancel()
	a.collecting.Store(false)
	err := s.runner.WaitTimeout(a.joinTimeout())
	if err == fx.ErrJoinTimeout {
		return err
	}
	a.session = nil
	glog.Info("acquisition stopped")
	return err
}

// HandleFrame implements wire.FrameHandler.
func (a *Acquisition) HandleFrame(sample sensor.Sample) {
	a.Publisher.Publish(sample)
	if a.appending.Load() && a.Sink != nil {
		if err := a.Sink.Append(sample); err != nil {
			a.report(StepWriteLog, err)
		}
	}
}

func (a *Acquisition) stream(ctx context.Context) error {
	if err := a.clear(); err != nil {
		a.report(StepClear, err)
		return nil
	}
	if a.Sink != nil {
		if err := a.Sink.Open(); err != nil {
			a.report(StepOpenLog, err)
			return nil
		}
	}
	if err := wire.CmdStartStream.Send(a.Channel); err != nil {
		a.report(StepSend, err)
		a.closeSink()
		return nil
	}
	if a.Sink != nil {
		if err := a.Sink.Begin(time.Now()); err != nil {
			a.report(StepWriteLog, err)
		}
	}
	for ctx.Err() == nil {
		if err := a.decode(); err != nil {
			a.report(StepDecode, err)
			break
		}
		if fx.Sleep(ctx, a.interval()) != nil {
			break
		}
	}
	if err := wire.CmdStopStream.Send(a.Channel); err != nil {
		a.report(StepSend, err)
	}
	a.closeSink()
	return nil
}

func (a *Acquisition) poll(ctx context.Context) error {
	if err := a.clear(); err != nil {
		a.report(StepClear, err)
	}
	for ctx.Err() == nil {
		if err := wire.CmdSample.Send(a.Channel); err != nil {
			a.report(StepSend, err)
		}
		if fx.Sleep(ctx, a.interval()) != nil {
			break
		}
		if err := a.decode(); err != nil {
			a.report(StepDecode, err)
		}
	}
	return nil
}

func (a *Acquisition) display(ctx context.Context) error {
	for fx.Sleep(ctx, a.interval()) == nil {
		if a.Display == nil {
			continue
		}
		if err := a.Display.ShowSample(ctx, a.Publisher.Latest()); err != nil {
			a.report(StepDisplay, err)
		}
	}
	return nil
}

func (a *Acquisition) clear() error {
	err := a.Channel.Clear()
	a.Decoder.Reset()
	return err
}

func (a *Acquisition) decode() error {
	if err := a.Refill.Prime(a.Channel); err != nil {
		return err
	}
	return a.Decoder.Decode(a.Channel)
}

func (a *Acquisition) closeSink() {
	if a.Sink == nil {
		return
	}
	if err := a.Sink.Close(); err != nil {
		a.report(StepCloseLog, err)
	}
}

func (a *Acquisition) report(step Step, err error) {
	err = &StepError{Step: step, Err: err}
	if r := a.Reporter; r != nil {
		r.ReportError(err)
	} else {
		LogReporter.ReportError(err)
	}
}

func (a *Acquisition) interval() time.Duration {
	if a.Interval > 0 {
		return a.Interval
	}
	return DefaultInterval
}

func (a *Acquisition) joinTimeout() time.Duration {
	if a.JoinTimeout > 0 {
		return a.JoinTimeout
	}
	return DefaultJoinTimeout
}
