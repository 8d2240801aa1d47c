// Package session connects to the sensor platform and wires the stream,
// the acquisition and the CSV log together.
package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/config"
	fx "github.com/robotalks/inertial.go/pkg/framework"
	"github.com/robotalks/inertial.go/pkg/link"
	"github.com/robotalks/inertial.go/pkg/logsink"
	"github.com/robotalks/inertial.go/pkg/wire"
)

// ErrNotConnected indicates there's no session.
var ErrNotConnected = errors.New("not connected")

// closeTimeout bounds the wait for the receiving goroutine.
const closeTimeout = time.Second

// Session is a connection to the sensor platform.
type Session struct {
	URL         string
	Stream      *wire.Stream
	Acquisition *acquire.Acquisition
	Log         *logsink.CSV

	cancel context.CancelFunc
	runner *fx.Runner
}

// Dial opens the link in conf and creates a Session.
func Dial(ctx context.Context, conf *config.Config, reporter acquire.ErrorReporter) (*Session, error) {
	transport, err := link.Open(ctx, conf.LinkURL)
	if err != nil {
		return nil, err
	}
	s := New(conf, transport, reporter)
	s.URL = conf.LinkURL
	return s, nil
}

// New creates a Session over an opened transport.
func New(conf *config.Config, transport io.ReadWriter, reporter acquire.ErrorReporter) *Session {
	if reporter == nil {
		reporter = acquire.LogReporter
	}
	s := &Session{Stream: wire.NewStream(transport)}
	s.Acquisition = acquire.New(s.Stream)
	s.Acquisition.Reporter = reporter
	conf.Apply(s.Acquisition)
	s.Log = logsink.NewCSV(logsink.FileOpener(conf.LogPath))
	s.Log.Gate = s.Acquisition.Running
	s.Acquisition.Sink = s.Log

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.runner = fx.NewRunnerWith(ctx).Go(fx.NamedRun("receive", fx.RunFunc(func(ctx context.Context) error {
		err := s.Stream.Run(ctx)
		if err != nil && err != context.Canceled {
			reporter.ReportError(&acquire.StepError{Step: acquire.StepReceive, Err: err})
		}
		return nil
	})))
	return s
}

// Close stops the acquisition, tells the platform to stop streaming and
// closes the transport. The transport is closed by the receiving goroutine.
func (s *Session) Close() error {
	var errs fx.AggregatedError
	if err := s.Acquisition.Stop(); err != nil && err != acquire.ErrNotRunning {
		errs.Add(err)
	}
	// always sent on close, even after a streaming run already stopped.
	if err := wire.CmdStopStream.Send(s.Stream); err != nil {
		glog.V(2).Infof("send stop on close: %v", err)
	}
	s.cancel()
	if err := s.runner.WaitTimeout(closeTimeout); err != nil {
		errs.Add(err)
	}
	return errs.Aggregate()
}
