package sh

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/config"
	"github.com/robotalks/inertial.go/pkg/session"
)

// DialFunc creates a session from the configuration.
type DialFunc func(context.Context, *config.Config, acquire.ErrorReporter) (*session.Session, error)

// Controller owns the session. Shell commands and remote commands
// are serialized by it.
type Controller struct {
	Config   *config.Config
	Reporter acquire.ErrorReporter
	Display  acquire.Display
	Dial     DialFunc

	lock    sync.Mutex
	session *session.Session
}

// Status is a summary of the controller state.
type Status struct {
	Connected bool
	URL       string
	Logging   bool
	Running   bool
	Mode      acquire.Mode
	Stats     acquire.Stats
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if !s.Connected {
		return fmt.Sprintf("disconnected, logging %s", onOff(s.Logging))
	}
	state := "idle"
	if s.Running {
		state = "collecting (" + s.Mode.String() + ")"
	}
	return fmt.Sprintf("%s: %s, logging %s", s.URL, state, onOff(s.Logging))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// NewController creates a Controller.
func NewController(conf *config.Config) *Controller {
	return &Controller{Config: conf, Dial: session.Dial}
}

// Connect opens a session. An empty url uses the configured link.
// An existing session is closed first.
func (c *Controller) Connect(ctx context.Context, url string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if url != "" {
		c.Config.LinkURL = url
	}
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			glog.Warningf("close %s: %v", c.session.URL, err)
		}
		c.session = nil
	}
	s, err := c.Dial(ctx, c.Config, c.Reporter)
	if err != nil {
		return err
	}
	if s.URL == "" {
		s.URL = c.Config.LinkURL
	}
	s.Acquisition.Display = c.Display
	c.session = s
	glog.Infof("connected %s", s.URL)
	return nil
}

// Disconnect closes the session.
func (c *Controller) Disconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.session == nil {
		return session.ErrNotConnected
	}
	err := c.session.Close()
	glog.Infof("disconnected %s", c.session.URL)
	c.session = nil
	return err
}

// Collect starts collecting samples.
func (c *Controller) Collect(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.session == nil {
		return session.ErrNotConnected
	}
	a := c.session.Acquisition
	if _, active := a.Mode(); active && !a.Running() {
		// the previous run ended by itself.
		if err := a.Stop(); err != nil {
			return err
		}
	}
	return a.Start(ctx)
}

// Stop stops collecting samples.
func (c *Controller) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.session == nil {
		return session.ErrNotConnected
	}
	return c.session.Acquisition.Stop()
}

// SetLogging sets the logging flag for the next run.
func (c *Controller) SetLogging(enabled bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Config.Logging = enabled
	if c.session != nil {
		c.session.Acquisition.SetLogging(enabled)
	}
}

// Status gets the current status.
func (c *Controller) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	st := Status{Logging: c.Config.Logging}
	if c.session == nil {
		return st
	}
	a := c.session.Acquisition
	st.Connected, st.URL = true, c.session.URL
	st.Running = a.Running()
	st.Mode, _ = a.Mode()
	st.Stats = a.Stats()
	return st
}

// Latest returns the latest snapshot.
func (c *Controller) Latest() (acquire.Snapshot, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.session == nil {
		return acquire.Snapshot{}, session.ErrNotConnected
	}
	return c.session.Acquisition.Publisher.Latest(), nil
}

// Close closes the session if connected.
func (c *Controller) Close() error {
	if err := c.Disconnect(); err != nil && err != session.ErrNotConnected {
		return err
	}
	return nil
}

// Command executes a command in words, it implements mqtt.Commander.
func (c *Controller) Command(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("command expected")
	}
	switch cmd, params := strings.ToLower(args[0]), args[1:]; cmd {
	case "connect":
		url := ""
		if len(params) > 0 {
			url = params[0]
		}
		return c.Connect(context.Background(), url)
	case "disconnect":
		return c.Disconnect()
	case "collect", "start":
		return c.Collect(context.Background())
	case "stop":
		return c.Stop()
	case "log":
		if len(params) != 1 {
			return fmt.Errorf("usage: log on|off")
		}
		enabled, err := parseOnOff(params[0])
		if err != nil {
			return err
		}
		c.SetLogging(enabled)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q, expect on or off", s)
}
