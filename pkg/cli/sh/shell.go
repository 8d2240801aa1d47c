// Package sh provides the interactive shell of imucli.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/inertial.go/pkg/display/text"
	"github.com/robotalks/inertial.go/pkg/link"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell      *ishell.Shell
	Controller *Controller
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&CollectCmd,
		&StopCmd,
		&LogCmd,
		&StatusCmd,
		&ShowCmd,
		&StatsCmd,
		&PortsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(ctl *Controller) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:      ishell.New(),
		Controller: ctl,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

func (s *Shell) updatePrompt() {
	st := s.Controller.Status()
	if !st.Connected {
		s.Shell.SetPrompt(unconnectedPrompt)
		return
	}
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", st.URL))
}

func (s *Shell) print(c *ishell.Context, v interface{}, plain string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(plain)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Controller.Config.LinkURL)
		}
		if err := s.Controller.Connect(context.Background(), ""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Controller.Config.LinkURL, err)
		}
		s.updatePrompt()
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func run(fn func(s *Shell, c *ishell.Context) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if err := fn(s, c); err != nil {
			c.Err(err)
		}
		s.updatePrompt()
	}
}

func command(name string) func(c *ishell.Context) {
	return run(func(s *Shell, c *ishell.Context) error {
		return s.Controller.Command(append([]string{name}, c.Args...))
	})
}

var (
	// ConnectCmd connects the sensor platform.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func:    command("connect"),
	}

	// DisconnectCmd disconnects the sensor platform.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Func:    command("disconnect"),
	}

	// CollectCmd starts collecting.
	CollectCmd = ishell.Cmd{
		Name:    "collect",
		Aliases: []string{"start"},
		Func:    command("collect"),
	}

	// StopCmd stops collecting.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Func: command("stop"),
	}

	// LogCmd turns logging on or off.
	LogCmd = ishell.Cmd{
		Name: "log",
		Help: "on|off",
		Func: command("log"),
	}

	// StatusCmd prints the status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Func: run(func(s *Shell, c *ishell.Context) error {
			st := s.Controller.Status()
			s.print(c, st, st.String())
			return nil
		}),
	}

	// ShowCmd prints the latest sample.
	ShowCmd = ishell.Cmd{
		Name: "show",
		Func: run(func(s *Shell, c *ishell.Context) error {
			snap, err := s.Controller.Latest()
			if err != nil {
				return err
			}
			s.print(c, snap, text.Format(snap.Sample))
			return nil
		}),
	}

	// StatsCmd prints the decoder counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Func: run(func(s *Shell, c *ishell.Context) error {
			st := s.Controller.Status()
			if !st.Connected {
				return fmt.Errorf("not connected")
			}
			s.print(c, st.Stats, FormatStats(st))
			return nil
		}),
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Func: run(func(s *Shell, c *ishell.Context) error {
			ports, err := link.SerialPorts()
			if err != nil {
				return err
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				s.print(c, ports, "")
				return nil
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
			}
			for _, port := range ports {
				c.Println(port)
			}
			return nil
		}),
	}
)

// FormatStats formats the counters for display.
func FormatStats(st Status) string {
	return fmt.Sprintf("frames %d, malformed %d, unknown tags %d, skipped %d, published %d",
		st.Stats.Frames, st.Stats.Malformed, st.Stats.UnknownTags, st.Stats.Skipped, st.Stats.Published)
}
