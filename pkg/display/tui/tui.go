// Package tui shows samples on a terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/display/text"
)

const maxErrors = 5

// SampleMsg updates the dashboard with a snapshot.
type SampleMsg acquire.Snapshot

// StatusMsg updates the device status.
type StatusMsg string

type errorMsg struct{ err error }

// Controller receives commands issued by keys.
type Controller func(args []string) error

// Model is the dashboard.
type Model struct {
	Title   string
	Control Controller

	snap   acquire.Snapshot
	errs   []string
	status string
	device string
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SampleMsg:
		m.snap = acquire.Snapshot(msg)
	case StatusMsg:
		m.device = string(msg)
	case errorMsg:
		m.errs = append(m.errs, msg.err.Error())
		if len(m.errs) > maxErrors {
			m.errs = m.errs[len(m.errs)-maxErrors:]
		}
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c", "s", "l", "p":
			return m, m.command(keyCommands[key])
		}
	case resultMsg:
		m.status = string(msg)
	}
	return m, nil
}

var keyCommands = map[string][]string{
	"c": {"collect"},
	"s": {"stop"},
	"l": {"log", "on"},
	"p": {"log", "off"},
}

type resultMsg string

// command runs outside of the event loop as stopping a run waits for
// the display.
func (m Model) command(args []string) tea.Cmd {
	control := m.Control
	return func() tea.Msg {
		if control == nil {
			return resultMsg("no control")
		}
		if err := control(args); err != nil {
			return resultMsg(fmt.Sprintf("%s: %v", strings.Join(args, " "), err))
		}
		return resultMsg(strings.Join(args, " "))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	if m.Title != "" {
		sb.WriteString(m.Title + "\n\n")
	}
	if m.device != "" {
		sb.WriteString("Device: " + m.device + "\n")
	}
	fmt.Fprintf(&sb, "Sample #%d  delta %d\n", m.snap.Seq, m.snap.Delta)
	sb.WriteString(text.Format(m.snap.Sample))
	if len(m.errs) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range m.errs {
			sb.WriteString("  " + e + "\n")
		}
	}
	if m.status != "" {
		sb.WriteString("\n> " + m.status + "\n")
	}
	sb.WriteString("\n[c] collect  [s] stop  [l] log on  [p] log off  [q] quit\n")
	return sb.String()
}

// Display feeds a running dashboard.
type Display struct {
	Program *tea.Program
}

// New creates the dashboard program.
func New(model Model, opts ...tea.ProgramOption) *Display {
	return &Display{Program: tea.NewProgram(model, opts...)}
}

// Run runs the dashboard until quit.
func (d *Display) Run() error {
	_, err := d.Program.Run()
	return err
}

// ShowSample implements acquire.Display.
func (d *Display) ShowSample(_ context.Context, snap acquire.Snapshot) error {
	d.Program.Send(SampleMsg(snap))
	return nil
}

// ReportError implements acquire.ErrorReporter.
func (d *Display) ReportError(err error) {
	d.Program.Send(errorMsg{err: err})
}
