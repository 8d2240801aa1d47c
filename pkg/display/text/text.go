// Package text shows samples as text.
package text

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/sensor"
)

// Format formats a sample in a multi-line report.
func Format(s sensor.Sample) string {
	var sb strings.Builder
	for i, axis := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(&sb, "%s Acceleration: %5.2f  m/s^2\n", axis, s.Acceleration[i])
	}
	for i, axis := range []string{"U", "V", "W"} {
		fmt.Fprintf(&sb, "%s Angular Velocity:%6.1f  deg/s\n", axis, s.RotationalRate[i])
	}
	fmt.Fprintf(&sb, "Altitude: %4.0f m\n", s.Altitude)
	fmt.Fprintf(&sb, "Temperature: %4.1f C\n", s.Temperature)
	fmt.Fprintf(&sb, "Light: %2.0f%%\n", s.Light)
	if !s.Errors.Empty() {
		fmt.Fprintf(&sb, "Errors: %s\n", s.Errors)
	}
	return sb.String()
}

// Line formats a sample in a single line.
func Line(snap acquire.Snapshot) string {
	s := snap.Sample
	return fmt.Sprintf("#%d d=%d a=(%.2f,%.2f,%.2f) r=(%.1f,%.1f,%.1f) alt=%.1f t=%.1f l=%.0f%% err=%s",
		snap.Seq, s.Delta,
		s.Acceleration[0], s.Acceleration[1], s.Acceleration[2],
		s.RotationalRate[0], s.RotationalRate[1], s.RotationalRate[2],
		s.Altitude, s.Temperature, s.Light, s.Errors)
}

// Display writes samples to a Writer.
type Display struct {
	Writer io.Writer
	// Compact selects the single line format.
	Compact bool
	// Changed only shows samples not shown before.
	Changed bool

	lock sync.Mutex
	seq  uint64
}

// New creates a Display.
func New(w io.Writer) *Display {
	return &Display{Writer: w}
}

// ShowSample implements acquire.Display.
func (d *Display) ShowSample(_ context.Context, snap acquire.Snapshot) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Changed && snap.Seq == d.seq {
		return nil
	}
	d.seq = snap.Seq
	var err error
	if d.Compact {
		_, err = fmt.Fprintln(d.Writer, Line(snap))
	} else {
		_, err = io.WriteString(d.Writer, Format(snap.Sample)+"\n")
	}
	return err
}
