// Package logsink records samples into a CSV log.
package logsink

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

// DefaultFileName is the default name of the log file.
const DefaultFileName = "inertial_sensors.csv"

// TimestampLayout is the layout of the time in the header line.
const TimestampLayout = "01/02/2006-15:04:05"

// ErrNotOpen indicates the log is not open.
var ErrNotOpen = errors.New("log not open")

// Opener opens the destination of the log.
type Opener func() (io.WriteCloser, error)

// FileOpener creates (or truncates) the file at path, including missing
// directories.
func FileOpener(path string) Opener {
	if path == "" {
		path = DefaultFileName
	}
	return func() (io.WriteCloser, error) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	}
}

// CSV writes one line per sample:
//
//	delta,ax,ay,az,rx,ry,rz,altitude,temperature,light
type CSV struct {
	Opener Opener
	// Gate, if set, must return true for Append to write.
	Gate func() bool

	lock   sync.Mutex
	dst    io.WriteCloser
	w      *bufio.Writer
	record []byte
	lines  int
}

// NewCSV creates a CSV log.
func NewCSV(opener Opener) *CSV {
	return &CSV{Opener: opener}
}

// Open implements acquire.Sink.
func (c *CSV) Open() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dst != nil {
		c.closeLocked()
	}
	dst, err := c.Opener()
	if err != nil {
		return err
	}
	c.dst, c.w, c.lines = dst, bufio.NewWriter(dst), 0
	return nil
}

// Begin implements acquire.Sink.
func (c *CSV) Begin(start time.Time) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.w == nil {
		return ErrNotOpen
	}
	_, err := c.w.WriteString("Collection Started: " + start.Format(TimestampLayout) + "\n")
	return err
}

// Append implements acquire.Sink.
func (c *CSV) Append(s sensor.Sample) error {
	if c.Gate != nil && !c.Gate() {
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.w == nil {
		return ErrNotOpen
	}
	c.record = AppendRecord(c.record[:0], s)
	if _, err := c.w.Write(c.record); err != nil {
		return err
	}
	c.lines++
	return nil
}

// Lines returns the number of samples written since Open.
func (c *CSV) Lines() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lines
}

// Close implements acquire.Sink.
func (c *CSV) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dst == nil {
		return ErrNotOpen
	}
	return c.closeLocked()
}

func (c *CSV) closeLocked() error {
	err := c.w.Flush()
	if closeErr := c.dst.Close(); err == nil {
		err = closeErr
	}
	c.dst, c.w = nil, nil
	return err
}

// AppendRecord appends the CSV line of s, including the newline.
func AppendRecord(dst []byte, s sensor.Sample) []byte {
	dst = strconv.AppendInt(dst, int64(s.Delta), 10)
	for _, v := range s.Acceleration {
		dst = appendField(dst, v)
	}
	for _, v := range s.RotationalRate {
		dst = appendField(dst, v)
	}
	dst = appendField(dst, s.Altitude)
	dst = appendField(dst, s.Temperature)
	dst = appendField(dst, s.Light)
	return append(dst, '\n')
}

func appendField(dst []byte, v float64) []byte {
	return strconv.AppendFloat(append(dst, ','), v, 'f', -1, 64)
}
