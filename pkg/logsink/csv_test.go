package logsink

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func bufferOpener(buf *bufferCloser) Opener {
	return func() (io.WriteCloser, error) { return buf, nil }
}

var testSample = sensor.Sample{
	Delta:          -3,
	Acceleration:   [3]float64{0.5, -9.8067, 0},
	RotationalRate: [3]float64{1.25, 0, -250},
	Altitude:       1655.75,
	Temperature:    -5.25,
	Light:          51.5625,
}

func TestAppendRecord(t *testing.T) {
	require.Equal(t,
		"-3,0.5,-9.8067,0,1.25,0,-250,1655.75,-5.25,51.5625\n",
		string(AppendRecord(nil, testSample)))
}

func TestCSV(t *testing.T) {
	var buf bufferCloser
	c := NewCSV(bufferOpener(&buf))
	require.NoError(t, c.Open())
	start := time.Date(2026, time.March, 4, 5, 6, 7, 0, time.Local)
	require.NoError(t, c.Begin(start))
	require.NoError(t, c.Append(testSample))
	require.NoError(t, c.Append(sensor.Sample{Delta: 1}))
	require.Equal(t, 2, c.Lines())
	require.NoError(t, c.Close())
	require.True(t, buf.closed)
	require.Equal(t,
		"Collection Started: 03/04/2026-05:06:07\n"+
			"-3,0.5,-9.8067,0,1.25,0,-250,1655.75,-5.25,51.5625\n"+
			"1,0,0,0,0,0,0,0,0,0\n",
		buf.String())
}

func TestCSVGate(t *testing.T) {
	var buf bufferCloser
	enabled := false
	c := NewCSV(bufferOpener(&buf))
	c.Gate = func() bool { return enabled }
	require.NoError(t, c.Open())
	require.NoError(t, c.Append(testSample))
	enabled = true
	require.NoError(t, c.Append(sensor.Sample{Delta: 2}))
	require.NoError(t, c.Close())
	require.Equal(t, "2,0,0,0,0,0,0,0,0,0\n", buf.String())
}

func TestCSVNotOpen(t *testing.T) {
	c := NewCSV(nil)
	require.Equal(t, ErrNotOpen, c.Append(testSample))
	require.Equal(t, ErrNotOpen, c.Begin(time.Now()))
	require.Equal(t, ErrNotOpen, c.Close())
}

func TestCSVOpenError(t *testing.T) {
	errOpen := errors.New("denied")
	c := NewCSV(func() (io.WriteCloser, error) { return nil, errOpen })
	require.Equal(t, errOpen, c.Open())
	require.Equal(t, ErrNotOpen, c.Append(testSample))
}

func TestFileOpener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", DefaultFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))

	c := NewCSV(FileOpener(path))
	require.NoError(t, c.Open())
	require.NoError(t, c.Append(sensor.Sample{Delta: 5}))
	require.NoError(t, c.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "5,0,0,0,0,0,0,0,0,0\n", string(content))
}

func TestFileOpenerCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "log.csv")
	w, err := FileOpener(path)()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	require.NoError(t, err)
}
