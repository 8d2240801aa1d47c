// Package sim simulates the sensor platform on the other end of the link.
package sim

import (
	"context"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/sensor"
	"github.com/robotalks/inertial.go/pkg/wire"
)

// DefaultPeriod is the default streaming period.
const DefaultPeriod = 20 * time.Millisecond

// Platform answers the commands the way the firmware does: it streams
// frames between start and stop, and sends a single frame on request.
type Platform struct {
	Motion Motion
	Period time.Duration
	// DropRate is the probability of losing one byte of a frame.
	DropRate float64

	lock   sync.Mutex
	rand   *rand.Rand
	start  time.Time
	last   time.Time
	frames uint64
}

// NewPlatform creates a Platform with DefaultMotion.
func NewPlatform() *Platform {
	return &Platform{
		Motion: DefaultMotion(),
		Period: DefaultPeriod,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes lost bytes reproducible.
func (p *Platform) Seed(seed int64) {
	p.lock.Lock()
	p.rand = rand.New(rand.NewSource(seed))
	p.lock.Unlock()
}

// Frames returns the number of frames sent.
func (p *Platform) Frames() uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.frames
}

// Raw returns the wire values at now. Delta is the time since the
// previous frame in milliseconds.
func (p *Platform) Raw(now time.Time) sensor.Raw {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.rawLocked(now)
}

func (p *Platform) rawLocked(now time.Time) sensor.Raw {
	if p.start.IsZero() {
		p.start, p.last = now, now
	}
	raw := sensor.RawFrom(p.Motion.Sample(now.Sub(p.start).Seconds()))
	raw.Delta = int16(math.Min(float64(now.Sub(p.last)/time.Millisecond), math.MaxInt16))
	p.last = now
	return raw
}

// Frame encodes the frame at now, possibly losing a byte.
func (p *Platform) Frame(now time.Time) []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	frame := wire.AppendFrame(nil, p.rawLocked(now))
	p.frames++
	if p.DropRate > 0 && p.rand != nil && p.rand.Float64() < p.DropRate {
		i := p.rand.Intn(len(frame))
		frame = append(frame[:i], frame[i+1:]...)
	}
	return frame
}

// Serve talks to one host over rw until ctx is done or rw fails.
// rw is closed on return if it's an io.Closer.
func (p *Platform) Serve(ctx context.Context, rw io.ReadWriter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if closer, ok := rw.(io.Closer); ok {
		defer closer.Close()
	}

	cmdCh, errCh := make(chan byte, 16), make(chan error, 1)
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := rw.Read(buf)
			for _, b := range buf[:n] {
				select {
				case cmdCh <- b:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	period := p.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	var tickCh <-chan time.Time
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case now := <-tickCh:
			if _, err := rw.Write(p.Frame(now)); err != nil {
				return err
			}
		case b := <-cmdCh:
			switch cmd := wire.Command(b); cmd {
			case wire.CmdStartStream:
				if ticker == nil {
					ticker = time.NewTicker(period)
					tickCh = ticker.C
				}
			case wire.CmdStopStream:
				if ticker != nil {
					ticker.Stop()
					ticker, tickCh = nil, nil
				}
			case wire.CmdSample:
				if _, err := rw.Write(p.Frame(time.Now())); err != nil {
					return err
				}
			default:
				glog.V(3).Infof("ignored %s", cmd)
				continue
			}
			glog.V(2).Infof("platform: %s", wire.Command(b))
		}
	}
}
