package acquire

import (
	"sync/atomic"
	"time"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

// Snapshot is a published sample. It's never modified once published.
type Snapshot struct {
	sensor.Sample
	// Seq is the number of samples published before and including this one.
	// It's zero if nothing has been published.
	Seq  uint64
	Time time.Time
}

// Publisher holds the most recently completed sample.
// It's safe for concurrent use.
type Publisher struct {
	latest atomic.Pointer[Snapshot]
	count  atomic.Uint64
}

// Publish replaces the latest snapshot with s.
func (p *Publisher) Publish(s sensor.Sample) *Snapshot {
	snap := &Snapshot{Sample: s, Seq: p.count.Add(1), Time: time.Now()}
	p.latest.Store(snap)
	return snap
}

// Latest returns the latest snapshot, or a zero snapshot if nothing has
// been published yet.
func (p *Publisher) Latest() Snapshot {
	if snap := p.latest.Load(); snap != nil {
		return *snap
	}
	return Snapshot{}
}

// Count returns the number of published samples.
func (p *Publisher) Count() uint64 {
	return p.count.Load()
}
