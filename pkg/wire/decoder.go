package wire

import (
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

// FrameHandler is called when a frame is completed.
type FrameHandler interface {
	HandleFrame(sensor.Sample)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(sensor.Sample)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(s sensor.Sample) {
	f(s)
}

// State is the state of the decoder. It survives across Decode calls.
type State int

const (
	StateSync     State = iota // waiting for a marker
	StateMarker                // DLE received, waiting for the channel tag
	StateDelta                 // waiting for delta payload
	StateAccel                 // waiting for accelerometer payload
	StateGyro                  // waiting for gyroscope payload
	StateBaro                  // waiting for barometer payload
	StatePhoto                 // waiting for photocell payload
	StateFrameEnd              // frame completed
)

var stateNames = [...]string{
	StateSync:     "sync",
	StateMarker:   "marker",
	StateDelta:    "delta",
	StateAccel:    "accel",
	StateGyro:     "gyro",
	StateBaro:     "baro",
	StatePhoto:    "photo",
	StateFrameEnd: "frame-end",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

type part struct {
	channel sensor.Channel
	size    int
	decode  func(*sensor.Sample, []byte)
}

var parts = [...]part{
	StateDelta: {sensor.ChannelDelta, DeltaSize, decodeDelta},
	StateAccel: {sensor.ChannelAccel, AccelSize, decodeAccel},
	StateGyro:  {sensor.ChannelGyro, GyroSize, decodeGyro},
	StateBaro:  {sensor.ChannelBaro, BaroSize, decodeBaro},
	StatePhoto: {sensor.ChannelPhoto, PhotoSize, decodePhoto},
}

var tagStates = map[byte]State{
	STX:      StateDelta,
	TagDelta: StateDelta,
	TagAccel: StateAccel,
	TagGyro:  StateGyro,
	TagBaro:  StateBaro,
	TagPhoto: StatePhoto,
	ETX:      StateFrameEnd,
}

// Stats counts decoding events.
type Stats struct {
	Frames      uint64 // completed frames
	UnknownTags uint64 // markers naming no channel
	Malformed   uint64 // payloads aborted on a bad escape
	Skipped     uint64 // bytes dropped while looking for a marker
}

// Decoder decodes frames from a Channel.
// A Decoder is owned by a single goroutine, except Stats which is safe to
// call concurrently.
type Decoder struct {
	Handler FrameHandler
	// Margin is the number of bytes which must stay available.
	Margin int

	state   State
	sample  sensor.Sample
	payload [maxPayloadSize]byte

	frames      uint64
	unknownTags uint64
	malformed   uint64
	skipped     uint64
}

// NewDecoder creates a Decoder.
func NewDecoder(h FrameHandler) *Decoder {
	return &Decoder{Handler: h, Margin: MaxPartSize}
}

// State gets the current state.
func (d *Decoder) State() State {
	return d.state
}

// Sample gets the sample being decoded.
func (d *Decoder) Sample() sensor.Sample {
	return d.sample
}

// Stats gets the counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		Frames:      atomic.LoadUint64(&d.frames),
		UnknownTags: atomic.LoadUint64(&d.unknownTags),
		Malformed:   atomic.LoadUint64(&d.malformed),
		Skipped:     atomic.LoadUint64(&d.skipped),
	}
}

// Reset returns to StateSync and drops the errors of the current frame.
// The last decoded values are kept.
func (d *Decoder) Reset() {
	d.state = StateSync
	d.sample.Errors = 0
}

// Decode consumes bytes while more than Margin bytes are available.
// It never waits for bytes. Errors are only returned from the Channel.
func (d *Decoder) Decode(ch Channel) error {
	margin := d.Margin
	if margin < MaxPartSize {
		margin = MaxPartSize
	}
	for ch.Available() > margin {
		if err := d.step(ch); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) step(ch Channel) error {
	switch d.state {
	case StateSync:
		b, err := ch.ReadByte()
		if err != nil {
			return err
		}
		if b == DLE {
			d.state = StateMarker
		} else {
			atomic.AddUint64(&d.skipped, 1)
		}
	case StateMarker:
		b, err := ch.ReadByte()
		if err != nil {
			return err
		}
		if b == DLE {
			// doubled escape, a literal data byte
			atomic.AddUint64(&d.skipped, 2)
			d.state = StateSync
		} else {
			d.resolve(b)
		}
	case StateFrameEnd:
		d.complete()
	default:
		return d.readPart(ch, &parts[d.state])
	}
	return nil
}

func (d *Decoder) resolve(tag byte) {
	state, ok := tagStates[tag]
	if !ok {
		glog.V(4).Infof("unknown channel tag 0x%02x", tag)
		atomic.AddUint64(&d.unknownTags, 1)
		d.state = StateSync
		return
	}
	if d.state = state; state == StateFrameEnd {
		d.complete()
	}
}

func (d *Decoder) readPart(ch Channel, p *part) error {
	buf := d.payload[:p.size]
	for i := range buf {
		b, err := ch.ReadByte()
		if err != nil {
			return err
		}
		if b == DLE {
			if b, err = ch.ReadByte(); err != nil {
				return err
			}
			if b != DLE {
				// b is the tag of the marker which interrupted the payload.
				glog.V(4).Infof("%s payload interrupted at %d by 0x%02x", p.channel, i, b)
				atomic.AddUint64(&d.malformed, 1)
				d.sample.Errors.Set(p.channel)
				d.resolve(b)
				return nil
			}
		}
		buf[i] = b
	}
	p.decode(&d.sample, buf)
	d.state = StateSync
	return nil
}

func (d *Decoder) complete() {
	atomic.AddUint64(&d.frames, 1)
	if h := d.Handler; h != nil {
		h.HandleFrame(d.sample)
	}
	d.sample.Errors = 0
	d.state = StateSync
}

// The delta is big-endian while all other channels are little-endian, as
// sent by the firmware.

func decodeDelta(s *sensor.Sample, p []byte) {
	s.Delta = bigEndian16(p[0:])
}

func decodeAccel(s *sensor.Sample, p []byte) {
	for i := range s.Acceleration {
		s.Acceleration[i] = sensor.Acceleration(littleEndian16(p[2*i:]))
	}
}

func decodeGyro(s *sensor.Sample, p []byte) {
	for i := range s.RotationalRate {
		s.RotationalRate[i] = sensor.AngularRate(littleEndian16(p[2*i:]))
	}
}

func decodeBaro(s *sensor.Sample, p []byte) {
	s.Altitude = sensor.Altitude(littleEndian16(p[0:]), int8(p[2]))
	s.Temperature = sensor.Temperature(int8(p[3]), int8(p[4]))
}

func decodePhoto(s *sensor.Sample, p []byte) {
	s.Light = sensor.Illuminance(littleEndian16(p[0:]))
}

func littleEndian16(p []byte) int16 {
	return int16(uint16(p[1])<<8 | uint16(p[0]))
}

func bigEndian16(p []byte) int16 {
	return int16(uint16(p[0])<<8 | uint16(p[1]))
}
