package wire

import (
	"fmt"
	"io"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

// Framing bytes.
const (
	DLE byte = 0x10 // escape, introduces a marker
	STX byte = 0x01 // frame start, followed by the delta payload
	ETX byte = 0x20 // frame end

	TagAccel = byte(sensor.ChannelAccel)
	TagGyro  = byte(sensor.ChannelGyro)
	TagBaro  = byte(sensor.ChannelBaro)
	TagPhoto = byte(sensor.ChannelPhoto)
	TagDelta = byte(sensor.ChannelDelta)
)

// Payload sizes.
const (
	DeltaSize = 2
	AccelSize = 6
	GyroSize  = 6
	BaroSize  = 5
	PhotoSize = 2

	maxPayloadSize = AccelSize
)

// Buffering constants.
const (
	// MaxPartSize is the largest number of bytes one decoding step consumes:
	// a fully escaped payload plus the following marker.
	MaxPartSize = 2*maxPayloadSize + 2
	// DefaultMinBuffered is the buffered byte count below which a refill
	// is forced.
	DefaultMinBuffered = 64
	// DefaultRefillRequest is the number of bytes a refill asks for.
	DefaultRefillRequest = 256
)

// Command is a single byte control command sent to the sensor platform.
type Command byte

// Commands.
const (
	CmdStartStream Command = 0xb0
	CmdStopStream  Command = 0xb1
	CmdSample      Command = 0xb2
)

var commandNames = map[Command]string{
	CmdStartStream: "start-stream",
	CmdStopStream:  "stop-stream",
	CmdSample:      "sample",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(0x%02x)", byte(c))
}

// Send writes the command.
func (c Command) Send(w io.ByteWriter) error {
	return w.WriteByte(byte(c))
}

// IsCommand indicates b is one of the commands.
func IsCommand(b byte) bool {
	_, ok := commandNames[Command(b)]
	return ok
}
