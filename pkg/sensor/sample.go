package sensor

import "strings"

// Channel is a wire tag of a sensor channel. The same value is used as the
// error bit of the channel.
type Channel byte

// Sensor channels.
const (
	ChannelAccel Channel = 0x02
	ChannelGyro  Channel = 0x04
	ChannelBaro  Channel = 0x08
	ChannelPhoto Channel = 0x40
	ChannelDelta Channel = 0x80
)

// Channels lists all sensor channels in wire order.
var Channels = []Channel{ChannelDelta, ChannelAccel, ChannelGyro, ChannelBaro, ChannelPhoto}

var channelNames = map[Channel]string{
	ChannelAccel: "accel",
	ChannelGyro:  "gyro",
	ChannelBaro:  "baro",
	ChannelPhoto: "photo",
	ChannelDelta: "delta",
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return "unknown"
}

// ErrorSet is a bitset of channels failed to decode in a frame.
type ErrorSet byte

// Has indicates the channel failed.
func (e ErrorSet) Has(c Channel) bool {
	return e&ErrorSet(c) != 0
}

// Set marks the channel failed.
func (e *ErrorSet) Set(c Channel) {
	*e |= ErrorSet(c)
}

// Empty indicates no channel failed.
func (e ErrorSet) Empty() bool {
	return e == 0
}

// String implements fmt.Stringer.
func (e ErrorSet) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, c := range Channels {
		if e.Has(c) {
			names = append(names, c.String())
		}
	}
	return strings.Join(names, "|")
}

// Sample is the decoded state of one frame cycle.
// A channel reporting an error keeps the last successfully decoded value.
type Sample struct {
	Delta          int16
	Acceleration   [3]float64 // m/s^2
	RotationalRate [3]float64 // deg/s
	Altitude       float64    // m
	Temperature    float64    // C
	Light          float64    // percent of full scale
	Errors         ErrorSet
}
