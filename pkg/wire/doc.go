// Package wire implements the byte-stuffed frame protocol spoken by the
// inertial sensor platform.
package wire

// A frame is a sequence of channel parts. Each part starts with a marker,
// the escape byte DLE followed by a channel tag, then a fixed length payload:
//
//	DLE STX delta(2) DLE ACC accel(6) DLE GYRO gyro(6) DLE BARO baro(5)
//	DLE PHOTO light(2) DLE ETX
//
// A DLE inside a payload is sent doubled. There is no checksum: integrity
// relies on the escape rule only, and the decoder resynchronizes on the next
// marker whenever the rule is violated.
//
// Producer: sensor platform firmware
// Consumer: acquisition host
