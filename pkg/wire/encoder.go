package wire

import "github.com/robotalks/inertial.go/pkg/sensor"

// AppendMarker appends the marker of a channel tag.
func AppendMarker(dst []byte, tag byte) []byte {
	return append(dst, DLE, tag)
}

// AppendPayload appends payload bytes with DLE doubled.
func AppendPayload(dst []byte, payload []byte) []byte {
	for _, b := range payload {
		if b == DLE {
			dst = append(dst, DLE)
		}
		dst = append(dst, b)
	}
	return dst
}

// AppendFrame appends a complete frame encoding r.
func AppendFrame(dst []byte, r sensor.Raw) []byte {
	var p [maxPayloadSize]byte

	dst = AppendMarker(dst, STX)
	putBigEndian16(p[0:], r.Delta)
	dst = AppendPayload(dst, p[:DeltaSize])

	dst = AppendMarker(dst, TagAccel)
	for i, v := range r.Accel {
		putLittleEndian16(p[2*i:], v)
	}
	dst = AppendPayload(dst, p[:AccelSize])

	dst = AppendMarker(dst, TagGyro)
	for i, v := range r.Gyro {
		putLittleEndian16(p[2*i:], v)
	}
	dst = AppendPayload(dst, p[:GyroSize])

	dst = AppendMarker(dst, TagBaro)
	putLittleEndian16(p[0:], r.AltInteger)
	p[2], p[3], p[4] = byte(r.AltFraction), byte(r.TempInteger), byte(r.TempFraction)
	dst = AppendPayload(dst, p[:BaroSize])

	dst = AppendMarker(dst, TagPhoto)
	putLittleEndian16(p[0:], r.Light)
	dst = AppendPayload(dst, p[:PhotoSize])

	return AppendMarker(dst, ETX)
}

func putLittleEndian16(p []byte, v int16) {
	p[0], p[1] = byte(uint16(v)), byte(uint16(v)>>8)
}

func putBigEndian16(p []byte, v int16) {
	p[0], p[1] = byte(uint16(v)>>8), byte(uint16(v))
}
