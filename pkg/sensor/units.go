package sensor

import "math"

// Constants of the sensor platform.
const (
	AccelRange        = 2      // g
	Gravity           = 9.8067 // m/s^2
	GyroRange         = 250    // deg/s
	FixedPointDivisor = 1 << 4
	LightFullScale    = 100 // percent

	accelBits = 1 << 12
	gyroBits  = 1 << 16
	lightBits = 1 << 10
)

// Scale factors from raw wire integers to physical units.
const (
	AccelScale = 2 * AccelRange * Gravity / accelBits
	GyroScale  = 2 * GyroRange / float64(gyroBits)
	LightScale = LightFullScale / float64(lightBits)
)

// Acceleration converts a raw accelerometer reading to m/s^2.
func Acceleration(raw int16) float64 {
	return float64(raw) * AccelScale
}

// AngularRate converts a raw gyroscope reading to deg/s.
func AngularRate(raw int16) float64 {
	return float64(raw) * GyroScale
}

// Altitude composes altitude in meters from the integer part and the
// 1/16 fractional part.
func Altitude(integer int16, fraction int8) float64 {
	return float64(integer) + float64(fraction)/FixedPointDivisor
}

// Temperature composes temperature in C, same encoding as Altitude.
func Temperature(integer, fraction int8) float64 {
	return float64(integer) + float64(fraction)/FixedPointDivisor
}

// Illuminance converts a raw photocell reading to percent of full scale.
func Illuminance(raw int16) float64 {
	return float64(raw) * LightScale
}

// RawAcceleration is the inverse of Acceleration.
func RawAcceleration(v float64) int16 {
	return clamp16(v / AccelScale)
}

// RawAngularRate is the inverse of AngularRate.
func RawAngularRate(v float64) int16 {
	return clamp16(v / GyroScale)
}

// RawIlluminance is the inverse of Illuminance.
func RawIlluminance(v float64) int16 {
	return clamp16(v / LightScale)
}

// RawFixedPoint splits v into the integer part and the 1/16 fraction.
// The fraction carries the sign of v so the pair composes back to v.
func RawFixedPoint(v float64) (int16, int8) {
	integer := math.Trunc(v)
	frac := math.Round((v - integer) * FixedPointDivisor)
	if frac >= FixedPointDivisor || frac <= -FixedPointDivisor {
		integer += frac / FixedPointDivisor
		frac = 0
	}
	return clamp16(integer), int8(frac)
}

func clamp16(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
