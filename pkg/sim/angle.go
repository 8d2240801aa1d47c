package sim

import "math"

// Angle is an angle in radians.
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(d * math.Pi / 180.0)
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Cos wraps math.Cos.
func (a Angle) Cos() float64 {
	return math.Cos(float64(a))
}

// Sin wraps math.Sin.
func (a Angle) Sin() float64 {
	return math.Sin(float64(a))
}

// Oscillation is a sinusoidal angular motion.
type Oscillation struct {
	Amplitude Angle
	Frequency float64 // Hz
	Phase     Angle
}

func (o Oscillation) omega() float64 {
	return 2 * math.Pi * o.Frequency
}

// At returns the angle at t seconds.
func (o Oscillation) At(t float64) Angle {
	return Angle(o.Amplitude.Radians() * math.Sin(o.omega()*t+o.Phase.Radians()))
}

// RateAt returns the angular rate at t seconds, in deg/s.
func (o Oscillation) RateAt(t float64) float64 {
	return Angle(o.Amplitude.Radians() * o.omega() * math.Cos(o.omega()*t+o.Phase.Radians())).Degrees()
}
