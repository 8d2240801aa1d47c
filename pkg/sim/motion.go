package sim

import (
	"math"

	"github.com/robotalks/inertial.go/pkg/sensor"
)

// Motion describes the simulated movement and environment of the platform.
type Motion struct {
	Roll, Pitch, Yaw Oscillation

	Altitude    float64 // m
	Temperature float64 // °C
	Light       float64 // %
}

// DefaultMotion returns a slow tumbling on a desk.
func DefaultMotion() Motion {
	return Motion{
		Roll:        Oscillation{Amplitude: AngleFromDegrees(35), Frequency: 0.23},
		Pitch:       Oscillation{Amplitude: AngleFromDegrees(25), Frequency: 0.31, Phase: math.Pi / 3},
		Yaw:         Oscillation{Amplitude: AngleFromDegrees(40), Frequency: 0.17, Phase: 2 * math.Pi / 3},
		Altitude:    1655,
		Temperature: 21.5,
		Light:       60,
	}
}

// Sample returns the readings at t seconds.
// Accelerometer sees gravity only, rotated into the body frame.
func (m Motion) Sample(t float64) sensor.Sample {
	roll, pitch := m.Roll.At(t), m.Pitch.At(t)
	var s sensor.Sample
	s.Acceleration = [3]float64{
		-sensor.Gravity * pitch.Sin(),
		sensor.Gravity * roll.Sin() * pitch.Cos(),
		sensor.Gravity * roll.Cos() * pitch.Cos(),
	}
	s.RotationalRate = [3]float64{m.Roll.RateAt(t), m.Pitch.RateAt(t), m.Yaw.RateAt(t)}
	s.Altitude = m.Altitude + 0.5*math.Sin(2*math.Pi*0.05*t)
	s.Temperature = m.Temperature + 0.25*math.Sin(2*math.Pi*0.01*t)
	s.Light = math.Max(0, math.Min(100, m.Light+10*math.Sin(2*math.Pi*0.1*t)))
	return s
}
