package sensor

// Raw is a sample as integers on the wire.
type Raw struct {
	Delta        int16
	Accel        [3]int16
	Gyro         [3]int16
	AltInteger   int16
	AltFraction  int8
	TempInteger  int8
	TempFraction int8
	Light        int16
}

// Sample converts the raw values into physical units.
func (r Raw) Sample() Sample {
	s := Sample{
		Delta:       r.Delta,
		Altitude:    Altitude(r.AltInteger, r.AltFraction),
		Temperature: Temperature(r.TempInteger, r.TempFraction),
		Light:       Illuminance(r.Light),
	}
	for i := range r.Accel {
		s.Acceleration[i] = Acceleration(r.Accel[i])
		s.RotationalRate[i] = AngularRate(r.Gyro[i])
	}
	return s
}

// RawFrom converts a sample back into wire integers.
// Temperature must fit in the signed 8-bit integer part.
func RawFrom(s Sample) Raw {
	r := Raw{
		Delta: s.Delta,
		Light: RawIlluminance(s.Light),
	}
	for i := range s.Acceleration {
		r.Accel[i] = RawAcceleration(s.Acceleration[i])
		r.Gyro[i] = RawAngularRate(s.RotationalRate[i])
	}
	r.AltInteger, r.AltFraction = RawFixedPoint(s.Altitude)
	ti, tf := RawFixedPoint(s.Temperature)
	r.TempInteger, r.TempFraction = int8(ti), tf
	return r
}
