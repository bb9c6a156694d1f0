// Package sensor provides the temperature source and its analog scaling.
package sensor

// Temperature bounds in tenths of a degree Celsius, and the analog range
// they map onto.
const (
	MinTenthCelsius = 200
	MaxTenthCelsius = 300

	AnalogMin = 0
	AnalogMax = 255
)

// TemperatureSensor supplies temperature readings.
type TemperatureSensor interface {
	// TemperatureTenthCelsius returns the current reading in tenths of a degree.
	TemperatureTenthCelsius() int
}

// ToAnalog maps a temperature onto the analog pin range, clamping readings
// outside [MinTenthCelsius, MaxTenthCelsius].
func ToAnalog(tenthsCelsius int) uint8 {
	v := (tenthsCelsius - MinTenthCelsius) * AnalogMax / (MaxTenthCelsius - MinTenthCelsius)
	if v < AnalogMin {
		v = AnalogMin
	}
	if v > AnalogMax {
		v = AnalogMax
	}
	return uint8(v)
}

// FromAnalog maps an analog pin value back to tenths of a degree. Integer
// rounding makes ToAnalog then FromAnalog lossy by at most one tenth.
func FromAnalog(raw uint8) int {
	return int(raw)*(MaxTenthCelsius-MinTenthCelsius)/AnalogMax + MinTenthCelsius
}
