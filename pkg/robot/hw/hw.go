// Package hw defines the drivers the robot-control node depends on.
// Real drivers live outside this module; sim provides simulated ones.
package hw

// SensorCount is the number of reflectance sensors in the line array.
const SensorCount = 5

// Motors drives the two wheels. Positive speeds move forward.
type Motors interface {
	SetSpeeds(left, right int) error
	Off() error
	// Speeds returns the last commanded speeds.
	Speeds() (left, right int)
}

// LineSensors is the reflectance sensor array.
type LineSensors interface {
	// Calibrate takes one calibration sample, updating min/max bounds.
	Calibrate() error
	// ReadCalibrated returns readings normalized to 0..1000.
	ReadCalibrated() ([SensorCount]int, error)
}

// Bumpers are the two front bump sensors.
type Bumpers interface {
	Calibrate() error
	Read() (left, right bool, err error)
}

// Display is a small text display.
type Display interface {
	// Show replaces the display content, one string per text row.
	Show(rows []string) error
}

// Buzzer plays note sequences.
type Buzzer interface {
	Play(notes string) error
}

// Light is an on/off LED.
type Light interface {
	Set(on bool)
	IsOn() bool
}

// Battery reports the remaining charge.
type Battery interface {
	Percent() (int, error)
}

// Set is the hardware of one robot.
type Set struct {
	Motors      Motors
	LineSensors LineSensors
	Bumpers     Bumpers
	Display     Display
	Buzzer      Buzzer
	// Warning is the yellow LED lit on collision or fatal error.
	Warning Light
	// Activity pulses while a command is dispatched.
	Activity Light
	Battery  Battery
}

// Toggle flips a Light.
func Toggle(l Light) {
	l.Set(!l.IsOn())
}
