// Package sim simulates the robot hardware in memory.
package sim

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/robotalks/linebot/pkg/robot/hw"
)

// ErrInjected is the fault returned by simulated devices when told to fail.
var ErrInjected = errors.New("injected fault")

// Motors records the commanded speeds.
type Motors struct {
	Left, Right int
	// History holds every speed pair commanded, including Off as (0, 0).
	History [][2]int
	Err     error
}

// SetSpeeds implements hw.Motors.
func (m *Motors) SetSpeeds(left, right int) error {
	if m.Err != nil {
		return m.Err
	}
	m.Left, m.Right = left, right
	m.History = append(m.History, [2]int{left, right})
	return nil
}

// Off implements hw.Motors.
func (m *Motors) Off() error {
	m.Left, m.Right = 0, 0
	m.History = append(m.History, [2]int{})
	return nil
}

// Speeds implements hw.Motors.
func (m *Motors) Speeds() (int, int) {
	return m.Left, m.Right
}

// LineSensors returns fixed readings.
type LineSensors struct {
	Readings [hw.SensorCount]int
	Samples  int
	// FailAtSample makes the Nth calibration sample (1-based) fail.
	FailAtSample int
	ReadErr      error
}

// Calibrate implements hw.LineSensors.
func (s *LineSensors) Calibrate() error {
	s.Samples++
	if s.FailAtSample > 0 && s.Samples >= s.FailAtSample {
		return ErrInjected
	}
	return nil
}

// ReadCalibrated implements hw.LineSensors.
func (s *LineSensors) ReadCalibrated() ([hw.SensorCount]int, error) {
	return s.Readings, s.ReadErr
}

// Bumpers are pressed by setting Left or Right. They may be pressed
// from another goroutine.
type Bumpers struct {
	lock        sync.Mutex
	left, right bool
}

// Press sets the state of the bumpers.
func (b *Bumpers) Press(left, right bool) {
	b.lock.Lock()
	b.left, b.right = left, right
	b.lock.Unlock()
}

// Calibrate implements hw.Bumpers.
func (b *Bumpers) Calibrate() error {
	return nil
}

// Read implements hw.Bumpers.
func (b *Bumpers) Read() (bool, bool, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.left, b.right, nil
}

// Display keeps the last shown rows.
type Display struct {
	Rows []string
}

// Show implements hw.Display.
func (d *Display) Show(rows []string) error {
	d.Rows = append([]string(nil), rows...)
	return nil
}

// Buzzer records played notes.
type Buzzer struct {
	Played []string
}

// Play implements hw.Buzzer.
func (b *Buzzer) Play(notes string) error {
	b.Played = append(b.Played, notes)
	return nil
}

// Light is an LED counting its transitions.
type Light struct {
	On      bool
	Changes int
}

// Set implements hw.Light.
func (l *Light) Set(on bool) {
	if l.On != on {
		l.Changes++
	}
	l.On = on
}

// IsOn implements hw.Light.
func (l *Light) IsOn() bool {
	return l.On
}

// Battery reports a random charge between 80% and 100%.
type Battery struct {
	Rand *rand.Rand
}

// Percent implements hw.Battery.
func (b *Battery) Percent() (int, error) {
	if b.Rand != nil {
		return 80 + b.Rand.Intn(21), nil
	}
	return 80 + rand.Intn(21), nil
}

// Robot is a complete simulated hardware set.
type Robot struct {
	Motors      Motors
	LineSensors LineSensors
	Bumpers     Bumpers
	Display     Display
	Buzzer      Buzzer
	Warning     Light
	Activity    Light
	Battery     Battery
}

// New creates a simulated robot sitting centered over a line.
func New() *Robot {
	return &Robot{
		LineSensors: LineSensors{Readings: [hw.SensorCount]int{0, 100, 1000, 100, 0}},
	}
}

// Set returns the hardware set backed by r.
func (r *Robot) Set() hw.Set {
	return hw.Set{
		Motors:      &r.Motors,
		LineSensors: &r.LineSensors,
		Bumpers:     &r.Bumpers,
		Display:     &r.Display,
		Buzzer:      &r.Buzzer,
		Warning:     &r.Warning,
		Activity:    &r.Activity,
		Battery:     &r.Battery,
	}
}
