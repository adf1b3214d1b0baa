package sim

import (
	"sync"
	"time"

	"github.com/robotalks/linebot/pkg/robot/hw"
	hwsim "github.com/robotalks/linebot/pkg/robot/hw/sim"
)

// Sensor array geometry in mm, in the body frame.
const (
	SensorAhead   = 40
	SensorSpacing = 12
)

// World is a robot body on a track. It implements hw.Motors and
// hw.LineSensors: commanded speeds move the body over time and the
// sensors read the track under their current positions.
type World struct {
	Track       Track
	Drive       Drive
	Reflectance Reflectance
	// Now is the clock of the simulation.
	Now func() time.Time

	lock        sync.Mutex
	pose        Pose2D
	left, right int
	updated     time.Time
	samples     int
}

// NewWorld creates a World with the body at pose.
func NewWorld(track Track, pose Pose2D) *World {
	return &World{
		Track:       track,
		Drive:       DefaultDrive,
		Reflectance: DefaultReflectance,
		Now:         time.Now,
		pose:        pose,
	}
}

// NewCircleWorld places the body on a circular track of radius mm,
// centered over the line and heading counter-clockwise.
func NewCircleWorld(radius float64) *World {
	return NewWorld(Circle{Radius: radius}, Pose2D{
		Pos2D:       Pos2D{X: radius, Y: -SensorAhead},
		Orientation: AngleFromDegrees(90),
	})
}

// advance must be called with lock held.
func (w *World) advance() {
	now := w.Now()
	if !w.updated.IsZero() {
		w.pose = w.Drive.Estimate(w.pose, w.left, w.right, now.Sub(w.updated))
	}
	w.updated = now
}

// Pose returns the current pose of the body.
func (w *World) Pose() Pose2D {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.advance()
	return w.pose
}

// Place moves the body to pose.
func (w *World) Place(pose Pose2D) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.advance()
	w.pose = pose
}

// SetSpeeds implements hw.Motors.
func (w *World) SetSpeeds(left, right int) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.advance()
	w.left, w.right = left, right
	return nil
}

// Off implements hw.Motors.
func (w *World) Off() error {
	return w.SetSpeeds(0, 0)
}

// Speeds implements hw.Motors.
func (w *World) Speeds() (int, int) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.left, w.right
}

// Calibrate implements hw.LineSensors. Readings are already calibrated.
func (w *World) Calibrate() error {
	w.lock.Lock()
	w.samples++
	w.lock.Unlock()
	return nil
}

// Samples returns the number of calibration samples taken.
func (w *World) Samples() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.samples
}

// ReadCalibrated implements hw.LineSensors. Sensor 0 is the leftmost.
func (w *World) ReadCalibrated() (v [hw.SensorCount]int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.advance()
	for i := range v {
		p := w.pose.Local(SensorAhead, float64(hw.SensorCount/2-i)*SensorSpacing)
		v[i] = w.Reflectance.Reading(w.Track.Distance(p))
	}
	return
}

// Set returns a hardware set with w driving the wheels and reading the
// line, and the other devices simulated by robot.
func (w *World) Set(robot *hwsim.Robot) hw.Set {
	set := robot.Set()
	set.Motors = w
	set.LineSensors = w
	return set
}
