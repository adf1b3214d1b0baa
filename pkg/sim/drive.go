package sim

import (
	"math"
	"time"
)

// Drive is the kinematics of a differential-drive body.
type Drive struct {
	// SpeedScale converts motor speed units into mm/s.
	SpeedScale float64
	// TrackWidth is the distance between the wheels in mm.
	TrackWidth float64
}

// DefaultDrive approximates a small two-wheeled robot: full motor speed
// 1000 is 200 mm/s.
var DefaultDrive = Drive{SpeedScale: 0.2, TrackWidth: 85}

// Velocity converts wheel speeds into linear (mm/s) and angular (rad/s)
// velocity. Positive angular velocity turns left.
func (d Drive) Velocity(left, right int) (linear, angular float64) {
	l, r := float64(left)*d.SpeedScale, float64(right)*d.SpeedScale
	return (l + r) / 2, (r - l) / d.TrackWidth
}

// Estimate returns the pose after driving with the wheel speeds for dur.
// Wheel speeds are constant, so the body follows a straight line or an
// arc.
func (d Drive) Estimate(pose Pose2D, left, right int, dur time.Duration) Pose2D {
	secs := dur.Seconds()
	if secs <= 0 {
		return pose
	}
	v, w := d.Velocity(left, right)
	if math.Abs(w) < 1e-9 {
		pose.Pos2D.OffsetBy(pose.Orientation.Project(v * secs))
		return pose
	}
	theta := pose.Orientation.Radians()
	turned := w * secs
	pose.X += v / w * (math.Sin(theta+turned) - math.Sin(theta))
	pose.Y -= v / w * (math.Cos(theta+turned) - math.Cos(theta))
	pose.Orientation = pose.Orientation.AddRadians(turned)
	return pose
}
