package robot

import "github.com/robotalks/linebot/pkg/robot/hw"

// Line following constants, in raw calibrated sensor units.
const (
	LineThreshold = 700
	LineCenter    = 2000
	LineKp        = 15
	LineKd        = 300
)

// LinePosition estimates the line position in 0..4000 from calibrated
// readings. When none of the three central sensors sees the line, the
// position is pushed to the side the previous error favored.
//
// The sign convention follows the sensor array order and still needs to
// be checked against how the array is mounted.
func LinePosition(v [hw.SensorCount]int, prevErr int) int {
	if v[1] < LineThreshold && v[2] < LineThreshold && v[3] < LineThreshold {
		if prevErr < 0 {
			return 0
		}
		return 4000
	}
	sum := v[1] + v[2] + v[3] + v[4]
	if sum == 0 {
		return LineCenter
	}
	return (1000*v[1] + 2000*v[2] + 3000*v[3] + 4000*v[4]) / sum
}

// LineError is the offset of the line from the array center.
func LineError(v [hw.SensorCount]int, prevErr int) int {
	return LinePosition(v, prevErr) - LineCenter
}

// WheelSpeeds applies the PD law to a line error. Corrections only slow a
// wheel down; they never reverse it.
func WheelSpeeds(lineErr, prevErr, base int) (left, right int) {
	pid := lineErr*LineKp + (lineErr-prevErr)*LineKd
	return clamp(base+pid, 0, base), clamp(base-pid, 0, base)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
