package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linebot/pkg/robot"
	"github.com/robotalks/linebot/pkg/robot/hw"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newStraightWorld(lateral float64) (*World, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWorld(Straight{}, Pose2D{Pos2D: Pos2D{Y: lateral}})
	w.Now = clock.Now
	return w, clock
}

func TestReflectance(t *testing.T) {
	testCases := []struct {
		dist   float64
		expect int
	}{
		{0, 1000},
		{9, 1000},
		{14, 500},
		{19, 0},
		{100, 0},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, DefaultReflectance.Reading(tc.dist), "dist %v", tc.dist)
	}
}

func TestWorldReadings(t *testing.T) {
	testCases := []struct {
		name    string
		lateral float64
		expect  [hw.SensorCount]int
		lineErr int
	}{
		{
			name:   "centered",
			expect: [hw.SensorCount]int{0, 700, 1000, 700, 0},
		},
		{
			// the body is left of the line, so the line is under the right sensors.
			name:    "line to the right",
			lateral: 12,
			expect:  [hw.SensorCount]int{0, 0, 700, 1000, 700},
			lineErr: 1,
		},
		{
			name:    "line to the left",
			lateral: -12,
			expect:  [hw.SensorCount]int{700, 1000, 700, 0, 0},
			lineErr: -1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := newStraightWorld(tc.lateral)
			v, err := w.ReadCalibrated()
			require.NoError(t, err)
			require.Equal(t, tc.expect, v)
			lineErr := robot.LineError(v, 0)
			switch {
			case tc.lineErr > 0:
				require.Positive(t, lineErr)
			case tc.lineErr < 0:
				require.Negative(t, lineErr)
			default:
				require.Zero(t, lineErr)
			}
		})
	}
}

func TestWorldMoves(t *testing.T) {
	w, clock := newStraightWorld(0)
	require.NoError(t, w.SetSpeeds(1000, 1000))
	clock.Advance(time.Second)
	require.InDelta(t, 200, w.Pose().X, 1e-6)
	left, right := w.Speeds()
	require.Equal(t, 1000, left)
	require.Equal(t, 1000, right)

	require.NoError(t, w.Off())
	clock.Advance(time.Second)
	require.InDelta(t, 200, w.Pose().X, 1e-6)

	require.NoError(t, w.Calibrate())
	require.Equal(t, 1, w.Samples())
}

// Steering with the line-following law brings a body that starts off
// the line back over it.
func TestWorldFollowsLine(t *testing.T) {
	w, clock := newStraightWorld(8)
	prevErr := 0
	for i := 0; i < 200; i++ {
		v, err := w.ReadCalibrated()
		require.NoError(t, err)
		lineErr := robot.LineError(v, prevErr)
		require.NoError(t, w.SetSpeeds(robot.WheelSpeeds(lineErr, prevErr, 1000)))
		prevErr = lineErr
		clock.Advance(10 * time.Millisecond)
	}
	pose := w.Pose()
	require.Greater(t, pose.X, 100.0)
	require.Less(t, Straight{}.Distance(pose.Local(SensorAhead, 0)), DefaultReflectance.HalfWidth+DefaultReflectance.Falloff)
}
