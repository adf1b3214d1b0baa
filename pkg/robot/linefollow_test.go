package robot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linebot/pkg/robot/hw"
)

func TestLinePosition(t *testing.T) {
	testCases := []struct {
		name     string
		readings [hw.SensorCount]int
		prevErr  int
		expect   int
	}{
		{name: "no line, previous error negative", readings: [hw.SensorCount]int{}, prevErr: -5, expect: 0},
		{name: "no line, previous error zero", readings: [hw.SensorCount]int{}, prevErr: 0, expect: 4000},
		{name: "no line, previous error positive", readings: [hw.SensorCount]int{900, 0, 0, 0, 900}, prevErr: 12, expect: 4000},
		{name: "centered", readings: [hw.SensorCount]int{0, 100, 1000, 100, 0}, expect: 2000},
		{name: "right of center", readings: [hw.SensorCount]int{0, 0, 800, 800, 0}, expect: 2500},
		{name: "all dark", readings: [hw.SensorCount]int{1000, 1000, 1000, 1000, 1000}, expect: 2500},
		{name: "zero divisor", readings: [hw.SensorCount]int{0, 700, 0, -700, 0}, expect: 2000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, LinePosition(tc.readings, tc.prevErr))
			require.Equal(t, tc.expect-LineCenter, LineError(tc.readings, tc.prevErr))
		})
	}
}

func TestWheelSpeeds(t *testing.T) {
	testCases := []struct {
		name          string
		lineErr, prev int
		base          int
		left, right   int
	}{
		{name: "on line", base: 1000, left: 1000, right: 1000},
		{name: "line lost left", lineErr: -2000, prev: -5, base: 1000, left: 0, right: 1000},
		{name: "small positive", lineErr: 10, base: 1250, left: 1250, right: 0},
		{name: "steady offset", lineErr: 20, prev: 20, base: 1500, left: 1500, right: 1200},
		{name: "recovering", lineErr: -20, prev: -21, base: 1000, left: 1000, right: 1000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			left, right := WheelSpeeds(tc.lineErr, tc.prev, tc.base)
			require.Equal(t, tc.left, left)
			require.Equal(t, tc.right, right)
		})
	}
}
