package robot

import (
	"time"

	"github.com/robotalks/linebot/pkg/robot/hw"
)

type calibrationPhase struct {
	// direction of the spin, +1 turns right in place.
	direction int
	samples   int
}

// Calibration is one sweep of the line sensors: spin, pause, spin back
// across twice the distance, pause, spin to the start position.
// It advances in steps so it can be spread over loop cycles or run
// to completion in one go.
type Calibration struct {
	motors  hw.Motors
	sensors hw.LineSensors
	speed   int
	pause   time.Duration

	phases   []calibrationPhase
	phase    int
	taken    int
	spinning bool
	resumeAt time.Time
}

// NewCalibration creates a sweep taking samples calibration samples
// while spinning at speed.
func NewCalibration(motors hw.Motors, sensors hw.LineSensors, speed, samples int, pause time.Duration) *Calibration {
	return &Calibration{
		motors:  motors,
		sensors: sensors,
		speed:   speed,
		pause:   pause,
		phases: []calibrationPhase{
			{direction: 1, samples: samples / 4},
			{direction: -1, samples: samples / 2},
			{direction: 1, samples: samples / 4},
		},
	}
}

// Step takes up to budget samples, budget < 0 meaning no limit. It
// returns done when the sweep completed and the motors are off. Between
// phases it returns without progress until now reaches the end of the
// pause; Wait tells how long that is.
func (c *Calibration) Step(now time.Time, budget int) (done bool, err error) {
	for c.phase < len(c.phases) {
		if now.Before(c.resumeAt) {
			return false, nil
		}
		p := c.phases[c.phase]
		if !c.spinning {
			if err = c.motors.SetSpeeds(p.direction*c.speed, -p.direction*c.speed); err != nil {
				return false, err
			}
			c.spinning = true
		}
		for ; c.taken < p.samples; c.taken++ {
			if budget == 0 {
				return false, nil
			}
			if err = c.sensors.Calibrate(); err != nil {
				return false, err
			}
			budget--
		}
		if err = c.motors.Off(); err != nil {
			return false, err
		}
		c.spinning, c.taken = false, 0
		if c.phase++; c.phase < len(c.phases) {
			c.resumeAt = now.Add(c.pause)
		}
	}
	return true, nil
}

// Wait returns the remaining pause at now.
func (c *Calibration) Wait(now time.Time) time.Duration {
	if d := c.resumeAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Run runs the sweep to completion, sleeping through the pauses.
func (c *Calibration) Run(now time.Time, sleep func(time.Duration)) error {
	for {
		done, err := c.Step(now, -1)
		if done || err != nil {
			return err
		}
		d := c.Wait(now)
		sleep(d)
		now = now.Add(d)
	}
}
