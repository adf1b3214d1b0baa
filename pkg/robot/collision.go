package robot

import "github.com/golang/glog"

const collisionNotes = "c32"

// checkCollision latches a collision on the rising edge of either bumper
// and stops forward motion. The latch clears once both bumpers are
// released; the mode is left as it is.
func (n *Node) checkCollision() {
	left, right, err := n.hw.Bumpers.Read()
	if err != nil {
		glog.Warningf("bumpers: %v", err)
		return
	}
	bumped := left || right
	switch {
	case bumped && !n.state.CollisionLatched:
		n.state.CollisionLatched = true
		n.hw.Warning.Set(true)
		if err := n.hw.Buzzer.Play(collisionNotes); err != nil {
			glog.Warningf("buzzer: %v", err)
		}
		l, r := n.hw.Motors.Speeds()
		if n.state.Mode != ModeStopped && l > 0 && r > 0 {
			glog.Warningf("collision (left=%v right=%v), stopping", left, right)
			n.motorsOff()
			n.transition(ModeStopped)
		}
	case !bumped && n.state.CollisionLatched:
		n.state.CollisionLatched = false
		n.hw.Warning.Set(false)
		glog.Info("collision cleared")
	}
}
