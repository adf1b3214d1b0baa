package robot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang/glog"
)

func (n *Node) commands() Table {
	return Table{
		"PING":      Fixed("PONG"),
		"STATUS":    Handler(ParamNone, n.cmdStatus),
		"FORWARD":   Handler(ParamNone, n.cmdForward),
		"BACKWARD":  Handler(ParamNone, n.cmdBackward),
		"LEFT":      Handler(ParamNone, n.cmdLeft),
		"RIGHT":     Handler(ParamNone, n.cmdRight),
		"STOP":      Handler(ParamNone, n.cmdStop),
		"SPEED":     Handler(ParamRequired, n.cmdSpeed),
		"LINE":      Handler(ParamOptional, n.cmdLine),
		"HEARTBEAT": Handler(ParamRequired, n.cmdHeartbeat),
	}
}

// drive enters MANUAL and sets the wheels to the signed current speed.
func (n *Node) drive(title string, left, right int) (int, error) {
	if n.Calibrating() {
		return 0, errCalibrating
	}
	speed := n.state.Speed()
	n.transition(ModeManual)
	if err := n.hw.Motors.SetSpeeds(left*speed, right*speed); err != nil {
		return 0, err
	}
	n.showUpdate(title, n.speedMessage())
	return speed, nil
}

func (n *Node) cmdForward(Request) (Response, error) {
	if n.state.CollisionLatched {
		return Response{}, errCollisionDetected
	}
	speed, err := n.drive("FORWARD", 1, 1)
	if err != nil {
		return Response{}, err
	}
	return Reply(fmt.Sprintf("MOVING:FORWARD at speed %d", speed)), nil
}

func (n *Node) cmdBackward(Request) (Response, error) {
	speed, err := n.drive("BACKWARD", -1, -1)
	if err != nil {
		return Response{}, err
	}
	return Reply(fmt.Sprintf("MOVING:BACKWARD at speed %d", speed)), nil
}

func (n *Node) cmdLeft(Request) (Response, error) {
	speed, err := n.drive("LEFT", -1, 1)
	if err != nil {
		return Response{}, err
	}
	return Reply(fmt.Sprintf("TURNING:LEFT at speed %d", speed)), nil
}

func (n *Node) cmdRight(Request) (Response, error) {
	speed, err := n.drive("RIGHT", 1, -1)
	if err != nil {
		return Response{}, err
	}
	return Reply(fmt.Sprintf("TURNING:RIGHT at speed %d", speed)), nil
}

// cmdStop stops the robot. Stopping line following only pauses it for
// ResumeDelay.
func (n *Node) cmdStop(req Request) (Response, error) {
	n.abortCalibration()
	prev := n.state.Mode
	n.transition(ModeStopped)
	n.motorsOff()
	n.showUpdate("STOPPED", "Motors off")
	if prev != ModeLineFollowing {
		return Reply("STOPPED"), nil
	}
	if n.conf.BlockingWaits {
		n.conf.sleep(n.conf.ResumeDelay)
		n.resumeLineFollowing(req.Time.Add(n.conf.ResumeDelay))
	} else {
		n.resume = n.timers.After(req.Time, n.conf.ResumeDelay, n.resumeLineFollowing)
	}
	return Reply("STOPPED (resuming line following)"), nil
}

func (n *Node) resumeLineFollowing(time.Time) {
	glog.Info("resuming line following")
	n.transition(ModeLineFollowing)
	n.showUpdate("LINE FOLLOW", n.speedMessage())
}

func (n *Node) cmdSpeed(req Request) (Response, error) {
	level, err := strconv.Atoi(req.Param)
	if err != nil {
		return Response{}, errInvalidSpeedLevel
	}
	speed, ok := SpeedLevels[level]
	if !ok {
		return Response{}, errInvalidSpeedLevel
	}
	n.state.SpeedLevel = level
	n.showUpdate("SPEED CHANGED", fmt.Sprintf("New speed: %d", speed))
	return Reply(fmt.Sprintf("SPEED_SET:%d (%d)", level, speed)), nil
}

func (n *Node) status() (string, error) {
	left, right, err := n.hw.Bumpers.Read()
	if err != nil {
		return "", err
	}
	battery, err := n.hw.Battery.Percent()
	if err != nil {
		return "", err
	}
	n.showUpdate("STATUS CHECK", "Mode: "+n.state.Mode.String())
	return fmt.Sprintf("STATUS:OK,BATTERY:%d%%,MODE:%s,SPEED:%d,CALIBRATED:%t,COLLISION:%t,LEFT_BUMP:%t,RIGHT_BUMP:%t",
		battery, n.state.Mode, n.state.Speed(), n.state.Calibrated, n.state.CollisionLatched, left, right), nil
}

func (n *Node) cmdStatus(Request) (Response, error) {
	status, err := n.status()
	if err != nil {
		return Response{}, err
	}
	return Reply(status), nil
}

func (n *Node) cmdLine(req Request) (Response, error) {
	switch req.Param {
	case "START":
		if n.Calibrating() {
			return Response{}, errCalibrating
		}
		if !n.state.Calibrated {
			return Response{}, errNotCalibrated
		}
		n.transition(ModeLineFollowing)
		n.showUpdate("LINE FOLLOW", "STARTED")
		return Reply("LINE_FOLLOWING:STARTED"), nil
	case "STOP":
		n.abortCalibration()
		n.transition(ModeStopped)
		n.motorsOff()
		n.showUpdate("LINE FOLLOW", "STOPPED")
		return Reply("LINE_FOLLOWING:STOPPED"), nil
	case "CALIBRATE":
		return n.cmdCalibrate(req)
	}
	if n.state.Mode == ModeLineFollowing {
		return Reply("LINE_FOLLOWING:ACTIVE"), nil
	}
	return Reply("LINE_FOLLOWING:INACTIVE"), nil
}

func (n *Node) cmdHeartbeat(req Request) (Response, error) {
	return Reply("HEARTBEAT_ACK:" + req.Param), nil
}
