// Package robot implements the robot-control node: it takes text commands
// from the serial link, drives the wheels and follows a line.
package robot

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot/hw"
)

// Outcome lines.
const (
	ReadyText      = "ROBOT_READY_AND_FOLLOWING"
	CalibratedText = "LINE_SENSORS:CALIBRATED_AND_FOLLOWING"
	AutoPrefix     = "AUTO:"
)

const (
	failTextLen     = 20
	calibrationHold = time.Second
	activityPulse   = 100 * time.Millisecond
)

type activeCalibration struct {
	sweep  *Calibration
	finish func(err error)
}

// Node is the robot-control node. All of its state is owned by the loop
// goroutine: the serial Reader hands received bytes over as loop messages.
type Node struct {
	conf Config
	hw   hw.Set
	port io.Writer

	state  State
	codec  *link.Codec
	table  Table
	timers fx.Timers

	calibration *activeCalibration
	resume      *fx.Timer
	booted      bool
	nextStatus  time.Time
}

// NewNode creates a Node driving set and replying on port.
func NewNode(conf *Config, set hw.Set, port io.Writer) *Node {
	n := &Node{
		conf:  *conf,
		hw:    set,
		port:  port,
		state: InitialState(),
		codec: link.NewCodec(),
	}
	n.table = n.commands()
	return n
}

// State returns a snapshot of the robot state.
func (n *Node) State() State {
	return n.state
}

// Calibrating indicates a calibration sweep is in progress.
func (n *Node) Calibrating() bool {
	return n.calibration != nil
}

// AddToLoop implements framework.LoopAdder.
func (n *Node) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(func(cc fx.ControlContext) error {
		n.sense(cc.Time())
		return nil
	}))
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		var received [][]byte
		for _, chunk := range link.TakeChunks(cc) {
			received = append(received, chunk.Data)
		}
		n.control(cc.Time(), received)
		return nil
	}))
	loop.AddController(fx.PrLvAcuate, fx.ControlFunc(func(cc fx.ControlContext) error {
		n.actuate(cc.Time())
		return nil
	}))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(func(cc fx.ControlContext) error {
		n.report(cc.Time())
		return nil
	}))
}

// Cycle runs one control cycle at now, with data received from the link
// since the previous cycle.
func (n *Node) Cycle(now time.Time, received ...[]byte) {
	n.sense(now)
	n.control(now, received)
	n.actuate(now)
	n.report(now)
}

// Dispatch handles one command frame and returns its response.
func (n *Node) Dispatch(now time.Time, text string) Response {
	n.hw.Activity.Set(true)
	defer n.hw.Activity.Set(false)
	return n.table.Dispatch(now, text)
}

// Fail puts the robot in the fatal state: motors off, warning LED on and
// the error on the display.
func (n *Node) Fail(err error) {
	glog.Errorf("robot failed: %v", err)
	n.calibration = nil
	if err := n.hw.Motors.Off(); err != nil {
		glog.Errorf("motors off: %v", err)
	}
	n.hw.Warning.Set(true)
	msg := []rune(err.Error())
	if len(msg) > failTextLen {
		msg = msg[:failTextLen]
	}
	n.show("ERROR!", string(msg))
}

func (n *Node) sense(now time.Time) {
	if !n.booted {
		n.boot(now)
	}
	n.checkCollision()
}

func (n *Node) control(now time.Time, received [][]byte) {
	n.timers.Fire(now)
	n.stepCalibration(now)
	for _, data := range received {
		n.receive(now, data)
	}
}

func (n *Node) actuate(now time.Time) {
	if n.state.Mode == ModeLineFollowing && n.state.Calibrated && !n.state.CollisionLatched {
		n.followLine()
	}
}

func (n *Node) boot(now time.Time) {
	n.booted = true
	n.nextStatus = now.Add(n.conf.StatusPeriod)
	if err := n.hw.Bumpers.Calibrate(); err != nil {
		glog.Warningf("bumpers calibration: %v", err)
	}
	if !n.conf.AutoCalibrate {
		return
	}
	glog.Info("auto-calibrating line sensors")
	n.show("Auto-Calibrating", "Line Sensors...")
	var hold func(time.Duration)
	if n.conf.BlockingWaits {
		hold = n.conf.sleep
		hold(calibrationHold)
	}
	sweep := n.beginCalibration()
	finish := func(err error) {
		if _, err := n.endCalibration(err, hold); err != nil {
			n.writeLine(ErrorText(err))
			return
		}
		n.writeLine(ReadyText)
	}
	if n.conf.BlockingWaits {
		finish(sweep.Run(now, n.conf.sleep))
		return
	}
	n.calibration = &activeCalibration{sweep: sweep, finish: finish}
}

func (n *Node) receive(now time.Time, data []byte) {
	if err := n.codec.Ingest(data); err != nil {
		glog.Warningf("serial receive: %v", err)
	}
	for {
		frame, ok, err := n.codec.Next()
		if errors.Is(err, link.ErrOverflow) {
			glog.Warningf("serial receive: %v", err)
			continue
		}
		if err != nil {
			glog.Warningf("serial receive: %v, buffer discarded", err)
			return
		}
		if !ok {
			return
		}
		if strings.TrimSpace(frame) == "" {
			continue
		}
		glog.V(2).Infof("command %q", frame)
		if resp := n.Dispatch(now, frame); !resp.Deferred {
			n.writeLine(resp.Text)
		}
	}
}

func (n *Node) writeLine(text string) {
	glog.V(2).Infof("reply %q", text)
	if _, err := io.WriteString(n.port, link.Line(text)); err != nil {
		glog.Warningf("serial send: %v", err)
	}
}

// transition changes the mode and cancels a pending resume.
func (n *Node) transition(mode Mode) {
	if n.resume.Stop() {
		glog.V(2).Info("pending resume cancelled")
	}
	n.resume = nil
	if n.state.Mode != mode {
		glog.Infof("mode %s -> %s", n.state.Mode, mode)
		n.state.Mode = mode
	}
}

func (n *Node) motorsOff() {
	if err := n.hw.Motors.Off(); err != nil {
		glog.Warningf("motors off: %v", err)
	}
}

func (n *Node) followLine() {
	readings, err := n.hw.LineSensors.ReadCalibrated()
	if err != nil {
		glog.Warningf("line sensors: %v", err)
		return
	}
	prev := n.state.PrevLineError
	lineErr := LineError(readings, prev)
	n.state.PrevLineError = lineErr
	left, right := WheelSpeeds(lineErr, prev, n.state.Speed())
	if err := n.hw.Motors.SetSpeeds(left, right); err != nil {
		glog.Warningf("line follow: %v", err)
	}
}
