package robot

import (
	"time"

	"github.com/golang/glog"
)

// cmdCalibrate runs a calibration sweep. Without blocking waits the
// response is deferred and written once the sweep ends.
func (n *Node) cmdCalibrate(req Request) (Response, error) {
	if n.Calibrating() {
		return Response{}, errCalibrating
	}
	sweep := n.beginCalibration()
	if n.conf.BlockingWaits {
		text, err := n.endCalibration(sweep.Run(req.Time, n.conf.sleep), n.conf.sleep)
		return Reply(text), err
	}
	n.calibration = &activeCalibration{
		sweep: sweep,
		finish: func(err error) {
			text, err := n.endCalibration(err, nil)
			if err != nil {
				text = ErrorText(err)
			}
			n.writeLine(text)
		},
	}
	return Deferred, nil
}

func (n *Node) beginCalibration() *Calibration {
	n.transition(ModeStopped)
	n.motorsOff()
	n.show("Calibrating", "Line Sensors...")
	glog.Info("line sensors calibration started")
	return NewCalibration(n.hw.Motors, n.hw.LineSensors,
		n.conf.CalibrationSpeed, n.conf.CalibrationSamples, n.conf.CalibrationPause)
}

// endCalibration applies the outcome of a sweep. With hold set, the
// outcome stays on the display for calibrationHold before line following
// starts.
func (n *Node) endCalibration(err error, hold func(time.Duration)) (string, error) {
	if err != nil {
		n.motorsOff()
		n.state.Calibrated = false
		n.transition(ModeStopped)
		n.show("Calibration", "Failed!", err.Error())
		glog.Warningf("line sensors calibration failed: %v", err)
		if hold != nil {
			hold(calibrationHold)
		}
		return "", calibrationFault(err)
	}
	n.state.Calibrated = true
	n.show("Calibration", "Complete!", "Starting Line", "Following...")
	if hold != nil {
		hold(calibrationHold)
	}
	n.transition(ModeLineFollowing)
	glog.Info("line sensors calibrated")
	return CalibratedText, nil
}

func (n *Node) stepCalibration(now time.Time) {
	if n.calibration == nil {
		return
	}
	budget := n.conf.SamplesPerCycle
	if budget <= 0 {
		budget = -1
	}
	done, err := n.calibration.sweep.Step(now, budget)
	if done || err != nil {
		n.finishCalibration(err)
	}
}

func (n *Node) finishCalibration(err error) {
	c := n.calibration
	n.calibration = nil
	c.finish(err)
}

func (n *Node) abortCalibration() {
	if n.calibration != nil {
		n.finishCalibration(ErrAborted)
	}
}
