package robot

import (
	"time"

	"github.com/golang/glog"
)

// report sends the periodic AUTO: status line.
func (n *Node) report(now time.Time) {
	if now.Before(n.nextStatus) {
		return
	}
	n.nextStatus = now.Add(n.conf.StatusPeriod)
	status, err := n.status()
	if err != nil {
		glog.Warningf("status report: %v", err)
		return
	}
	n.writeLine(AutoPrefix + status)
	n.hw.Activity.Set(true)
	n.timers.After(now, activityPulse, func(time.Time) {
		n.hw.Activity.Set(false)
	})
}
