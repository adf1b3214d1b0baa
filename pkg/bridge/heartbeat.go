package bridge

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

// heartbeat pings the robot, reports the bridge status and blinks the
// indicator while nobody is connected.
func (r *Relay) heartbeat(now time.Time) {
	if !now.Before(r.nextHeartbeat) {
		r.nextHeartbeat = now.Add(r.conf.HeartbeatPeriod)
		r.heartbeats++
		if err := r.send(fmt.Sprintf("HEARTBEAT %d", r.heartbeats)); err != nil {
			glog.Warningf("heartbeat: %v", err)
		} else if r.connected {
			r.publish("Bridge active - Last robot response: "+r.lastResponse, true)
		}
	}
	if !now.Before(r.nextStatusLog) {
		r.nextStatusLog = now.Add(r.conf.StatusLogPeriod)
		status := "Disconnected"
		if r.connected {
			status = fmt.Sprintf("Connected (%d)", r.conns.Len())
		}
		glog.Infof("Status: %s, Last command: %q, Last response: %q", status, r.lastCommand, r.lastResponse)
	}
	if r.connected {
		r.nextBlink = now.Add(r.conf.BlinkPeriod)
	} else if !now.Before(r.nextBlink) {
		r.nextBlink = now.Add(r.conf.BlinkPeriod)
		r.indicator.Set(!r.indicator.IsOn())
	}
}
