package bridge

import "github.com/golang/glog"

// LogIndicator stands in for the connection LED on hosts without one.
// Changes are logged at verbosity 2.
type LogIndicator struct {
	on bool
}

// Set implements Indicator.
func (l *LogIndicator) Set(on bool) {
	if on != l.on {
		glog.V(2).Infof("indicator %v", on)
	}
	l.on = on
}

// IsOn implements Indicator.
func (l *LogIndicator) IsOn() bool {
	return l.on
}
