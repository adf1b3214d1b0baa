package bridge

import (
	"flag"
	"time"
)

// Config tunes the bridge relay.
type Config struct {
	// Interval is the post-work delay of the bridge loop.
	Interval time.Duration
	// HeartbeatPeriod is the period of HEARTBEAT commands to the robot.
	HeartbeatPeriod time.Duration
	// StatusLogPeriod is the period of the status log line.
	StatusLogPeriod time.Duration
	// BlinkPeriod is the indicator toggle period while disconnected.
	BlinkPeriod time.Duration
	// FatalBlinkPeriod is the indicator toggle period after a fatal error.
	FatalBlinkPeriod time.Duration
}

var defaultConfig = Config{
	Interval:         time.Second,
	HeartbeatPeriod:  30 * time.Second,
	StatusLogPeriod:  10 * time.Second,
	BlinkPeriod:      2 * time.Second,
	FatalBlinkPeriod: 100 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Interval, "bridge-interval", defaultConfig.Interval, "Bridge loop delay")
	flag.DurationVar(&defaultConfig.HeartbeatPeriod, "heartbeat", defaultConfig.HeartbeatPeriod, "Robot heartbeat period")
	flag.DurationVar(&defaultConfig.StatusLogPeriod, "status-log", defaultConfig.StatusLogPeriod, "Status log period")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
