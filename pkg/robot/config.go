package robot

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config tunes the robot-control node.
type Config struct {
	// Interval is the post-work delay of the control loop.
	Interval time.Duration
	// StatusPeriod is the period of AUTO: status reports.
	StatusPeriod time.Duration
	// ResumeDelay is how long STOP pauses line following before resuming.
	ResumeDelay time.Duration

	CalibrationSpeed   int
	CalibrationSamples int
	CalibrationPause   time.Duration
	// SamplesPerCycle limits the calibration samples taken per loop cycle.
	SamplesPerCycle int

	// AutoCalibrate runs a calibration sweep at boot.
	AutoCalibrate bool
	// BlockingWaits runs calibration and the stop-then-resume pause inside
	// the command handler, stalling the loop. When false, both proceed
	// across loop cycles and sensing continues meanwhile.
	BlockingWaits bool
	// Sleep is used for blocking waits; defaults to time.Sleep.
	Sleep func(time.Duration) `json:"-"`
}

var defaultConfig = Config{
	Interval:           100 * time.Millisecond,
	StatusPeriod:       60 * time.Second,
	ResumeDelay:        3 * time.Second,
	CalibrationSpeed:   200,
	CalibrationSamples: 100,
	CalibrationPause:   200 * time.Millisecond,
	SamplesPerCycle:    5,
	AutoCalibrate:      true,
}

func init() {
	if val := os.Getenv("LINEBOT_BLOCKING_WAITS"); val != "" {
		if on, err := strconv.ParseBool(val); err == nil {
			defaultConfig.BlockingWaits = on
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Control loop delay")
	flag.DurationVar(&defaultConfig.StatusPeriod, "status-period", defaultConfig.StatusPeriod, "Period of AUTO status reports")
	flag.IntVar(&defaultConfig.CalibrationSamples, "calibration-samples", defaultConfig.CalibrationSamples, "Line sensor calibration samples")
	flag.BoolVar(&defaultConfig.AutoCalibrate, "auto-calibrate", defaultConfig.AutoCalibrate, "Calibrate line sensors at boot")
	flag.BoolVar(&defaultConfig.BlockingWaits, "blocking-waits", defaultConfig.BlockingWaits, "Block the control loop during calibration and stop-then-resume")
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

func (c *Config) sleep(d time.Duration) {
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}
