package robot

import "fmt"

// Mode is the motion mode of the robot.
type Mode int

// Modes.
const (
	ModeStopped Mode = iota
	ModeManual
	ModeLineFollowing
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "MANUAL"
	case ModeLineFollowing:
		return "LINE_FOLLOWING"
	case ModeStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// short is the mode as shown on the display.
func (m Mode) short() string {
	if m == ModeLineFollowing {
		return "LINE"
	}
	return m.String()
}

// SpeedLevels maps a speed level to the wheel speed magnitude.
var SpeedLevels = map[int]int{
	1: 1000,
	2: 1250,
	3: 1500,
}

// State is the volatile state of the robot. It is owned by the loop
// goroutine and lost on restart.
type State struct {
	Mode             Mode
	SpeedLevel       int
	Calibrated       bool
	CollisionLatched bool
	// PrevLineError is the line error of the previous follow cycle.
	PrevLineError int
}

// InitialState is the state at power-up.
func InitialState() State {
	return State{Mode: ModeStopped, SpeedLevel: 1}
}

// Speed returns the wheel speed magnitude of the current level.
func (s State) Speed() int {
	return SpeedLevels[s.SpeedLevel]
}
