package robot

import (
	"fmt"

	"github.com/golang/glog"
)

const displayCollisionRow = 5

func (n *Node) show(rows ...string) {
	if err := n.hw.Display.Show(rows); err != nil {
		glog.Warningf("display: %v", err)
	}
}

// showUpdate shows the title and message of a command with the mode.
func (n *Node) showUpdate(title, message string) {
	rows := make([]string, displayCollisionRow+1)
	rows[0] = "BLE Control"
	rows[1] = title
	rows[2] = message
	rows[3] = "Mode: " + n.state.Mode.short()
	if n.state.CollisionLatched {
		rows[displayCollisionRow] = "!COLLISION!"
	} else {
		rows = rows[:4]
	}
	n.show(rows...)
}

func (n *Node) speedMessage() string {
	return fmt.Sprintf("Speed: %d", n.state.Speed())
}
