// Package env identifies a linebot node to the outside world.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// AppID salts the machine ID so the raw ID never leaves the host.
const AppID = "linebot"

// Node types.
const (
	TypeRobot  = "robot"
	TypeBridge = "bridge"
)

// NodeRef is a reference to a node.
type NodeRef struct {
	// Type is the node type, TypeRobot or TypeBridge.
	Type string `json:"type"`
	// ID is unique ID of the device.
	ID string `json:"id"`
}

// Name retrieves the name from ref.
func (r NodeRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates NodeRef is valid.
func (r NodeRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// NodeMeta provides metadata for a node.
type NodeMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// NodeInfo provides information of a node.
type NodeInfo struct {
	NodeRef
	Meta NodeMeta `json:"meta"`
}

// MachineID retrieves the ID identifying the machine, hashed with AppID.
// The hostname is used when the platform offers no machine ID.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}

// NewNodeRef creates a NodeRef of typ. ID is taken from LINEBOT_ID if set,
// otherwise from MachineID.
func NewNodeRef(typ string) NodeRef {
	id := os.Getenv("LINEBOT_ID")
	if id == "" {
		id = MachineID()
	}
	return NodeRef{Type: typ, ID: id}
}
