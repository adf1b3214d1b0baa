package env

import (
	"flag"
	"fmt"
)

// Config identifies the node of a program.
type Config struct {
	Info NodeInfo
}

var defaultConfig Config

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.ID, "id", defaultConfig.Info.ID, "Node ID, defaults to $LINEBOT_ID or the machine ID")
	flag.StringVar(&defaultConfig.Info.Meta.Description, "description", defaultConfig.Info.Meta.Description, "Node description")
}

// SetNodeType should be called in init with basic info about the node.
func SetNodeType(typ string, meta NodeMeta) {
	defaultConfig.Info.NodeRef = NewNodeRef(typ)
	defaultConfig.Info.Meta = meta
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the node is identified.
func (c *Config) Validate() error {
	if !c.Info.IsValid() {
		return fmt.Errorf("node type and id must be specified")
	}
	return nil
}
