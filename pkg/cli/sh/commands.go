package sh

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/linebot/pkg/client"
	"github.com/robotalks/linebot/pkg/telemetry"
)

// CommandText converts a shell command into the command line sent to
// the robot.
func CommandText(name string, args []string) (string, error) {
	switch name {
	case "ping", "status", "forward", "backward", "left", "right", "stop":
		return strings.ToUpper(name), nil
	case "speed":
		if len(args) != 1 {
			return "", fmt.Errorf("LEVEL required")
		}
		if level, err := strconv.Atoi(args[0]); err != nil || level < 1 || level > 3 {
			return "", fmt.Errorf("invalid LEVEL %q, expect 1, 2 or 3", args[0])
		}
		return "SPEED " + args[0], nil
	case "line":
		if len(args) == 0 {
			return "LINE", nil
		}
		action := strings.ToUpper(args[0])
		switch action {
		case "START", "STOP", "CALIBRATE":
			return "LINE " + action, nil
		}
		return "", fmt.Errorf("invalid action %q, expect start, stop or calibrate", args[0])
	case "heartbeat":
		if len(args) != 1 {
			return "", fmt.Errorf("COUNT required")
		}
		return "HEARTBEAT " + args[0], nil
	case "send":
		if len(args) == 0 {
			return "", fmt.Errorf("TEXT required")
		}
		return joinArgs(args), nil
	}
	return "", fmt.Errorf("unknown command %q", name)
}

// FormatReply renders a robot reply for display. STATUS replies are
// rendered as JSON when asJSON is set.
func FormatReply(line string, asJSON bool) (string, error) {
	reply := client.Reply(line)
	if !asJSON {
		return reply, nil
	}
	status, ok := telemetry.ParseStatus(reply)
	if !ok {
		out, err := json.Marshal(map[string]string{"reply": reply})
		return string(out), err
	}
	st, err := status.Struct()
	if err != nil {
		return "", err
	}
	out, err := telemetry.JSON(st)
	return string(out), err
}

func robotCmd(name, help string, aliases ...string) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: func(c *ishell.Context) {
			text, err := CommandText(name, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			var wait time.Duration
			if text == "LINE CALIBRATE" {
				wait = calibrateTimeout
			}
			ShellFrom(c).Do(c, text, wait)
		},
	}
}

func commands() []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name:    "connect",
			Aliases: []string{"c"},
			Help:    "URL",
			Func: func(c *ishell.Context) {
				s := ShellFrom(c)
				url := s.URL
				if len(c.Args) > 0 {
					url = c.Args[0]
				}
				if err := s.Connect(url); err != nil {
					c.Err(err)
				}
			},
		},
		{
			Name:    "disconnect",
			Aliases: []string{"d"},
			Func: func(c *ishell.Context) {
				ShellFrom(c).Disconnect()
			},
		},
		{
			Name:    "discover",
			Aliases: []string{"list", "l"},
			Help:    "MQTT-URL",
			Func: func(c *ishell.Context) {
				s := ShellFrom(c)
				url := s.URL
				if len(c.Args) > 0 {
					url = c.Args[0]
				}
				nodes, err := s.Discover(url)
				if err != nil {
					c.Err(err)
					return
				}
				if len(nodes) == 0 {
					c.Println("No bridges found")
					return
				}
				for _, info := range nodes {
					line := info.Name()
					if info.Meta.Description != "" {
						line += ": " + info.Meta.Description
					}
					c.Println(line)
				}
			},
		},
		robotCmd("ping", ""),
		robotCmd("status", "", "st"),
		robotCmd("forward", "", "f"),
		robotCmd("backward", "", "b"),
		robotCmd("left", ""),
		robotCmd("right", ""),
		robotCmd("stop", "", "s"),
		robotCmd("speed", "LEVEL(1-3)"),
		robotCmd("line", "[start|stop|calibrate]"),
		robotCmd("heartbeat", "COUNT"),
		robotCmd("send", "TEXT..."),
	}
}
