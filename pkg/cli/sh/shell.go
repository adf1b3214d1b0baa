// Package sh is the interactive shell of robocli.
package sh

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	bridgemq "github.com/robotalks/linebot/pkg/bridge/mqtt"
	"github.com/robotalks/linebot/pkg/client"
	"github.com/robotalks/linebot/pkg/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration
	URL         string

	Shell   *ishell.Shell
	Session *client.Session
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "

	calibrateTimeout = 30 * time.Second
)

// flags
var (
	evalOnly   bool
	outputJSON bool
)

var (
	timeout   = client.DefaultTimeout
	bridgeURL = "ws://localhost:8080/ws"
)

func init() {
	if val := os.Getenv("LINEBOT_URL"); val != "" {
		bridgeURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print status in JSON.")
	flag.DurationVar(&timeout, "timeout", timeout, "Time to wait for the robot's reply.")
	flag.StringVar(&bridgeURL, "url", bridgeURL, "Bridge URL, ws://HOST:PORT/ws or mqtt://BROKER/PREFIX[?node=bridge/ID].")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,
		URL:         bridgeURL,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands() {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Connect connects the bridge at url.
func (s *Shell) Connect(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := client.Dial(ctx, url)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Session = client.NewSession(conn)
	s.Session.Timeout = s.Timeout
	s.URL = url
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.Name()))
	return nil
}

// Disconnect disconnects current bridge.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Conn.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Discover lists the bridges announced on the broker at url.
func (s *Shell) Discover(url string) ([]env.NodeInfo, error) {
	q, err := bridgemq.NewQueueFromURL(url)
	if err != nil {
		return nil, err
	}
	defer q.Close()
	return bridgemq.Discover(context.Background(), q, 0)
}

// Do sends text to the robot and prints the replies.
func (s *Shell) Do(c *ishell.Context, text string, wait time.Duration) error {
	if s.Session == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if wait > s.Session.Timeout {
		saved := s.Session.Timeout
		s.Session.Timeout = wait
		defer func() { s.Session.Timeout = saved }()
	}
	lines, err := s.Session.Do(context.Background(), text)
	for _, line := range lines {
		if !client.IsReply(line) {
			glog.V(1).Info(line)
			continue
		}
		out, ferr := FormatReply(line, s.OutputJSON)
		if ferr != nil {
			c.Err(ferr)
			continue
		}
		c.Println(out)
	}
	if err != nil {
		c.Err(err)
	}
	return err
}

// Run runs the shell.
func (s *Shell) Run(args ...string) error {
	if s.URL != "" {
		if err := s.Connect(s.URL); err != nil {
			return fmt.Errorf("connect %s: %w", s.URL, err)
		}
		defer s.Disconnect()
	}
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	if err := New().Run(flag.Args()...); err != nil {
		glog.Exit(err)
	}
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
