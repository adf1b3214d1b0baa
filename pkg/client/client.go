// Package client connects to a bridge the way a wireless client does:
// commands go out as text and every value the bridge publishes comes
// back as a line.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robotalks/linebot/pkg/bridge"
	"github.com/robotalks/linebot/pkg/robot"
)

// DefaultTimeout is the time to wait for the robot's reply.
const DefaultTimeout = 3 * time.Second

// Errors.
var (
	ErrTimeout = errors.New("no reply from robot")
	ErrClosed  = errors.New("connection closed")
)

// Conn is a connection to a bridge.
type Conn interface {
	// Name identifies the bridge.
	Name() string
	// Send writes a command.
	Send(text string) error
	// Recv delivers published values. It is closed with the connection.
	Recv() <-chan string
	Close() error
}

// Dial connects to the bridge at rawURL. ws:// and wss:// URLs connect to
// the websocket endpoint; mqtt://, mqtts://, tcp:// and ssl:// go through
// a broker.
func Dial(ctx context.Context, rawURL string) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws", "wss":
		return DialWebsocket(rawURL)
	case "mqtt", "mqtts", "tcp", "ssl":
		return DialMQTT(ctx, rawURL)
	}
	return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
}

// Session sends commands over a Conn and collects the replies.
type Session struct {
	Conn    Conn
	Timeout time.Duration
}

// NewSession creates a Session with DefaultTimeout.
func NewSession(conn Conn) *Session {
	return &Session{Conn: conn, Timeout: DefaultTimeout}
}

// Do sends text and returns the lines published until the robot's reply,
// which is the last line. Periodic reports are collected but do not end
// the wait.
func (s *Session) Do(ctx context.Context, text string) ([]string, error) {
	recv := s.Conn.Recv()
drain:
	for {
		select {
		case _, ok := <-recv:
			if !ok {
				return nil, ErrClosed
			}
		default:
			break drain
		}
	}
	if err := s.Conn.Send(text); err != nil {
		return nil, err
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	var lines []string
	for {
		select {
		case <-ctx.Done():
			return lines, ctx.Err()
		case <-timer.C:
			return lines, ErrTimeout
		case line, ok := <-recv:
			if !ok {
				return lines, ErrClosed
			}
			lines = append(lines, line)
			if strings.HasPrefix(line, "Error sending to robot") {
				return lines, errors.New(line)
			}
			if IsReply(line) && Answers(text, Reply(line)) {
				return lines, nil
			}
		}
	}
}

// IsReply indicates line carries a reply from the robot rather than a
// bridge message or a periodic report.
func IsReply(line string) bool {
	if !strings.HasPrefix(line, bridge.RobotPrefix) {
		return false
	}
	return !strings.HasPrefix(line[len(bridge.RobotPrefix):], "AUTO:")
}

// Answers indicates reply can be the robot's answer to command text.
// Heartbeat acks and calibration outcomes also reach clients unsolicited,
// so they only answer the commands producing them.
func Answers(text, reply string) bool {
	fields := strings.Fields(strings.ToUpper(text))
	var name, param string
	if len(fields) > 0 {
		name = fields[0]
	}
	if len(fields) > 1 {
		param = fields[1]
	}
	switch {
	case strings.HasPrefix(reply, "HEARTBEAT_ACK:"):
		return name == "HEARTBEAT"
	case reply == robot.CalibratedText, reply == robot.ReadyText,
		strings.HasPrefix(reply, "ERROR:CALIBRATION_FAILED"):
		return name == "LINE" && param == "CALIBRATE"
	}
	return true
}

// Reply strips the robot prefix from line.
func Reply(line string) string {
	return strings.TrimPrefix(line, bridge.RobotPrefix)
}
