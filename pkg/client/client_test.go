package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linebot/pkg/bridge"
	"github.com/robotalks/linebot/pkg/bridge/websocket"
	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot"
	"github.com/robotalks/linebot/pkg/robot/hw/sim"
)

type fakeConn struct {
	sent    []string
	replies map[string][]string
	sendErr error
	recv    chan string
}

func newFakeConn(replies map[string][]string) *fakeConn {
	return &fakeConn{replies: replies, recv: make(chan string, 16)}
}

func (c *fakeConn) Name() string { return "fake" }

func (c *fakeConn) Send(text string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	for _, line := range c.replies[text] {
		c.recv <- line
	}
	return nil
}

func (c *fakeConn) Recv() <-chan string { return c.recv }

func (c *fakeConn) Close() error {
	close(c.recv)
	return nil
}

func TestIsReply(t *testing.T) {
	testCases := []struct {
		line  string
		reply bool
	}{
		{"Robot: PONG", true},
		{"Robot: AUTO:STATUS:OK", false},
		{"Command 'PING' sent to robot", false},
		{"Robot Bridge Ready", false},
		{"PONG", false},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			require.Equal(t, tc.reply, IsReply(tc.line))
		})
	}
	require.Equal(t, "PONG", Reply("Robot: PONG"))
}

func TestSessionDo(t *testing.T) {
	conn := newFakeConn(map[string][]string{
		"PING": {
			"Command 'PING' sent to robot",
			"Robot: AUTO:STATUS:OK,BATTERY:90%",
			"Robot: PONG",
		},
		"LEFT":   {"Error sending to robot: broken pipe"},
		"STATUS": {"Command 'STATUS' sent to robot"},
	})
	s := NewSession(conn)
	s.Timeout = 50 * time.Millisecond

	conn.recv <- "stale"
	lines, err := s.Do(context.Background(), "PING")
	require.NoError(t, err)
	require.Equal(t, conn.replies["PING"], lines)

	lines, err = s.Do(context.Background(), "LEFT")
	require.EqualError(t, err, "Error sending to robot: broken pipe")
	require.Len(t, lines, 1)

	lines, err = s.Do(context.Background(), "STATUS")
	require.ErrorIs(t, err, ErrTimeout)
	require.Len(t, lines, 1)

	conn.sendErr = errors.New("gone")
	_, err = s.Do(context.Background(), "PING")
	require.EqualError(t, err, "gone")

	conn.Close()
	_, err = s.Do(context.Background(), "PING")
	require.ErrorIs(t, err, ErrClosed)
}

func TestAnswers(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		reply   string
		answers bool
	}{
		{"plain reply", "PING", "PONG", true},
		{"heartbeat ack to heartbeat", "heartbeat 3", "HEARTBEAT_ACK:3", true},
		{"bridge heartbeat ack", "PING", "HEARTBEAT_ACK:12", false},
		{"calibration outcome", "LINE CALIBRATE", robot.CalibratedText, true},
		{"late calibration outcome", "STATUS", robot.CalibratedText, false},
		{"late calibration fault", "FORWARD", "ERROR:CALIBRATION_FAILED (aborted)", false},
		{"calibration fault", "line calibrate", "ERROR:CALIBRATION_FAILED (aborted)", true},
		{"calibrating", "FORWARD", "ERROR:CALIBRATING", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.answers, Answers(tc.text, tc.reply))
		})
	}
}

func TestSessionSkipsUnsolicited(t *testing.T) {
	conn := newFakeConn(map[string][]string{
		"PING": {
			"Command 'PING' sent to robot",
			"Robot: HEARTBEAT_ACK:7",
			"Robot: " + robot.CalibratedText,
			"Robot: PONG",
		},
	})
	s := NewSession(conn)
	s.Timeout = 50 * time.Millisecond
	lines, err := s.Do(context.Background(), "PING")
	require.NoError(t, err)
	require.Equal(t, conn.replies["PING"], lines)
}

func TestDialUnsupported(t *testing.T) {
	_, err := Dial(context.Background(), "http://localhost")
	require.Error(t, err)
}

// TestEndToEnd drives a simulated robot through the bridge over websocket.
func TestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bridgeEnd, robotEnd := link.Pipe()

	robotConf := robot.NewConfig()
	robotConf.Interval = 5 * time.Millisecond
	robotConf.AutoCalibrate = false
	bot := sim.New()
	node := robot.NewNode(robotConf, bot.Set(), robotEnd)
	robotLoop := fx.NewLoop()
	robotLoop.Interval = robotConf.Interval
	robotLoop.Add(node)
	robotLoop.AddRunnable(&link.Reader{Port: robotEnd, Wake: true})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	bridgeConf := bridge.NewConfig()
	bridgeConf.Interval = 5 * time.Millisecond
	var led sim.Light
	relay := bridge.NewRelay(bridgeConf, bridgeEnd, &led, &websocket.Radio{Listener: ln})
	bridgeLoop := fx.NewLoop()
	bridgeLoop.Interval = bridgeConf.Interval
	bridgeLoop.Add(relay)
	bridgeLoop.AddRunnable(&link.Reader{Port: bridgeEnd, Wake: true})

	runner := fx.NewRunnerWith(ctx).Go(robotLoop, bridgeLoop)

	conn, err := Dial(ctx, "ws://"+ln.Addr().String()+websocket.Path)
	require.NoError(t, err)
	defer conn.Close()
	s := NewSession(conn)

	for _, exchange := range [][2]string{
		{"PING", "PONG"},
		{"SPEED 2", "SPEED_SET:2 (1250)"},
		{"FORWARD", "MOVING:FORWARD at speed 1250"},
		{"STOP", "STOPPED"},
	} {
		lines, err := s.Do(ctx, exchange[0])
		require.NoError(t, err, exchange[0])
		require.Equal(t, exchange[1], Reply(lines[len(lines)-1]))
	}

	runner.Stop()
	require.NoError(t, runner.Wait())
}
