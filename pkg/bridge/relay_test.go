package bridge

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot/hw/sim"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	text  string
	conns []string
}

type fakeRadio struct {
	name       string
	published  []published
	advertised int
	err        error
}

func (f *fakeRadio) Name() string { return f.name }

func (f *fakeRadio) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRadio) Advertise() error {
	f.advertised++
	return nil
}

func (f *fakeRadio) Publish(data []byte, conns []string) error {
	f.published = append(f.published, published{text: string(data), conns: conns})
	return f.err
}

// take returns the values published since the last call.
func (f *fakeRadio) take() []published {
	p := f.published
	f.published = nil
	return p
}

type brokenPort struct{}

func (brokenPort) Write([]byte) (int, error) {
	return 0, errors.New("port closed")
}

type relayFixture struct {
	radio *fakeRadio
	led   sim.Light
	port  bytes.Buffer
	relay *Relay
}

func newRelayFixture() *relayFixture {
	f := &relayFixture{radio: &fakeRadio{name: "ble"}}
	f.relay = NewRelay(NewConfig(), &f.port, &f.led, f.radio)
	f.relay.Cycle(t0)
	return f
}

func (f *relayFixture) sent() string {
	s := f.port.String()
	f.port.Reset()
	return s
}

func (f *relayFixture) event(kind EventKind, conn, data string) *RadioEvent {
	ev := &RadioEvent{Kind: kind, Radio: f.radio, Conn: conn}
	if data != "" {
		ev.Data = []byte(data)
	}
	return ev
}

func TestRelayStart(t *testing.T) {
	f := newRelayFixture()
	require.Equal(t, "PING\n", f.sent())
	require.Equal(t, []published{{text: ReadyText}}, f.radio.take())
	require.False(t, f.relay.Connected())
	require.Equal(t, NoCommandText, f.relay.LastCommand())
	require.Equal(t, NoReplyText, f.relay.LastResponse())

	f.relay.Cycle(t0.Add(time.Second))
	require.Empty(t, f.sent())
}

func TestRelayCommands(t *testing.T) {
	f := newRelayFixture()
	f.sent()
	f.radio.take()

	f.relay.Cycle(t0, f.event(Connected, "c1", ""))
	require.True(t, f.relay.Connected())
	require.True(t, f.led.On)
	require.Equal(t, []string{"c1"}, f.relay.Conns("ble"))

	testCases := []struct {
		written string
		sent    string
		ack     string
	}{
		{written: "forward", sent: "forward\n", ack: "Command 'forward' sent to robot"},
		{written: "SPEED 2\n", sent: "SPEED 2\n", ack: "Command 'SPEED 2' sent to robot"},
		{written: "  line start ", sent: "  line start \n", ack: "Command 'line start' sent to robot"},
	}
	for _, tc := range testCases {
		t.Run(tc.written, func(t *testing.T) {
			f.relay.Cycle(t0, f.event(Written, "c1", tc.written))
			require.Equal(t, tc.sent, f.sent())
			require.Equal(t, tc.written, f.relay.LastCommand())
			require.Equal(t, []published{{text: tc.ack, conns: []string{"c1"}}}, f.radio.take())
			require.Equal(t, tc.ack, f.relay.Value())
		})
	}

	f.relay.Cycle(t0, f.event(Written, "c1", "ST\xffOP"))
	require.Empty(t, f.sent())
	require.Empty(t, f.radio.take())
}

func TestRelayResponses(t *testing.T) {
	f := newRelayFixture()
	f.radio.take()
	f.relay.Cycle(t0, f.event(Connected, "c1", ""), f.event(Connected, "c2", ""))

	f.relay.Cycle(t0, &link.Chunk{Data: []byte("MOVING:FORWARD at speed 1000\r\nPO")})
	require.Equal(t, []published{{text: "Robot: MOVING:FORWARD at speed 1000", conns: []string{"c1", "c2"}}}, f.radio.take())
	f.relay.Cycle(t0, &link.Chunk{Data: []byte("NG\n\n")})
	require.Equal(t, []published{{text: "Robot: PONG", conns: []string{"c1", "c2"}}}, f.radio.take())
	require.Equal(t, "PONG", f.relay.LastResponse())
	require.Equal(t, "Robot: PONG", f.relay.Value())

	f.relay.Cycle(t0, f.event(Disconnected, "c1", ""))
	require.True(t, f.relay.Connected())
	require.True(t, f.led.On)
	f.relay.Cycle(t0, f.event(Disconnected, "c2", ""))
	require.False(t, f.relay.Connected())
	require.False(t, f.led.On)
	require.Equal(t, 2, f.radio.advertised)

	f.relay.Cycle(t0, &link.Chunk{Data: []byte("AUTO:STATUS:OK\n")})
	require.Empty(t, f.radio.take())
	require.Equal(t, "AUTO:STATUS:OK", f.relay.LastResponse())
}

func TestRelayMultipleRadios(t *testing.T) {
	ble, ws := &fakeRadio{name: "ble"}, &fakeRadio{name: "ws", err: errors.New("offline")}
	var led sim.Light
	var port bytes.Buffer
	relay := NewRelay(NewConfig(), &port, &led, ble, ws)
	relay.Cycle(t0, &RadioEvent{Kind: Connected, Radio: ws, Conn: "10.0.0.2:5000"})
	ble.take()
	ws.take()

	relay.Cycle(t0, &RadioEvent{Kind: Written, Radio: ws, Conn: "10.0.0.2:5000", Data: []byte("PING")})
	require.Equal(t, []published{{text: "Command 'PING' sent to robot", conns: []string{}}}, ble.take())
	require.Equal(t, []published{{text: "Command 'PING' sent to robot", conns: []string{"10.0.0.2:5000"}}}, ws.take())
}

func TestRelaySendFailure(t *testing.T) {
	radio := &fakeRadio{name: "ble"}
	var led sim.Light
	relay := NewRelay(NewConfig(), brokenPort{}, &led, radio)
	relay.Cycle(t0, &RadioEvent{Kind: Connected, Radio: radio, Conn: "c1"})
	radio.take()
	relay.Cycle(t0, &RadioEvent{Kind: Written, Radio: radio, Conn: "c1", Data: []byte("FORWARD")})
	require.Equal(t, []published{{text: "Error sending to robot: port closed", conns: []string{"c1"}}}, radio.take())
	require.Equal(t, "FORWARD", relay.LastCommand())
}

func TestRelayHeartbeat(t *testing.T) {
	f := newRelayFixture()
	f.sent()
	f.relay.Cycle(t0.Add(29*time.Second))
	require.Empty(t, f.sent())
	f.relay.Cycle(t0.Add(30 * time.Second))
	require.Equal(t, "HEARTBEAT 1\n", f.sent())

	f.relay.Cycle(t0.Add(31*time.Second), f.event(Connected, "c1", ""), &link.Chunk{Data: []byte("HEARTBEAT_ACK:1\n")})
	f.radio.take()
	f.relay.Cycle(t0.Add(60 * time.Second))
	require.Equal(t, "HEARTBEAT 2\n", f.sent())
	require.Equal(t, []published{{
		text:  "Bridge active - Last robot response: HEARTBEAT_ACK:1",
		conns: []string{"c1"},
	}}, f.radio.take())
}

func TestRelayIndicator(t *testing.T) {
	f := newRelayFixture()
	require.False(t, f.led.On)
	f.relay.Cycle(t0.Add(time.Second))
	require.False(t, f.led.On)
	f.relay.Cycle(t0.Add(2 * time.Second))
	require.True(t, f.led.On)
	f.relay.Cycle(t0.Add(3 * time.Second))
	require.True(t, f.led.On)
	f.relay.Cycle(t0.Add(4 * time.Second))
	require.False(t, f.led.On)

	f.relay.Cycle(t0.Add(5*time.Second), f.event(Connected, "c1", ""))
	for i := 6; i < 12; i++ {
		f.relay.Cycle(t0.Add(time.Duration(i) * time.Second))
		require.True(t, f.led.On)
	}
}

func TestRelayFail(t *testing.T) {
	f := newRelayFixture()
	f.relay.conf.FatalBlinkPeriod = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	f.relay.Fail(ctx, errors.New("loop panic"))
	require.GreaterOrEqual(t, f.led.Changes, 4)
}

func TestRelayInLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	radio := &fakeRadio{name: "ble"}
	var led sim.Light
	bridgeEnd, robotEnd := link.Pipe()
	conf := NewConfig()
	conf.Interval = 10 * time.Millisecond
	relay := NewRelay(conf, bridgeEnd, &led, radio)

	loop := fx.NewLoop()
	loop.Interval = conf.Interval
	loop.Add(relay)
	loop.AddRunnable(&link.Reader{Port: bridgeEnd, Wake: true})
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(ctx)
	}()

	buf := make([]byte, 5)
	_, err := robotEnd.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "PING\n", string(buf))

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}
