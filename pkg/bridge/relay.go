// Package bridge implements the wireless-bridge node. It relays command
// text from wireless clients to the robot over the serial link, and the
// robot's lines back to the clients as notifications.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
)

// Texts published by the bridge itself.
const (
	ReadyText     = "Robot Bridge Ready"
	RobotPrefix   = "Robot: "
	NoCommandText = "No commands received yet"
	NoReplyText   = "No response from robot yet"
)

// Indicator is the connection LED of the bridge.
type Indicator interface {
	Set(on bool)
	IsOn() bool
}

// Relay owns the connections and both relay directions. All fields are
// mutated on the loop goroutine only; radios and the serial reader hand
// their input over as loop messages.
type Relay struct {
	conf      Config
	port      io.Writer
	indicator Indicator
	radios    []Radio

	codec        *link.Codec
	conns        ConnectionSet
	connected    bool
	lastCommand  string
	lastResponse string
	value        string

	started       bool
	heartbeats    int
	nextHeartbeat time.Time
	nextStatusLog time.Time
	nextBlink     time.Time
}

// NewRelay creates a Relay writing commands to port.
func NewRelay(conf *Config, port io.Writer, indicator Indicator, radios ...Radio) *Relay {
	return &Relay{
		conf:         *conf,
		port:         port,
		indicator:    indicator,
		radios:       radios,
		codec:        link.NewCodec(),
		conns:        make(ConnectionSet),
		lastCommand:  NoCommandText,
		lastResponse: NoReplyText,
	}
}

// Connected indicates at least one client is connected.
func (r *Relay) Connected() bool {
	return r.connected
}

// Conns returns the connections of a radio.
func (r *Relay) Conns(radio string) []string {
	return r.conns.Of(radio)
}

// LastCommand returns the last command relayed to the robot.
func (r *Relay) LastCommand() string {
	return r.lastCommand
}

// LastResponse returns the last line received from the robot.
func (r *Relay) LastResponse() string {
	return r.lastResponse
}

// Value returns the last published value.
func (r *Relay) Value() string {
	return r.value
}

// AddToLoop implements framework.LoopAdder.
func (r *Relay) AddToLoop(loop *fx.Loop) {
	for _, radio := range r.radios {
		loop.AddRunnable(radio)
	}
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		var msgs []fx.Message
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			switch msg := mc.CurrentMessage().(type) {
			case *RadioEvent, *link.Chunk:
				msgs = append(msgs, msg)
				mc.MessageTaken()
			}
		}))
		r.relay(cc.Time(), msgs)
		return nil
	}))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(func(cc fx.ControlContext) error {
		r.heartbeat(cc.Time())
		return nil
	}))
}

// Cycle runs one loop cycle at now with the messages received since the
// previous one.
func (r *Relay) Cycle(now time.Time, msgs ...fx.Message) {
	r.relay(now, msgs)
	r.heartbeat(now)
}

// Fail blinks the indicator rapidly until ctx is done. The relay is
// dead afterwards.
func (r *Relay) Fail(ctx context.Context, err error) {
	glog.Errorf("bridge failed: %v", err)
	ticker := time.NewTicker(r.conf.FatalBlinkPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.indicator.Set(!r.indicator.IsOn())
		}
	}
}

func (r *Relay) relay(now time.Time, msgs []fx.Message) {
	if !r.started {
		r.start(now)
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case *RadioEvent:
			r.handleEvent(m)
		case *link.Chunk:
			r.receive(m.Data)
		}
	}
}

func (r *Relay) start(now time.Time) {
	r.started = true
	r.nextHeartbeat = now.Add(r.conf.HeartbeatPeriod)
	r.nextStatusLog = now.Add(r.conf.StatusLogPeriod)
	r.nextBlink = now.Add(r.conf.BlinkPeriod)
	r.publish(ReadyText, false)
	glog.Info("sending initial ping to robot")
	if err := r.send("PING"); err != nil {
		glog.Warningf("initial ping: %v", err)
	}
}

func (r *Relay) handleEvent(ev *RadioEvent) {
	name := ev.Radio.Name()
	switch ev.Kind {
	case Connected:
		r.conns.Add(name, ev.Conn)
		r.connected = true
		r.indicator.Set(true)
		glog.Infof("%s: %s connected", name, ev.Conn)
	case Disconnected:
		r.conns.Remove(name, ev.Conn)
		r.connected = r.conns.Len() > 0
		if !r.connected {
			r.indicator.Set(false)
		}
		glog.Infof("%s: %s disconnected", name, ev.Conn)
		if err := ev.Radio.Advertise(); err != nil {
			glog.Warningf("%s: advertise: %v", name, err)
		}
	case Written:
		if !utf8.Valid(ev.Data) {
			glog.Warningf("%s: %s wrote undecodable data %q", name, ev.Conn, ev.Data)
			return
		}
		r.command(string(ev.Data))
	}
}

// command forwards text written by a client to the robot verbatim.
func (r *Relay) command(text string) {
	r.lastCommand = text
	glog.V(2).Infof("command %q", text)
	if err := r.send(text); err != nil {
		glog.Warningf("send to robot: %v", err)
		r.publish(fmt.Sprintf("Error sending to robot: %v", err), true)
		return
	}
	r.publish(fmt.Sprintf("Command '%s' sent to robot", strings.TrimSpace(text)), true)
}

func (r *Relay) send(text string) error {
	_, err := io.WriteString(r.port, link.Line(text))
	return err
}

func (r *Relay) receive(data []byte) {
	if err := r.codec.Ingest(data); err != nil {
		glog.Warningf("serial receive: %v", err)
	}
	for {
		line, ok, err := r.codec.Next()
		if errors.Is(err, link.ErrOverflow) {
			glog.Warningf("serial receive: %v", err)
			continue
		}
		if err != nil {
			glog.Warningf("serial receive: %v, buffer discarded", err)
			return
		}
		if !ok {
			return
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		r.lastResponse = line
		glog.V(2).Infof("robot %q", line)
		if r.connected {
			r.publish(RobotPrefix+line, true)
		}
	}
}

// publish sets the readable value of every radio, notifying the
// connections if notify is set.
func (r *Relay) publish(text string, notify bool) {
	r.value = text
	var errs fx.AggregatedError
	for _, radio := range r.radios {
		var conns []string
		if notify {
			conns = r.conns.Of(radio.Name())
		}
		if err := radio.Publish([]byte(text), conns); err != nil {
			errs.Add(fmt.Errorf("%s: %w", radio.Name(), err))
		}
	}
	if err := errs.Aggregate(); err != nil {
		glog.Warningf("publish %q: %v", text, err)
	}
}
