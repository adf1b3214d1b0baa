// Package mqtt exposes the bridge through a MQTT broker. The bridge
// announces itself under <prefix>bridge/<id>/meta, takes commands from
// .../cmd and publishes its value to .../msg. STATUS lines from the robot
// are also published to .../status as protobuf telemetry.
package mqtt

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/bridge"
	"github.com/robotalks/linebot/pkg/env"
	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/telemetry"
)

// Topics under a node.
const (
	TopicCmd    = "cmd"
	TopicMsg    = "msg"
	TopicMeta   = "meta"
	TopicStatus = "status"
)

// BrokerConn is the connection ID of the broker session. Every client
// behind the broker shares it.
const BrokerConn = "broker"

var defaultURL = ""

func init() {
	if val := os.Getenv("LINEBOT_MQTT_URL"); val != "" {
		defaultURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultURL, "mqtt", defaultURL, "MQTT broker URL, empty to disable")
}

// DefaultURL returns the configured broker URL.
func DefaultURL() string {
	return defaultURL
}

// NodeTopic returns topic under the node.
func NodeTopic(ref env.NodeRef, topic string) string {
	return ref.Name() + "/" + topic
}

// Radio implements bridge.Radio over MQTT.
type Radio struct {
	Queue *Queue
	Info  env.NodeInfo

	metaJSON []byte

	lock      sync.Mutex
	lc        fx.LoopControl
	connected bool
	value     []byte
}

// New creates a Radio connecting to brokerURL. The meta topic is cleared
// by the broker if the bridge goes away without saying goodbye.
func New(brokerURL string, info env.NodeInfo) (*Radio, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+NodeTopic(info.NodeRef, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("linebot:" + info.Name())
	}
	return NewWithQueue(NewQueue(opts, topicPrefix), info), nil
}

// NewWithQueue creates a Radio on an existing Queue.
func NewWithQueue(q *Queue, info env.NodeInfo) *Radio {
	meta, err := json.Marshal(&info)
	if err != nil {
		panic(err)
	}
	r := &Radio{Queue: q, Info: info, metaJSON: meta}
	q.OnConnect = func(*Queue) { r.onConnected() }
	q.OnDisconnect = func(*Queue) { r.onDisconnected() }
	return r
}

// Name implements bridge.Radio.
func (r *Radio) Name() string {
	return "mqtt"
}

// Run implements bridge.Radio.
func (r *Radio) Run(ctx context.Context) error {
	r.lock.Lock()
	r.lc = fx.LoopCtlFrom(ctx)
	r.lock.Unlock()

	sub := r.Queue.Sub(NodeTopic(r.Info.NodeRef, TopicCmd), r.onCommand)
	defer sub.Close()
	if err := r.Queue.Connect(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	glog.Infof("mqtt radio serving %s", r.Info.Name())
	<-ctx.Done()
	Wait(r.Queue.PubWith(NodeTopic(r.Info.NodeRef, TopicMeta), nil, 1, true))
	r.Queue.Close()
	return nil
}

func (r *Radio) post(ev *bridge.RadioEvent) {
	r.lock.Lock()
	lc := r.lc
	r.lock.Unlock()
	if lc != nil {
		bridge.PostEvent(lc, ev)
	}
}

func (r *Radio) onConnected() {
	r.lock.Lock()
	r.connected = true
	value := r.value
	r.lock.Unlock()
	r.post(&bridge.RadioEvent{Kind: bridge.Connected, Radio: r, Conn: BrokerConn})
	r.announce()
	if value != nil {
		r.Queue.PubWith(NodeTopic(r.Info.NodeRef, TopicMsg), value, 0, true)
	}
}

func (r *Radio) onDisconnected() {
	r.lock.Lock()
	r.connected = false
	r.lock.Unlock()
	r.post(&bridge.RadioEvent{Kind: bridge.Disconnected, Radio: r, Conn: BrokerConn})
}

func (r *Radio) onCommand(topic string, payload []byte) {
	r.post(&bridge.RadioEvent{
		Kind:  bridge.Written,
		Radio: r,
		Conn:  BrokerConn,
		Data:  append([]byte(nil), payload...),
	})
}

func (r *Radio) announce() paho.Token {
	return r.Queue.PubWith(NodeTopic(r.Info.NodeRef, TopicMeta), r.metaJSON, 1, true)
}

// Advertise implements bridge.Radio by republishing the node meta.
func (r *Radio) Advertise() error {
	r.lock.Lock()
	connected := r.connected
	r.lock.Unlock()
	if !connected {
		return nil
	}
	return Wait(r.announce())
}

// Publish implements bridge.Radio. The value is published retained only
// when the broker session is among conns; STATUS lines are additionally
// published as telemetry.
func (r *Radio) Publish(data []byte, conns []string) error {
	r.lock.Lock()
	r.value = append([]byte(nil), data...)
	connected := r.connected
	r.lock.Unlock()
	if !connected || !hasConn(conns, BrokerConn) {
		return nil
	}
	if err := Wait(r.Queue.PubWith(NodeTopic(r.Info.NodeRef, TopicMsg), data, 0, true)); err != nil {
		return err
	}
	status, ok := telemetry.ParseStatus(string(data))
	if !ok {
		return nil
	}
	payload, err := status.Marshal()
	if err != nil {
		return err
	}
	return Wait(r.Queue.PubWith(NodeTopic(r.Info.NodeRef, TopicStatus), payload, 0, false))
}

func hasConn(conns []string, id string) bool {
	for _, conn := range conns {
		if conn == id {
			return true
		}
	}
	return false
}
