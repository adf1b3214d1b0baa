package mqtt

import (
	"errors"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeMessage struct {
	topic   string
	payload []byte
	retain  bool
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return m.retain }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// fakeClient is an in-memory broker with a single client.
type fakeClient struct {
	onConnect func(paho.Client)
	onLost    func(paho.Client, error)

	lock      sync.Mutex
	connected bool
	subs      map[string]paho.MessageHandler
	routes    map[string]paho.MessageHandler
	retained  map[string][]byte
	published []*fakeMessage
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		subs:     make(map[string]paho.MessageHandler),
		routes:   make(map[string]paho.MessageHandler),
		retained: make(map[string][]byte),
	}
}

func newFakeQueue(prefix string) (*Queue, *fakeClient) {
	fc := newFakeClient()
	q := &Queue{Client: fc, TopicPrefix: prefix}
	fc.onConnect = q.OnConnectHandler
	fc.onLost = q.ConnectionLostHandler
	return q, fc
}

func (c *fakeClient) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.connected
}

func (c *fakeClient) IsConnectionOpen() bool {
	return c.IsConnected()
}

func (c *fakeClient) Connect() paho.Token {
	c.lock.Lock()
	c.connected = true
	c.lock.Unlock()
	if c.onConnect != nil {
		c.onConnect(c)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.lock.Lock()
	c.connected = false
	c.lock.Unlock()
}

func (c *fakeClient) lose() {
	c.Disconnect(0)
	if c.onLost != nil {
		c.onLost(c, errors.New("connection reset"))
	}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	data := payload.([]byte)
	c.lock.Lock()
	c.published = append(c.published, &fakeMessage{topic: topic, payload: data, retain: retained})
	if retained {
		if len(data) == 0 {
			delete(c.retained, topic)
		} else {
			c.retained[topic] = data
		}
	}
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	if callback != nil {
		c.routes[topic] = callback
	} else {
		callback = c.routes[topic]
	}
	c.subs[topic] = callback
	var msgs []*fakeMessage
	for t, payload := range c.retained {
		if MatchTopic(t, topic) {
			msgs = append(msgs, &fakeMessage{topic: t, payload: payload, retain: true})
		}
	}
	c.lock.Unlock()
	for _, msg := range msgs {
		callback(c, msg)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	for filter := range filters {
		c.Subscribe(filter, 0, callback)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	c.lock.Lock()
	for _, topic := range topics {
		delete(c.subs, topic)
		delete(c.routes, topic)
	}
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) AddRoute(topic string, callback paho.MessageHandler) {
	c.lock.Lock()
	c.routes[topic] = callback
	c.lock.Unlock()
}

func (c *fakeClient) OptionsReader() paho.ClientOptionsReader {
	return paho.ClientOptionsReader{}
}

// deliver sends a message from another client of the broker, once per
// matching subscription.
func (c *fakeClient) deliver(topic string, payload []byte) {
	c.lock.Lock()
	var handlers []paho.MessageHandler
	for filter, h := range c.subs {
		if MatchTopic(topic, filter) {
			handlers = append(handlers, h)
		}
	}
	c.lock.Unlock()
	for _, h := range handlers {
		h(c, &fakeMessage{topic: topic, payload: payload})
	}
}

func (c *fakeClient) retainedAt(topic string) ([]byte, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	data, ok := c.retained[topic]
	return data, ok
}

func (c *fakeClient) publishedTo(topic string) (msgs [][]byte) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, msg := range c.published {
		if msg.topic == topic {
			msgs = append(msgs, msg.payload)
		}
	}
	return
}

func (c *fakeClient) subscribed(topic string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	_, ok := c.subs[topic]
	return ok
}
