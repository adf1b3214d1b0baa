package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/golang/glog"

	bridgemq "github.com/robotalks/linebot/pkg/bridge/mqtt"
	"github.com/robotalks/linebot/pkg/env"
)

type mqttConn struct {
	queue *bridgemq.Queue
	node  env.NodeRef
	sub   *bridgemq.Subscription

	lock   sync.Mutex
	closed bool
	recv   chan string
}

// DialMQTT connects to a bridge through a broker. The bridge is selected
// by the "node" query parameter, like ?node=bridge/ID, or discovered when
// the parameter is absent.
func DialMQTT(ctx context.Context, rawURL string) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q, err := bridgemq.NewQueueFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	return connectMQTT(ctx, q, u.Query().Get("node"))
}

func connectMQTT(ctx context.Context, q *bridgemq.Queue, node string) (Conn, error) {
	c := &mqttConn{queue: q, recv: make(chan string, 64)}
	if node != "" {
		items := strings.SplitN(node, "/", 2)
		if len(items) != 2 {
			return nil, fmt.Errorf("invalid node %q, expect TYPE/ID", node)
		}
		c.node = env.NodeRef{Type: items[0], ID: items[1]}
		if err := q.Connect(); err != nil {
			return nil, err
		}
	} else {
		nodes, err := bridgemq.Discover(ctx, q, 0)
		if err != nil {
			q.Close()
			return nil, err
		}
		for _, info := range nodes {
			if info.Type == env.TypeBridge {
				c.node = info.NodeRef
				break
			}
		}
		if !c.node.IsValid() {
			q.Close()
			return nil, fmt.Errorf("no bridge discovered")
		}
	}
	c.sub = q.Sub(bridgemq.NodeTopic(c.node, bridgemq.TopicMsg), c.receive)
	return c, nil
}

func (c *mqttConn) receive(topic string, payload []byte) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return
	}
	select {
	case c.recv <- string(payload):
	default:
		glog.Warningf("%s: receive queue full, dropped %q", c.node.Name(), payload)
	}
}

func (c *mqttConn) Name() string {
	return c.node.Name()
}

func (c *mqttConn) Send(text string) error {
	return bridgemq.Wait(c.queue.Pub(bridgemq.NodeTopic(c.node, bridgemq.TopicCmd), []byte(text)))
}

func (c *mqttConn) Recv() <-chan string {
	return c.recv
}

func (c *mqttConn) Close() error {
	c.sub.Close()
	c.queue.Close()
	c.lock.Lock()
	if !c.closed {
		c.closed = true
		close(c.recv)
	}
	c.lock.Unlock()
	return nil
}
