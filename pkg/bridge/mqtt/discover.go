package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/env"
)

// DefaultDiscoverTimeout defines the default duration of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover collects the nodes announced on the broker within timeout.
// Retained meta messages arrive right after subscribing, so a short
// timeout is usually enough. Nodes whose meta was cleared are skipped.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) ([]env.NodeInfo, error) {
	if timeout == 0 {
		timeout = DefaultDiscoverTimeout
	}
	infoCh := make(chan env.NodeInfo, 16)
	sub := q.Sub("+/+/"+TopicMeta, func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case infoCh <- info:
		case <-time.After(timeout):
		}
	})
	defer sub.Close()
	if !q.Client.IsConnected() {
		if err := q.Connect(); err != nil {
			return nil, err
		}
	}

	var nodes []env.NodeInfo
	deadline := time.After(timeout)
	for {
		select {
		case info := <-infoCh:
			nodes = append(nodes, info)
		case <-deadline:
			return nodes, nil
		case <-ctx.Done():
			return nodes, ctx.Err()
		}
	}
}

func parseMeta(topic string, payload []byte) (info env.NodeInfo, ok bool) {
	levels := strings.Split(topic, "/")
	if len(levels) != 3 || len(payload) == 0 {
		return
	}
	if err := json.Unmarshal(payload, &info); err != nil {
		glog.Warningf("invalid meta on %s: %v", topic, err)
		return
	}
	info.NodeRef = env.NodeRef{Type: levels[0], ID: levels[1]}
	return info, true
}
