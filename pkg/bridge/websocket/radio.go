// Package websocket exposes the bridge to clients over websocket. Every
// text message received is a command; notifications are sent back as
// text messages.
package websocket

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/linebot/pkg/bridge"
	fx "github.com/robotalks/linebot/pkg/framework"
)

// Path is the websocket endpoint.
const Path = "/ws"

const sendTimeout = time.Second

var defaultAddr = ""

func init() {
	if val := os.Getenv("LINEBOT_WS_ADDR"); val != "" {
		defaultAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultAddr, "ws", defaultAddr, "Websocket listen address, empty to disable")
}

// DefaultAddr returns the configured listen address.
func DefaultAddr() string {
	return defaultAddr
}

// Radio implements bridge.Radio over websocket.
type Radio struct {
	Addr string
	// Listener is used instead of listening on Addr if set.
	Listener net.Listener

	lock  sync.Mutex
	conns map[string]*websocket.Conn
	value []byte
}

// New creates a Radio listening on addr.
func New(addr string) *Radio {
	return &Radio{Addr: addr}
}

// Name implements bridge.Radio.
func (r *Radio) Name() string {
	return "websocket"
}

type closeFunc func() error

func (f closeFunc) Close() error {
	return f()
}

// Run implements bridge.Radio.
func (r *Radio) Run(ctx context.Context) error {
	lc := fx.LoopCtlFrom(ctx)
	ln := r.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", r.Addr); err != nil {
			return fmt.Errorf("websocket listen: %w", err)
		}
	}
	glog.Infof("websocket radio listening on %s%s", ln.Addr(), Path)
	mux := http.NewServeMux()
	mux.Handle(Path, websocket.Handler(func(ws *websocket.Conn) {
		r.serve(lc, ws)
	}))
	server := &http.Server{Handler: mux}
	closer := closeFunc(func() error {
		err := server.Close()
		r.lock.Lock()
		for _, ws := range r.conns {
			ws.Close()
		}
		r.lock.Unlock()
		return err
	})
	return fx.RunWithContextCloser(ctx, closer, func() error {
		if err := server.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func (r *Radio) serve(lc fx.LoopControl, ws *websocket.Conn) {
	id := ws.Request().RemoteAddr
	r.lock.Lock()
	if r.conns == nil {
		r.conns = make(map[string]*websocket.Conn)
	}
	r.conns[id] = ws
	value := r.value
	r.lock.Unlock()

	bridge.PostEvent(lc, &bridge.RadioEvent{Kind: bridge.Connected, Radio: r, Conn: id})
	if value != nil {
		r.send(ws, value)
	}
	for {
		var text string
		if err := websocket.Message.Receive(ws, &text); err != nil {
			glog.V(2).Infof("websocket %s: %v", id, err)
			break
		}
		bridge.PostEvent(lc, &bridge.RadioEvent{Kind: bridge.Written, Radio: r, Conn: id, Data: []byte(text)})
	}

	r.lock.Lock()
	delete(r.conns, id)
	r.lock.Unlock()
	ws.Close()
	bridge.PostEvent(lc, &bridge.RadioEvent{Kind: bridge.Disconnected, Radio: r, Conn: id})
}

func (r *Radio) send(ws *websocket.Conn, data []byte) error {
	ws.SetWriteDeadline(time.Now().Add(sendTimeout))
	return websocket.Message.Send(ws, string(data))
}

// Advertise implements bridge.Radio. The listener keeps accepting
// connections, so there is nothing to do.
func (r *Radio) Advertise() error {
	return nil
}

// Publish implements bridge.Radio.
func (r *Radio) Publish(data []byte, conns []string) error {
	r.lock.Lock()
	r.value = append([]byte(nil), data...)
	targets := make(map[string]*websocket.Conn, len(conns))
	for _, id := range conns {
		if ws := r.conns[id]; ws != nil {
			targets[id] = ws
		}
	}
	r.lock.Unlock()

	var errs fx.AggregatedError
	for id, ws := range targets {
		if err := r.send(ws, data); err != nil {
			errs.Add(fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs.Aggregate()
}
