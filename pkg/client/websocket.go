package client

import (
	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

type websocketConn struct {
	url  string
	ws   *websocket.Conn
	recv chan string
}

// DialWebsocket connects to the websocket endpoint of a bridge.
func DialWebsocket(url string) (Conn, error) {
	ws, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	c := &websocketConn{url: url, ws: ws, recv: make(chan string, 64)}
	go c.receive()
	return c, nil
}

func (c *websocketConn) receive() {
	defer close(c.recv)
	for {
		var text string
		if err := websocket.Message.Receive(c.ws, &text); err != nil {
			glog.V(2).Infof("websocket %s: %v", c.url, err)
			return
		}
		c.recv <- text
	}
}

func (c *websocketConn) Name() string {
	return c.url
}

func (c *websocketConn) Send(text string) error {
	return websocket.Message.Send(c.ws, text)
}

func (c *websocketConn) Recv() <-chan string {
	return c.recv
}

func (c *websocketConn) Close() error {
	return c.ws.Close()
}
