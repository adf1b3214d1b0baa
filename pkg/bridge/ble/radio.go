// Package ble exposes the bridge as a BLE peripheral with the Nordic
// UART service: clients write commands to the RX characteristic and
// subscribe to notifications on the TX characteristic.
package ble

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/bridge"
	fx "github.com/robotalks/linebot/pkg/framework"
)

// DefaultName is the advertised local name.
const DefaultName = "PICO_ROBOT_BRIDGE_2"

// AdvertisedID is the 16-bit service ID included in advertisements.
const AdvertisedID uint16 = 0xFE9F

// Nordic UART service.
const (
	ServiceID = "6E400001-B5A3-F393-E0A9-E50E24DCCA9E"
	RXID      = "6E400002-B5A3-F393-E0A9-E50E24DCCA9E"
	TXID      = "6E400003-B5A3-F393-E0A9-E50E24DCCA9E"
)

var defaultName = DefaultName

func init() {
	if val, ok := os.LookupEnv("LINEBOT_BLE_NAME"); ok {
		defaultName = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultName, "ble", defaultName, "BLE advertised name, empty to disable")
}

// DefaultLocalName returns the configured advertised name.
func DefaultLocalName() string {
	return defaultName
}

// Handlers receive the activity of a Stack. They are called from the
// BLE stack's goroutines.
type Handlers struct {
	Connect func(addr string, connected bool)
	Write   func(data []byte)
}

// Stack is the GATT server side of a BLE adapter.
type Stack interface {
	// Start enables the adapter, registers the UART service with initial
	// as the TX value and starts advertising name.
	Start(name string, initial []byte, h Handlers) error
	// Advertise restarts advertising.
	Advertise() error
	// Notify sets the TX value and notifies subscribed clients.
	Notify(data []byte) error
}

// Radio implements bridge.Radio over BLE.
type Radio struct {
	LocalName string
	Stack     Stack

	lock    sync.Mutex
	started bool
	value   []byte
}

// New creates a Radio on the default adapter.
func New(name string) *Radio {
	return &Radio{LocalName: name, Stack: NewAdapterStack()}
}

// Name implements bridge.Radio.
func (r *Radio) Name() string {
	return "ble"
}

// Run implements bridge.Radio.
func (r *Radio) Run(ctx context.Context) error {
	lc := fx.LoopCtlFrom(ctx)
	r.lock.Lock()
	value := r.value
	if value == nil {
		value = []byte(bridge.ReadyText)
	}
	r.lock.Unlock()

	err := r.Stack.Start(r.LocalName, value, Handlers{
		Connect: func(addr string, connected bool) {
			kind := bridge.Connected
			if !connected {
				kind = bridge.Disconnected
			}
			bridge.PostEvent(lc, &bridge.RadioEvent{Kind: kind, Radio: r, Conn: addr})
		},
		Write: func(data []byte) {
			bridge.PostEvent(lc, &bridge.RadioEvent{Kind: bridge.Written, Radio: r, Data: data})
		},
	})
	if err != nil {
		return fmt.Errorf("ble start: %w", err)
	}
	r.lock.Lock()
	r.started = true
	r.lock.Unlock()
	glog.Infof("ble radio advertising as %s", r.LocalName)
	<-ctx.Done()
	return nil
}

// Advertise implements bridge.Radio.
func (r *Radio) Advertise() error {
	if !r.isStarted() {
		return nil
	}
	glog.Info("ble advertising restarted")
	return r.Stack.Advertise()
}

// Publish implements bridge.Radio. The stack notifies every subscribed
// client at once, so the value is only written when conns is not empty.
func (r *Radio) Publish(data []byte, conns []string) error {
	r.lock.Lock()
	r.value = append([]byte(nil), data...)
	r.lock.Unlock()
	if len(conns) == 0 || !r.isStarted() {
		return nil
	}
	return r.Stack.Notify(data)
}

func (r *Radio) isStarted() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.started
}
