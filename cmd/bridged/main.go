package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/bridge"
	"github.com/robotalks/linebot/pkg/bridge/ble"
	"github.com/robotalks/linebot/pkg/bridge/mqtt"
	"github.com/robotalks/linebot/pkg/bridge/websocket"
	"github.com/robotalks/linebot/pkg/env"
	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
)

func init() {
	env.SetNodeType(env.TypeBridge, env.NodeMeta{Description: "Line robot wireless bridge"})
	env.SetupFlags()
	bridge.SetupFlags()
	link.SetupFlags()
	ble.SetupFlags()
	websocket.SetupFlags()
	mqtt.SetupFlags()
}

func radios(info env.NodeInfo) ([]bridge.Radio, error) {
	var radios []bridge.Radio
	if name := ble.DefaultLocalName(); name != "" {
		radios = append(radios, ble.New(name))
	}
	if addr := websocket.DefaultAddr(); addr != "" {
		radios = append(radios, websocket.New(addr))
	}
	if url := mqtt.DefaultURL(); url != "" {
		radio, err := mqtt.New(url, info)
		if err != nil {
			return nil, err
		}
		radios = append(radios, radio)
	}
	if len(radios) == 0 {
		return nil, errors.New("no radio enabled, use -ble, -ws or -mqtt")
	}
	return radios, nil
}

func main() {
	flag.Parse()

	envConf := env.NewConfig()
	if err := envConf.Validate(); err != nil {
		glog.Exit(err)
	}
	radios, err := radios(envConf.Info)
	if err != nil {
		glog.Exit(err)
	}
	port, err := link.NewConfig().Open()
	if err != nil {
		glog.Exit(err)
	}
	defer port.Close()

	conf := bridge.NewConfig()
	relay := bridge.NewRelay(conf, port, &bridge.LogIndicator{}, radios...)

	runner := fx.NewRunner().HandleSignals()
	loop := fx.NewLoop()
	loop.Interval = conf.Interval
	loop.Add(relay)
	loop.AddRunnable(&link.Reader{Port: port, Wake: true})
	glog.Infof("bridge %s started", envConf.Info.Name())
	err = loop.Run(runner.Context)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	relay.Fail(runner.Context, err)
	glog.Flush()
	os.Exit(1)
}
