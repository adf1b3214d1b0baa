package main

import (
	"flag"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/bridge/mqtt"
	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/telemetry"
)

//go-build: CGO_ENABLED=0

const defaultURL = "mqtt://localhost:1883/linebot/"

func init() {
	mqtt.SetupFlags()
}

func show(topic string, payload []byte) {
	levels := strings.Split(topic, "/")
	switch levels[len(levels)-1] {
	case mqtt.TopicStatus:
		st, err := telemetry.Unmarshal(payload)
		if err != nil {
			glog.Warningf("%s: bad telemetry: %v", topic, err)
			return
		}
		out, err := telemetry.JSON(st)
		if err != nil {
			glog.Warningf("%s: %v", topic, err)
			return
		}
		glog.Infof("%s: %s", topic, out)
	default:
		glog.Infof("%s: %s", topic, payload)
	}
}

func main() {
	flag.Parse()
	url := mqtt.DefaultURL()
	if url == "" {
		url = defaultURL
	}
	q, err := mqtt.NewQueueFromURL(url)
	if err != nil {
		glog.Exit(err)
	}
	q.Sub("#", show)
	if err := q.Connect(); err != nil {
		glog.Exit(err)
	}
	runner := fx.NewRunner().HandleSignals()
	<-runner.Context.Done()
	q.Close()
}
