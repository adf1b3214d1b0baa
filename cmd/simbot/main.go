package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/bridge"
	"github.com/robotalks/linebot/pkg/bridge/mqtt"
	"github.com/robotalks/linebot/pkg/bridge/websocket"
	"github.com/robotalks/linebot/pkg/env"
	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot"
	hwsim "github.com/robotalks/linebot/pkg/robot/hw/sim"
	"github.com/robotalks/linebot/pkg/sim"
)

var (
	trackRadius = 500.0
	posePeriod  = time.Second
)

func init() {
	env.SetNodeType(env.TypeBridge, env.NodeMeta{Description: "Simulated line robot"})
	env.SetupFlags()
	robot.SetupFlags()
	bridge.SetupFlags()
	websocket.SetupFlags()
	mqtt.SetupFlags()
	flag.Float64Var(&trackRadius, "track-radius", trackRadius, "Radius (mm) of the circular track")
	flag.DurationVar(&posePeriod, "pose-period", posePeriod, "Period of pose logs at -v=1")
}

func logPose(world *sim.World) fx.Runnable {
	return fx.NamedRun("pose-logger", fx.RunFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(posePeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				pose := world.Pose()
				glog.V(1).Infof("pose x=%.0f y=%.0f heading=%.0f", pose.X, pose.Y, pose.Orientation.Degrees())
			}
		}
	}))
}

func main() {
	flag.Parse()

	addr := websocket.DefaultAddr()
	if addr == "" {
		addr = ":8080"
	}
	radios := []bridge.Radio{websocket.New(addr)}
	if url := mqtt.DefaultURL(); url != "" {
		radio, err := mqtt.New(url, env.NewConfig().Info)
		if err != nil {
			glog.Exit(err)
		}
		radios = append(radios, radio)
	}

	bridgeEnd, robotEnd := link.Pipe()
	world := sim.NewCircleWorld(trackRadius)

	robotConf := robot.NewConfig()
	node := robot.NewNode(robotConf, world.Set(hwsim.New()), robotEnd)
	robotLoop := fx.NewLoop()
	robotLoop.Interval = robotConf.Interval
	robotLoop.Add(node)
	robotLoop.AddRunnable(&link.Reader{Port: robotEnd, Wake: true})

	bridgeConf := bridge.NewConfig()
	relay := bridge.NewRelay(bridgeConf, bridgeEnd, &bridge.LogIndicator{}, radios...)
	bridgeLoop := fx.NewLoop()
	bridgeLoop.Interval = bridgeConf.Interval
	bridgeLoop.Add(relay)
	bridgeLoop.AddRunnable(&link.Reader{Port: bridgeEnd, Wake: true})

	glog.Infof("simulated robot on a %.0f mm track, websocket on %s%s", trackRadius, addr, websocket.Path)
	err := fx.NewRunner().HandleSignals().
		Go(fx.NamedRun("robot", robotLoop), fx.NamedRun("bridge", bridgeLoop), logPose(world)).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
