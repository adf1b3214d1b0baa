package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot"
	hwsim "github.com/robotalks/linebot/pkg/robot/hw/sim"
	"github.com/robotalks/linebot/pkg/sim"
)

var trackRadius = 500.0

func init() {
	robot.SetupFlags()
	link.SetupFlags()
	flag.Float64Var(&trackRadius, "track-radius", trackRadius, "Radius (mm) of the simulated circular track")
}

func main() {
	flag.Parse()

	port, err := link.NewConfig().Open()
	if err != nil {
		glog.Exit(err)
	}
	defer port.Close()

	conf := robot.NewConfig()
	world := sim.NewCircleWorld(trackRadius)
	node := robot.NewNode(conf, world.Set(hwsim.New()), port)

	runner := fx.NewRunner().HandleSignals()
	loop := fx.NewLoop()
	loop.Interval = conf.Interval
	loop.Add(node)
	loop.AddRunnable(&link.Reader{Port: port, Wake: true})
	err = loop.Run(runner.Context)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	node.Fail(err)
	glog.Errorf("robot halted: %v", err)
	<-runner.Context.Done()
	glog.Flush()
	os.Exit(1)
}
