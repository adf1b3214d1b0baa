package robot

import (
	"bufio"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/robot/hw/sim"
)

func TestNodeInLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	robotEnd, peer := link.Pipe()
	conf := NewConfig()
	conf.AutoCalibrate = false
	node := NewNode(conf, sim.New().Set(), robotEnd)

	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(node)
	loop.AddRunnable(&link.Reader{Port: robotEnd})
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(ctx)
	}()

	replies := bufio.NewScanner(peer)
	for _, exchange := range [][2]string{
		{"ping\n", "PONG"},
		{"SPEED 3\n", "SPEED_SET:3 (1500)"},
		{"LINE\n", "LINE_FOLLOWING:INACTIVE"},
	} {
		_, err := peer.Write([]byte(exchange[0]))
		require.NoError(t, err)
		require.True(t, replies.Scan())
		require.Equal(t, exchange[1], replies.Text())
	}

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}
