package link

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
)

// Chunk is the message posted to the loop for every read from the port.
type Chunk struct {
	Data []byte
}

// Reader reads the serial port on its own goroutine and posts Chunks to
// the loop it runs in. Nothing read is dropped while the loop is busy:
// chunks queue as loop messages until a controller takes them.
type Reader struct {
	Port io.Reader
	// Wake starts the next iteration right away instead of waiting for
	// the loop interval.
	Wake bool
	// BufSize is the read buffer size; defaults to 256.
	BufSize int
}

// Name implements framework.Named.
func (r *Reader) Name() string {
	return "link-reader"
}

// Run implements framework.Runnable.
func (r *Reader) Run(ctx context.Context) error {
	lc := fx.LoopCtlFrom(ctx)
	closer, ok := r.Port.(io.Closer)
	if !ok {
		closer = io.NopCloser(nil)
	}
	return fx.RunWithContextCloser(ctx, closer, func() error {
		return r.readLoop(lc)
	})
}

func (r *Reader) readLoop(lc fx.LoopControl) error {
	size := r.BufSize
	if size <= 0 {
		size = 256
	}
	buf := make([]byte, size)
	for {
		n, err := r.Port.Read(buf)
		if n > 0 {
			glog.V(4).Infof("serial rx %q", buf[:n])
			data := make([]byte, n)
			copy(data, buf[:n])
			lc.PostMessage(&Chunk{Data: data})
			if r.Wake {
				lc.TriggerNext()
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// TakeChunks removes all pending Chunks from the iteration's messages.
func TakeChunks(cc fx.ControlContext) (chunks []*Chunk) {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if chunk, ok := mc.CurrentMessage().(*Chunk); ok {
			chunks = append(chunks, chunk)
			mc.MessageTaken()
		}
	}))
	return
}
