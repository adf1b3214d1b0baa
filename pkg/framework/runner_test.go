package framework

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	testCases := []struct {
		name   string
		errs   []error
		expect string
	}{
		{name: "clean", errs: []error{nil, context.Canceled}},
		{name: "one failure", errs: []error{nil, errors.New("bad")}, expect: "1: bad"},
		{
			name:   "failures aggregated",
			errs:   []error{errors.New("a"), errors.New("b")},
			expect: "Multiple errors:",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRunner()
			for _, err := range tc.errs {
				err := err
				r.Go(RunFunc(func(context.Context) error { return err }))
			}
			err := r.Wait()
			if tc.expect == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expect)
		})
	}
}

func TestRunnerFailureStopsOthers(t *testing.T) {
	r := NewRunner()
	r.Go(NamedRun("waiter", RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})), NamedRun("failer", RunFunc(func(context.Context) error {
		return io.ErrUnexpectedEOF
	})))
	err := r.Wait()
	require.EqualError(t, err, "failer: unexpected EOF")
	require.ErrorIs(t, err.(*AggregatedError).Errors[0], io.ErrUnexpectedEOF)
}

type blockingCloser struct {
	ch chan struct{}
}

func (c *blockingCloser) Close() error {
	close(c.ch)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &blockingCloser{ch: make(chan struct{})}
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return io.EOF
	})
	require.ErrorIs(t, err, context.Canceled)

	c = &blockingCloser{ch: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error {
		return io.EOF
	})
	require.ErrorIs(t, err, io.EOF)
	_, open := <-c.ch
	require.False(t, open)
}
