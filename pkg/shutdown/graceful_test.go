package shutdown_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/pkg/shutdown"
)

func TestWaitRunsHooksOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	called := make(chan struct{}, 2)
	hook := func(context.Context) error {
		called <- struct{}{}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- shutdown.Wait(ctx, time.Second, hook, hook)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
	assert.Len(t, called, 2)
}

func TestRunCollectsErrors(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	err := shutdown.Run(time.Second,
		func(context.Context) error { return errFirst },
		func(context.Context) error { return nil },
		func(context.Context) error { return errSecond },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
}

func TestRunRespectsTimeout(t *testing.T) {
	start := time.Now()

	err := shutdown.Run(50*time.Millisecond, func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	assert.ErrorIs(t, err, shutdown.ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
