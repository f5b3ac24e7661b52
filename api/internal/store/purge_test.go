package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int32
	fail  bool
}

func (p *countingPurger) PurgeOlderThan(_ context.Context, olderThan time.Duration) (int64, error) {
	p.calls.Add(1)
	if p.fail {
		return 0, errors.New("db down")
	}
	return 1, nil
}

func TestRunPurgeRepeatsUntilCancelled(t *testing.T) {
	for _, fail := range []bool{false, true} {
		p := &countingPurger{fail: fail}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- RunPurge(ctx, p, time.Hour, 5*time.Millisecond, nil) }()

		require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("RunPurge did not stop")
		}
	}
}
