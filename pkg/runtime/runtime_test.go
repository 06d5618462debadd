package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDoRunsJobs(t *testing.T) {
	rt := New(4, zaptest.NewLogger(t))
	rt.Start()
	defer rt.Stop()

	n := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, rt.Do(context.Background(), func() { n++ }))
	}
	assert.Equal(t, 10, n)
}

func TestJobsNeverOverlap(t *testing.T) {
	rt := New(16, zaptest.NewLogger(t))
	rt.Start()
	defer rt.Stop()

	var (
		inFlight, maxInFlight, total int
		wg                           sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rt.Do(context.Background(), func() {
				// plain ints: the race detector flags any overlap
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				total++
				inFlight--
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInFlight)
	assert.Equal(t, 50, total)
}

func TestAbandonedJobDoesNotRun(t *testing.T) {
	rt := New(1, zaptest.NewLogger(t))
	rt.Start()
	defer rt.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = rt.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := rt.Do(ctx, func() { ran = true })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	// a later job proves the abandoned one was skipped, not deferred
	require.NoError(t, rt.Do(context.Background(), func() {}))
	assert.False(t, ran)
}

func TestStop(t *testing.T) {
	rt := New(0, zaptest.NewLogger(t))
	rt.Start()
	rt.Stop()
	rt.Stop()
	assert.True(t, errors.Is(rt.Do(context.Background(), func() {}), ErrStopped))

	never := New(0, nil)
	never.Stop()
	assert.True(t, errors.Is(never.Do(context.Background(), func() {}), ErrStopped))
}

func TestPanicIsContained(t *testing.T) {
	rt := New(0, zaptest.NewLogger(t))
	rt.Start()
	defer rt.Stop()

	err := rt.Do(context.Background(), func() { panic("boom") })
	assert.True(t, errors.Is(err, ErrPanicked))
	assert.NoError(t, rt.Do(context.Background(), func() {}))
}
