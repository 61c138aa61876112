package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/internal/runtime"
)

func TestDispatcherExecutesQueuedActions(t *testing.T) {
	rt := runtime.NewNopRuntime()
	executor := NewExecutor(rt, DefaultExecutorConfig(), logger.NopLogger())
	d := NewDispatcher(executor, DefaultDispatcherConfig(), logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	out := d.Submit(&policy.Policy{Name: "p", Action: policy.ActionKill}, testAlert())
	assert.Nil(t, out, "submit into a free queue must not produce an outcome")

	require.Eventually(t, func() bool {
		return len(rt.Terminated()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestDispatcherShedsWhenSaturated(t *testing.T) {
	executor := NewExecutor(runtime.NewNopRuntime(), DefaultExecutorConfig(), logger.NopLogger())
	// Workers never started: the queue fills and stays full.
	d := NewDispatcher(executor, DispatcherConfig{Workers: 1, QueueSize: 2, GracePeriod: time.Second}, logger.NopLogger())

	p := &policy.Policy{Name: "p", Action: policy.ActionAlert}
	assert.Nil(t, d.Submit(p, testAlert()))
	assert.Nil(t, d.Submit(p, testAlert()))

	out := d.Submit(p, testAlert())
	require.NotNil(t, out, "a full queue sheds instead of blocking")
	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, "p", out.PolicyName)
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	rt := runtime.NewNopRuntime()
	executor := NewExecutor(rt, DefaultExecutorConfig(), logger.NopLogger())
	d := NewDispatcher(executor, DispatcherConfig{Workers: 2, QueueSize: 16, GracePeriod: 2 * time.Second}, logger.NopLogger())

	p := &policy.Policy{Name: "p", Action: policy.ActionKill}
	for i := 0; i < 8; i++ {
		require.Nil(t, d.Submit(p, testAlert()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	assert.Len(t, rt.Terminated(), 8, "queued actions must run before shutdown completes")
}

func TestDispatcherConcurrentSubmitDuringShutdown(t *testing.T) {
	// Submitters racing the shutdown path must either queue or get a
	// Skipped outcome; a send onto the closing queue would panic.
	executor := NewExecutor(runtime.NewNopRuntime(), DefaultExecutorConfig(), logger.NopLogger())
	p := &policy.Policy{Name: "p", Action: policy.ActionAlert}

	for i := 0; i < 200; i++ {
		d := NewDispatcher(executor, DispatcherConfig{Workers: 2, QueueSize: 4, GracePeriod: time.Second}, logger.NopLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			d.Start(ctx)
			close(done)
		}()

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if out := d.Submit(p, testAlert()); out != nil {
					assert.Equal(t, StatusSkipped, out.Status)
				}
			}()
		}

		cancel()
		wg.Wait()
		<-done
	}
}

func TestDispatcherRejectsSubmitWhileDraining(t *testing.T) {
	executor := NewExecutor(runtime.NewNopRuntime(), DefaultExecutorConfig(), logger.NopLogger())
	d := NewDispatcher(executor, DefaultDispatcherConfig(), logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	cancel()
	<-done

	out := d.Submit(&policy.Policy{Name: "p", Action: policy.ActionAlert}, testAlert())
	require.NotNil(t, out)
	assert.Equal(t, StatusSkipped, out.Status)
}
