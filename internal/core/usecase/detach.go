package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

const detachedTimeout = 5 * time.Second

// DetachedRunner executes fire-and-forget side effects after a response has
// already been decided. Each unit runs on its own goroutine with a background
// context, so caller cancellation cannot reach it; failures go to the error
// sink and nowhere else. Close drains in-flight units on shutdown.
type DetachedRunner struct {
	sink ports.ErrorSink
	wg   sync.WaitGroup
}

func NewDetachedRunner(sink ports.ErrorSink) *DetachedRunner {
	return &DetachedRunner{sink: sink}
}

func (r *DetachedRunner) Go(op string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.sink.Report(op, err)
		}
	}()
}

func (r *DetachedRunner) Close() error {
	r.wg.Wait()
	return nil
}
