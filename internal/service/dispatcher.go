package service

import (
	"context"

	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

type job struct {
	name string
	fn   func(ctx context.Context)
}

// Dispatcher runs submitted jobs one at a time on a single goroutine.
// Poll cycles and command bodies go through it so mapping mutations never
// interleave.
type Dispatcher struct {
	jobs   chan job
	logger *logger.Logger
}

// NewDispatcher creates a dispatcher with room for queue pending jobs
func NewDispatcher(queue int, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:   make(chan job, queue),
		logger: logger.WithComponent("dispatcher"),
	}
}

// Submit enqueues fn. It blocks while the queue is full and returns the
// context error if ctx ends first.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn func(ctx context.Context)) error {
	select {
	case d.jobs <- job{name: name, fn: fn}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes jobs until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Starting dispatcher")
	for {
		select {
		case j := <-d.jobs:
			d.logger.Debug("Running job", "job", j.name)
			j.fn(ctx)
		case <-ctx.Done():
			d.logger.Info("Context cancelled, stopping dispatcher")
			return
		}
	}
}
