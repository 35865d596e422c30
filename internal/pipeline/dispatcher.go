package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/lulatiAI/ai-image-backend/internal/infra"
)

// Backend is the contract every generation vendor adapter implements. Submit
// blocks until the vendor job reaches a terminal state; adapters wrapping
// asynchronous vendors poll internally, bounded by ctx. The returned task is
// terminal or err is non-nil, never both indeterminate.
type Backend interface {
	Submit(ctx context.Context, req Request) (*Task, error)
}

// Dispatcher routes a validated request to exactly one backend and normalizes
// timeouts and vendor failures into the pipeline error taxonomy. It does not
// retry: no idempotency contract exists with the vendors, so re-invocation is
// left to the caller.
type Dispatcher struct {
	backends map[Operation]Backend
	timeout  time.Duration
	logger   *infra.Logger
}

// NewDispatcher wires one backend per operation. Operations without a backend
// fail fast at dispatch time with KindInvalidRequest.
func NewDispatcher(backends map[Operation]Backend, timeout time.Duration, logger *infra.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Dispatcher{backends: backends, timeout: timeout, logger: logger}
}

// Dispatch invokes the backend for req.Operation and returns a task in
// terminal Succeeded state. Failed tasks and transport errors surface as
// KindUpstreamUnavailable; exceeding the bounded wait surfaces as KindTimeout.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Task, error) {
	backend, ok := d.backends[req.Operation]
	if !ok {
		return nil, Errf(KindInvalidRequest, "operation %s is not supported by this deployment", req.Operation)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	task, err := backend.Submit(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapErr(KindTimeout, err, "generation did not finish in time")
		}
		var pe *Error
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, WrapErr(KindUpstreamUnavailable, err, "generation provider call failed")
	}
	if task == nil || !task.Status.Terminal() {
		return nil, Errf(KindInternal, "backend returned a non-terminal task")
	}
	if task.Status == StatusFailed {
		detail := task.FailureDetail
		if detail == "" {
			detail = "generation failed upstream"
		}
		return nil, Errf(KindUpstreamUnavailable, "%s", detail)
	}
	if len(task.Outputs) == 0 {
		return nil, Errf(KindUpstreamUnavailable, "generation succeeded but returned no output")
	}

	if d.logger != nil {
		d.logger.Debug().
			Str("operation", string(req.Operation)).
			Str("task_id", task.ID).
			Dur("elapsed", time.Since(start)).
			Int("outputs", len(task.Outputs)).
			Msg("dispatch complete")
	}
	return task, nil
}
