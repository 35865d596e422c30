// Package pipeline implements the generation request pipeline:
// validate → dispatch → moderate → materialize. Each stage fails fast with a
// typed Error; no stage downgrades a failure to success.
package pipeline

import (
	"context"

	"github.com/lulatiAI/ai-image-backend/internal/infra"
)

// Pipeline wires the four stages together. All fields are set once at
// startup; a Pipeline is safe for concurrent use.
type Pipeline struct {
	Validator    *Validator
	Dispatcher   *Dispatcher
	Gate         *Gate
	Materializer *Materializer
	Fetcher      Fetcher
	Logger       *infra.Logger
}

// Run drives one request through every stage and returns the delivery payload
// or the first stage's failure.
func (p *Pipeline) Run(ctx context.Context, raw RawInput) (*Delivery, error) {
	req, err := p.Validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	task, err := p.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var prefetched [][]byte
	if p.Gate.Applies(req.Operation) {
		prefetched, err = p.fetchOutputs(ctx, task)
		if err != nil {
			return nil, err
		}
		verdict, err := p.Gate.Screen(ctx, prefetched)
		if err != nil {
			return nil, err
		}
		if verdict.Flagged {
			names := make([]string, len(verdict.Labels))
			for i, label := range verdict.Labels {
				names[i] = label.Name
			}
			if p.Logger != nil {
				p.Logger.Warn().
					Str("request_id", req.RequestID).
					Strs("labels", names).
					Msg("content blocked by moderation")
			}
			return nil, &Error{Kind: KindContentBlocked, Message: "generated content was flagged by moderation", Labels: names}
		}
	}

	return p.Materializer.Materialize(ctx, req, task, prefetched)
}

// fetchOutputs resolves bytes for every task output so the gate can classify
// them. Bytes the backend already returned are reused as-is.
func (p *Pipeline) fetchOutputs(ctx context.Context, task *Task) ([][]byte, error) {
	out := make([][]byte, len(task.Outputs))
	for i, o := range task.Outputs {
		if len(o.Data) > 0 {
			out[i] = o.Data
			continue
		}
		if p.Fetcher == nil {
			return nil, Errf(KindInternal, "no fetcher configured")
		}
		data, _, err := p.Fetcher.Fetch(ctx, o.URL)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}
