package goquery

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

// Step is one named page-preparation action. Steps are best-effort: a
// failing or slow step is logged and the next one runs.
type Step struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context, page docscout.Page) error
}

// StepResult records how a step ended.
type StepResult struct {
	Name string
	Err  error
}

// RunSteps runs steps in order, each bounded by its own timeout, and returns
// their outcomes. Errors and timeouts never stop the sequence. RunSteps stops
// early only when ctx itself is done.
func RunSteps(ctx context.Context, page docscout.Page, steps []Step, logger *slog.Logger) []StepResult {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if ctx.Err() != nil {
			break
		}
		err := runStep(ctx, page, step)
		if err != nil {
			logger.Debug("prepare step failed", "step", step.Name, "url", page.URL(), "err", err)
		}
		results = append(results, StepResult{Name: step.Name, Err: err})
	}
	return results
}

func runStep(ctx context.Context, page docscout.Page, step Step) error {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}
	return step.Run(ctx, page)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
