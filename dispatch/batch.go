package dispatch

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"
)

// Task is one guarded unit for RunAll.
type Task struct {
	Work    Work
	Cleanup Cleanup
	Context map[string]any
}

// Outcome pairs the Result and error of one task.
type Outcome struct {
	Err    error
	Result Result
}

// RunAll runs tasks concurrently, at most limit at a time (no limit when
// limit <= 0), each through Run with its own cleanup. Outcomes are in task
// order. The only error returned directly is a missing default handler,
// detected before any task starts; task failures live in the outcomes.
func RunAll(ctx context.Context, reg *Registry, limit int, tasks []Task, opts ...Option) ([]Outcome, error) {
	if err := reg.checkDefault(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			taskOpts := opts
			if len(task.Context) > 0 {
				taskOpts = append(append([]Option(nil), opts...), WithContext(maps.Clone(task.Context)))
			}
			res, err := Run(ctx, reg, task.Work, task.Cleanup, taskOpts...)
			outcomes[i] = Outcome{Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes, nil
}
