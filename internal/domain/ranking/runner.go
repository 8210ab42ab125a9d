package ranking

import "context"

// Runner fans out independent per-entity tasks. Run returns once every task
// has finished; tasks write only to their own index.
type Runner interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int)) error
}

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Runner.
func (Sequential) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		task(ctx, i)
	}
	return nil
}
