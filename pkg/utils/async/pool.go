package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Parallel executes fn in n concurrent goroutines sharing the same
// context and blocks until all of them return.
//
// Behavior:
//   - n is clamped to at least 1
//   - Each goroutine recovers from panics and logs them, so one failed
//     worker does not take down the others or leave Parallel hanging
func Parallel(ctx context.Context, n int, fn func(ctx context.Context)) {
	if n < 1 {
		n = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					logger := ctxlog.From(ctx)
					logger.Error("panic in parallel worker",
						"recover", r,
						"stack", string(stack))
				}
			}()

			fn(ctx)
		}()
	}

	wg.Wait()
}
