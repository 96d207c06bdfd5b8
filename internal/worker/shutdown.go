package worker

import (
	"context"
)

// Stopper is a loop that blocks in Stop until its current unit of work ends.
type Stopper interface {
	Stop()
}

// Shutdown stops each loop in order and waits no longer than ctx allows.
// On timeout the remaining Stop calls keep running in the background and
// ctx.Err() is returned.
func Shutdown(ctx context.Context, stoppers ...Stopper) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for _, s := range stoppers {
			if s != nil {
				s.Stop()
			}
		}
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
