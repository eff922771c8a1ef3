// Package shutdown ожидает SIGINT/SIGTERM или отмену контекста и выполняет хуки завершения.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ErrTimeout возвращается, если хуки не уложились в отведенное время.
var ErrTimeout = errors.New("shutdown hooks timed out")

// Hook - функция завершения компонента.
type Hook func(context.Context) error

// Wait блокируется до сигнала SIGINT/SIGTERM или отмены ctx,
// затем параллельно выполняет хуки в пределах timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	return Run(timeout, hooks...)
}

// Run выполняет хуки параллельно и собирает их ошибки.
func Run(timeout time.Duration, hooks ...Hook) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		return errors.Join(append(errs, ErrTimeout)...)
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
