package app

import (
	"sync/atomic"

	"notedesk/internal/client/domain"
)

// InFlightGuard пропускает не более одной удаленной операции одновременно.
// Вторая операция не ждет, а сразу получает domain.ErrBusy.
type InFlightGuard struct {
	busy atomic.Bool
}

// Acquire занимает слот. release нужно вызвать ровно один раз.
func (g *InFlightGuard) Acquire() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.busy.Store(false)
		}
	}, nil
}

// Busy сообщает, выполняется ли сейчас операция.
func (g *InFlightGuard) Busy() bool {
	return g.busy.Load()
}
