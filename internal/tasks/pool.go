package tasks

import (
	"github.com/panjf2000/ants/v2"

	"docbase-backend/internal/shared/telemetry"
)

// Pool runs fire-and-forget background tasks. Submitters get no ordering or
// completion guarantee; a task may run arbitrarily later or, on process exit,
// never.
type Pool struct {
	pool *ants.Pool
}

// NewPool creates a pool with the given worker count. A size of zero or less
// configures an effectively unbounded pool.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

// Submit schedules fn for execution on a pool worker. Submission failures are
// logged and swallowed; the caller has already returned to its client by the
// time the task would run.
func (p *Pool) Submit(fn func()) {
	if err := p.pool.Submit(fn); err != nil {
		telemetry.Error("tasks.submit_failed", map[string]any{"error": err.Error()})
	}
}

// Release stops the pool and discards queued tasks.
func (p *Pool) Release() {
	p.pool.Release()
}
