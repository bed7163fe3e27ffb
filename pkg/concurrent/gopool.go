package concurrent

import (
	"errors"
	"time"
)

// ErrScheduleTimeout is returned by ScheduleTimeout when no worker frees up
// within the deadline.
var ErrScheduleTimeout = errors.New("schedule error: timed out")

// Pool is a bounded goroutine pool with a task queue. the websocket accept
// loop schedules connection handling through it so a flood of connections
// cannot spawn unbounded goroutines.
type Pool struct {
	sem  chan struct{}
	work chan func()
}

// NewPool creates a pool allowing size concurrent goroutines with a task
// queue of the given depth, and pre-spawns spawn workers.
func NewPool(size, queue, spawn int) *Pool {
	if spawn <= 0 && queue > 0 {
		panic("dead queue configuration detected")
	}
	if spawn > size {
		panic("spawn > workers")
	}
	p := &Pool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
	for i := 0; i < spawn; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}
	return p
}

// Schedule runs the task on a pool worker, blocking until one is available.
func (p *Pool) Schedule(task func()) {
	p.schedule(task, nil)
}

// ScheduleTimeout runs the task on a pool worker, giving up after timeout.
func (p *Pool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return p.schedule(task, time.After(timeout))
}

func (p *Pool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

func (p *Pool) worker(task func()) {
	defer func() { <-p.sem }()

	task()

	for task := range p.work {
		task()
	}
}

// Close stops accepting new work. workers drain the queue and exit.
func (p *Pool) Close() {
	close(p.work)
}
