package ops

import (
	"sync"

	"notenav/internal/errors"
	"notenav/internal/log"
)

// laneTask is one queued latest-wins submission.
type laneTask struct {
	token uint64
	work  func() error
	done  chan error
}

// lane is a persistent single-worker queue. Tokens are assigned and
// tasks enqueued under one lock, so execution order always matches
// submission order. The worker re-checks the newest token before running
// a task; displaced tasks settle as superseded without side effects.
type lane struct {
	mu     sync.Mutex
	newest uint64
	tasks  chan laneTask
	stop   chan struct{}
	once   sync.Once
}

const laneQueueDepth = 128

func newLane() *lane {
	l := &lane{
		tasks: make(chan laneTask, laneQueueDepth),
		stop:  make(chan struct{}),
	}
	go l.run()
	return l
}

// submit queues work and returns a channel that receives exactly one
// settlement value, in submission order relative to other tasks.
func (l *lane) submit(work func() error) <-chan error {
	done := make(chan error, 1)

	l.mu.Lock()
	l.newest++
	task := laneTask{token: l.newest, work: work, done: done}
	select {
	case l.tasks <- task:
		l.mu.Unlock()
	case <-l.stop:
		l.mu.Unlock()
		done <- errors.ErrSuperseded
	default:
		// Queue saturated: everything queued is already superseded by
		// this submission, but order must be preserved, so the caller
		// settles as skipped rather than jumping the line.
		l.mu.Unlock()
		done <- errors.ErrSuperseded
	}
	return done
}

func (l *lane) run() {
	for {
		select {
		case task := <-l.tasks:
			l.execute(task)
		case <-l.stop:
			// Drain whatever is queued so no submitter waits forever.
			for {
				select {
				case task := <-l.tasks:
					task.done <- errors.ErrSuperseded
				default:
					return
				}
			}
		}
	}
}

// execute runs one task, settling its channel with a value regardless of
// outcome so a failure can never block later tasks.
func (l *lane) execute(task laneTask) {
	l.mu.Lock()
	stale := task.token != l.newest
	l.mu.Unlock()

	if stale {
		task.done <- errors.ErrSuperseded
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.With(log.F("panic", r)).Error("latest-wins task panicked")
				err = errors.Newf("task panicked: %v", r)
			}
		}()
		err = task.work()
	}()
	task.done <- err
}

func (l *lane) close() {
	l.once.Do(func() { close(l.stop) })
}

// SubmitLatestWins chains work onto the kind's single lane. Only the
// newest submission at execution time runs; superseded ones settle with
// errors.ErrSuperseded. Settlement order matches submission order even
// when individual latencies differ.
func (c *Coordinator) SubmitLatestWins(kind Kind, work func() error) <-chan error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		done := make(chan error, 1)
		done <- errors.ErrSuperseded
		return done
	}
	l, ok := c.lanes[kind]
	if !ok {
		l = newLane()
		c.lanes[kind] = l
	}
	c.mu.Unlock()

	return l.submit(work)
}

// RunLatestWins is the blocking form of SubmitLatestWins.
func (c *Coordinator) RunLatestWins(kind Kind, work func() error) error {
	return <-c.SubmitLatestWins(kind, work)
}
