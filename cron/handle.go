package cron

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a scheduled job.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusIdle      Status = "idle"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// Terminal reports whether no further runs can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusStopped:
		return true
	default:
		return false
	}
}

// Handle controls one scheduled job. Done closes once the status turns
// terminal.
type Handle interface {
	Cancel()
	Status() Status
	Err() error
	Done() <-chan struct{}
	ID() int64
	Runs() int
	LastRun() time.Time
}

type jobHandle struct {
	scheduler *Scheduler
	id        int64
	done      chan struct{}
	once      sync.Once

	mu      sync.RWMutex
	entryID int
	status  Status
	err     error
	runs    int
	lastRun time.Time
}

func (h *jobHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.scheduler != nil {
			h.scheduler.cancel(h.id)
		}
		h.finish(StatusCanceled, nil)
	})
}

func (h *jobHandle) Status() Status {
	if h == nil {
		return StatusStopped
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *jobHandle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *jobHandle) Done() <-chan struct{} {
	if h == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.done
}

func (h *jobHandle) ID() int64 {
	if h == nil {
		return 0
	}
	return h.id
}

// Runs counts started activations, failed ones included.
func (h *jobHandle) Runs() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.runs
}

func (h *jobHandle) LastRun() time.Time {
	if h == nil {
		return time.Time{}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastRun
}

func (h *jobHandle) setEntry(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entryID = id
}

// entry is the cron entry id, or 0 for one-off jobs.
func (h *jobHandle) entry() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entryID
}

// begin marks an activation as running. It reports false once the handle is
// terminal.
func (h *jobHandle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.Terminal() {
		return false
	}
	h.status = StatusRunning
	h.err = nil
	h.runs++
	h.lastRun = time.Now()
	return true
}

// settle records the outcome of a recurring activation unless the handle
// turned terminal while the job ran.
func (h *jobHandle) settle(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.Terminal() {
		return
	}
	h.status = StatusIdle
	if err != nil {
		h.status = StatusFailed
	}
	h.err = err
}

// finish moves the handle to a terminal status. The first terminal status
// wins.
func (h *jobHandle) finish(status Status, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.Terminal() {
		return
	}
	h.status = status
	h.err = err
	if h.done != nil {
		close(h.done)
	}
}
