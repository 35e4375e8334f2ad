// Package cron schedules the side jobs of a run, such as periodic status
// reports and run time limits, on top of robfig/cron.
package cron

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"

	stagehand "github.com/goliatone/go-stagehand"
)

const (
	ErrCodeEmptyExpression = "CRON_EMPTY_EXPRESSION"
	ErrCodeBadExpression   = "CRON_BAD_EXPRESSION"
	ErrCodeNilJob          = "CRON_NIL_JOB"
)

var (
	ErrEmptyExpression = apperrors.New("cron expression cannot be empty", apperrors.CategoryBadInput).
				WithTextCode(ErrCodeEmptyExpression)
	ErrNilJob = apperrors.New("job cannot be nil", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeNilJob)
)

// Job is a scheduled unit of work. A returned error marks the handle failed
// and reaches the error handler.
type Job func() error

// Func adapts a job that cannot fail.
func Func(fn func()) Job {
	return func() error {
		fn()
		return nil
	}
}

// Scheduler runs recurring jobs from cron expressions and one-off jobs from
// timers. Every job gets a Handle.
type Scheduler struct {
	cron         *rcron.Cron
	location     *time.Location
	errorHandler func(error)

	logger    stagehand.Logger
	parser    Parser
	logWriter io.Writer
	logLevel  LogLevel

	mu      sync.Mutex
	lastID  int64
	handles map[int64]*jobHandle
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		location: time.Local,
		parser:   DefaultParser,
		logLevel: LogLevelError,
		errorHandler: func(err error) {
			log.Printf("cron job failed: %v", err)
		},
		handles: make(map[int64]*jobHandle),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.cron = rcron.New(s.cronOptions()...)
	return s
}

// ScheduleCron runs job on every activation of expr. Failed activations do
// not stop later ones.
func (s *Scheduler) ScheduleCron(expr string, job Job) (Handle, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpression.Clone()
	}
	if job == nil {
		return nil, ErrNilJob.Clone()
	}

	h := s.open()
	entryID, err := s.cron.AddFunc(expr, func() {
		if !h.begin() {
			return
		}
		err := job()
		h.settle(err)
		if err != nil {
			s.errorHandler(err)
		}
	})
	if err != nil {
		s.forget(h.id)
		return nil, apperrors.Wrap(err, apperrors.CategoryBadInput, "failed to add job").
			WithTextCode(ErrCodeBadExpression).
			WithMetadata(map[string]any{"expression": expr})
	}
	h.setEntry(int(entryID))
	return h, nil
}

// ScheduleAfter runs job once after delay. A negative delay runs it at once.
func (s *Scheduler) ScheduleAfter(delay time.Duration, job Job) (Handle, error) {
	return s.ScheduleAt(time.Now().Add(max(delay, 0)), job)
}

// ScheduleAt runs job once at the given time. It does not need Start.
func (s *Scheduler) ScheduleAt(at time.Time, job Job) (Handle, error) {
	if job == nil {
		return nil, ErrNilJob.Clone()
	}

	h := s.open()
	go func() {
		timer := time.NewTimer(max(time.Until(at), 0))
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-h.Done():
			return
		}
		if !h.begin() {
			return
		}

		err := job()
		s.forget(h.id)
		if err != nil {
			h.finish(StatusFailed, err)
			s.errorHandler(err)
			return
		}
		h.finish(StatusCompleted, nil)
	}()
	return h, nil
}

func (s *Scheduler) Start(_ context.Context) error {
	s.cron.Start()
	return nil
}

// Stop halts the cron runner, waiting for a running job, and marks every
// live handle stopped.
func (s *Scheduler) Stop(_ context.Context) error {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	live := s.handles
	s.handles = make(map[int64]*jobHandle)
	s.mu.Unlock()

	for _, h := range live {
		if id := h.entry(); id > 0 {
			s.cron.Remove(rcron.EntryID(id))
		}
		h.finish(StatusStopped, nil)
	}
	return nil
}

// Len reports how many handles are still live.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// open creates and tracks a new handle.
func (s *Scheduler) open() *jobHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	h := &jobHandle{
		scheduler: s,
		id:        s.lastID,
		status:    StatusScheduled,
		done:      make(chan struct{}),
	}
	s.handles[h.id] = h
	return h
}

// forget stops tracking a handle and returns it, or nil when unknown.
func (s *Scheduler) forget(id int64) *jobHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.handles[id]
	delete(s.handles, id)
	return h
}

// cancel drops a handle and its cron entry.
func (s *Scheduler) cancel(id int64) {
	h := s.forget(id)
	if h == nil {
		return
	}
	if entryID := h.entry(); entryID > 0 {
		s.cron.Remove(rcron.EntryID(entryID))
	}
}

func (s *Scheduler) cronOptions() []rcron.Option {
	var opts []rcron.Option
	if s.location != nil {
		opts = append(opts, rcron.WithLocation(s.location))
	}

	switch s.parser {
	case StandardParser:
		opts = append(opts, rcron.WithParser(rcron.NewParser(
			rcron.Minute|rcron.Hour|rcron.Dom|rcron.Month|rcron.Dow|rcron.Descriptor,
		)))
	case SecondsParser:
		opts = append(opts, rcron.WithParser(rcron.NewParser(
			rcron.Second|rcron.Minute|rcron.Hour|rcron.Dom|rcron.Month|rcron.Dow|rcron.Descriptor,
		)))
	}

	// job panics reach the error handler instead of killing the runner
	opts = append(opts, rcron.WithChain(rcron.Recover(&errorHandlerAdapter{handler: s.errorHandler})))

	if l := s.cronLogger(); l != nil {
		opts = append(opts, rcron.WithLogger(l))
	}
	return opts
}

func (s *Scheduler) cronLogger() rcron.Logger {
	if s.logger != nil {
		return &loggerAdapter{logger: s.logger, level: s.logLevel}
	}
	out := s.logWriter
	if out == nil {
		if s.logLevel == LogLevelSilent {
			return nil
		}
		out = os.Stdout
	}
	std := log.New(out, "cron: ", log.LstdFlags)
	if s.logLevel >= LogLevelDebug {
		return rcron.VerbosePrintfLogger(std)
	}
	return rcron.PrintfLogger(std)
}
