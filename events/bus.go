// Package events routes run progress, such as finished stages and substate
// changes, to subscribers by topic.
//
// Topics are slash separated:
//
//	stage/<stage>/completed
//	substate/<stage>/<substate>
//
// Subscriptions may use "+" for a single segment and a trailing "#" for the
// rest of the topic.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/goliatone/go-errors"

	stagehand "github.com/goliatone/go-stagehand"
)

const (
	ErrCodeBadPattern      = "EVENTS_BAD_PATTERN"
	ErrCodeNilHandler      = "EVENTS_NIL_HANDLER"
	ErrCodeHandlerFailed   = "EVENTS_HANDLER_FAILED"
	ErrCodeHandlerPanicked = "EVENTS_HANDLER_PANICKED"
)

var (
	ErrBadPattern = apperrors.New("invalid topic pattern", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeBadPattern)
	ErrNilHandler = apperrors.New("handler cannot be nil", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeNilHandler)
)

// Event is one piece of run progress.
type Event struct {
	Topic  string          `json:"topic"`
	Stage  stagehand.Stage `json:"stage"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Ticks  int             `json:"ticks,omitempty"`
	At     time.Time       `json:"at"`
}

// StageCompleted is published when the executor leaves a stage.
func StageCompleted(from, to stagehand.Stage, ticks int) Event {
	return Event{
		Topic: fmt.Sprintf("stage/%s/completed", from),
		Stage: from,
		From:  string(from),
		To:    string(to),
		Ticks: ticks,
		At:    time.Now(),
	}
}

// SubstateChanged is published when a stage workflow moves between substates.
func SubstateChanged(stage stagehand.Stage, from, to, reason string) Event {
	return Event{
		Topic:  fmt.Sprintf("substate/%s/%s", stage, to),
		Stage:  stage,
		From:   from,
		To:     to,
		Reason: reason,
		At:     time.Now(),
	}
}

type Handler func(ctx context.Context, e Event) error

type Subscription interface {
	Unsubscribe()
}

type Option func(*Bus)

// WithExitOnError stops delivery at the first failing handler.
func WithExitOnError() Option {
	return func(b *Bus) {
		b.exitOnErr = true
	}
}

func WithLogger(logger stagehand.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu        sync.RWMutex
	nextID    int64
	entries   []entry
	exitOnErr bool
	logger    stagehand.Logger
}

type entry struct {
	id      int64
	pattern string
	handler Handler
}

func NewBus(opts ...Option) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.logger = stagehand.NormalizeLogger(b.logger)
	return b
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern string, handler Handler) (Subscription, error) {
	if !ValidPattern(pattern) {
		return nil, ErrBadPattern.Clone().WithMetadata(map[string]any{"pattern": pattern})
	}
	if handler == nil {
		return nil, ErrNilHandler.Clone()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.entries = append(b.entries, entry{id: b.nextID, pattern: pattern, handler: handler})
	return &subscription{bus: b, id: b.nextID}, nil
}

// Publish delivers e to every matching handler. Handler errors are joined
// unless WithExitOnError is set. Panics are recovered and reported as errors.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	matched := make([]entry, 0, len(b.entries))
	for _, en := range b.entries {
		if Match(en.pattern, e.Topic) {
			matched = append(matched, en)
		}
	}
	b.mu.RUnlock()

	var errs error
	for _, en := range matched {
		if err := b.deliver(ctx, en, e); err != nil {
			if b.exitOnErr {
				return err
			}
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Len reports how many subscriptions are live.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *Bus) deliver(ctx context.Context, en entry, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler for %s panicked: %v", en.pattern, r)
			err = apperrors.New(fmt.Sprintf("handler for %s panicked: %v", en.pattern, r), apperrors.CategoryHandler).
				WithTextCode(ErrCodeHandlerPanicked).
				WithMetadata(map[string]any{"topic": e.Topic, "pattern": en.pattern})
		}
	}()

	if herr := en.handler(ctx, e); herr != nil {
		return apperrors.Wrap(herr, apperrors.CategoryHandler, "event handler failed").
			WithTextCode(ErrCodeHandlerFailed).
			WithMetadata(map[string]any{"topic": e.Topic, "pattern": en.pattern})
	}
	return nil
}

func (b *Bus) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := make([]entry, 0, len(b.entries))
	for _, en := range b.entries {
		if en.id != id {
			kept = append(kept, en)
		}
	}
	b.entries = kept
}

type subscription struct {
	once sync.Once
	bus  *Bus
	id   int64
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.bus.remove(s.id) })
}
