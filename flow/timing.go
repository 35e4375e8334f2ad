package flow

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Pace names a delay class. Handlers return a Pace instead of a raw duration
// so every wait in the system is configurable in one place.
type Pace string

const (
	PaceDialog Pace = "dialog"
	PaceOption Pace = "option"
	PaceSettle Pace = "settle"
	PaceIdle   Pace = "idle"
	PaceClick  Pace = "click"
	PaceWield  Pace = "wield"
	PaceWalk   Pace = "walk"
	PaceTalk   Pace = "talk"
	PaceFire   Pace = "fire"
	PaceSmelt  Pace = "smelt"
	PaceCast   Pace = "cast"
	PaceGather Pace = "gather"
	PaceFish   Pace = "fish"
)

// DefaultJitter is the symmetric jitter applied to every default pace.
const DefaultJitter = 100 * time.Millisecond

// minDelay is the floor applied when a delay would not be positive.
const minDelay = time.Millisecond

// Timing is a base delay with symmetric uniform jitter.
type Timing struct {
	Base   time.Duration `json:"base"`
	Jitter time.Duration `json:"jitter"`
}

// Validate rejects timings that could produce a non-positive delay.
func (t Timing) Validate() error {
	if t.Base <= 0 || t.Jitter < 0 || t.Base-t.Jitter <= 0 {
		return invalidTiming("", t)
	}
	return nil
}

// Source is the randomness used for jitter. *rand.Rand satisfies it.
type Source interface {
	Int64N(n int64) int64
}

type globalSource struct{}

func (globalSource) Int64N(n int64) int64 { return rand.Int64N(n) }

// NewSource returns a deterministic source, useful in tests.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Delay draws base + U[-jitter, +jitter]. The result is always positive.
func (t Timing) Delay(src Source) time.Duration {
	d := t.Base
	if t.Jitter > 0 {
		if src == nil {
			src = globalSource{}
		}
		d += time.Duration(src.Int64N(int64(2*t.Jitter)+1)) - t.Jitter
	}
	if d <= 0 {
		d = minDelay
	}
	return d
}

// Timetable maps paces to timings.
type Timetable map[Pace]Timing

// DefaultTimetable returns the built-in paces.
func DefaultTimetable() Timetable {
	ms := func(n int) Timing {
		return Timing{Base: time.Duration(n) * time.Millisecond, Jitter: DefaultJitter}
	}
	return Timetable{
		PaceDialog: ms(200),
		PaceOption: ms(400),
		PaceSettle: ms(500),
		PaceIdle:   ms(600),
		PaceClick:  ms(700),
		PaceWield:  ms(800),
		PaceWalk:   ms(1000),
		PaceTalk:   ms(1200),
		PaceFire:   ms(1500),
		PaceSmelt:  ms(1600),
		PaceCast:   ms(1600),
		PaceGather: ms(1800),
		PaceFish:   ms(2000),
	}
}

// Paces lists the built-in pace names in ascending delay order.
func Paces() []Pace {
	return []Pace{
		PaceDialog, PaceOption, PaceSettle, PaceIdle, PaceClick, PaceWield,
		PaceWalk, PaceTalk, PaceFire, PaceSmelt, PaceCast, PaceGather, PaceFish,
	}
}

// IsPace reports whether p is a built-in pace.
func IsPace(p Pace) bool {
	return slices.Contains(Paces(), p)
}

// Merge returns a copy of t with overrides applied.
func (t Timetable) Merge(overrides Timetable) Timetable {
	out := make(Timetable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Validate checks every timing in the table.
func (t Timetable) Validate() error {
	for pace, timing := range t {
		if err := timing.Validate(); err != nil {
			return invalidTiming(pace, timing)
		}
	}
	return nil
}

// Lookup returns the timing for p, falling back to the idle pace and then to
// the built-in idle timing.
func (t Timetable) Lookup(p Pace) Timing {
	if timing, ok := t[p]; ok {
		return timing
	}
	if timing, ok := t[PaceIdle]; ok {
		return timing
	}
	return DefaultTimetable()[PaceIdle]
}
