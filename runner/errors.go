package runner

import apperrors "github.com/goliatone/go-errors"

const (
	ErrCodeMaxTicks = "MAX_TICKS_REACHED"
	ErrCodeStopped  = "LOOP_STOPPED"
)

var (
	ErrMaxTicks = apperrors.New("tick budget exhausted", apperrors.CategoryHandler).
			WithTextCode(ErrCodeMaxTicks)
	ErrStopped = apperrors.New("loop stopped", apperrors.CategoryHandler).
			WithTextCode(ErrCodeStopped)
)
