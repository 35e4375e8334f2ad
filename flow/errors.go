package flow

import (
	"strings"

	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodeInvalidDefinition = "INVALID_DEFINITION"
	ErrCodeInvalidTiming     = "INVALID_TIMING"
)

var (
	ErrInvalidDefinition = apperrors.New("invalid workflow definition", apperrors.CategoryValidation).
				WithTextCode(ErrCodeInvalidDefinition)
	ErrInvalidTiming = apperrors.New("timing must keep base minus jitter positive", apperrors.CategoryValidation).
				WithTextCode(ErrCodeInvalidTiming)
)

func invalidDefinition(name, reason string) *apperrors.Error {
	err := ErrInvalidDefinition.Clone()
	if text := strings.TrimSpace(reason); text != "" {
		err.Message = "invalid workflow definition: " + text
	}
	return err.WithMetadata(map[string]any{"workflow": name})
}

func invalidTiming(pace Pace, t Timing) *apperrors.Error {
	return ErrInvalidTiming.Clone().WithMetadata(map[string]any{
		"pace":   string(pace),
		"base":   t.Base.String(),
		"jitter": t.Jitter.String(),
	})
}
