package stagehand

import (
	stderrors "errors"

	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodeEmptyStages         = "EMPTY_STAGES"
	ErrCodeDuplicateStage      = "DUPLICATE_STAGE"
	ErrCodeUnknownStage        = "UNKNOWN_STAGE"
	ErrCodeDuplicateWorkflow   = "DUPLICATE_WORKFLOW"
	ErrCodeNilWorkflow         = "NIL_WORKFLOW"
	ErrCodeRegistryInitialized = "REGISTRY_ALREADY_INITIALIZED"
)

var (
	ErrEmptyStages = apperrors.New("stage list cannot be empty", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeEmptyStages)
	ErrDuplicateStage = apperrors.New("stage listed more than once", apperrors.CategoryBadInput).
				WithTextCode(ErrCodeDuplicateStage)
	ErrUnknownStage = apperrors.New("unknown stage", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeUnknownStage)
	ErrDuplicateWorkflow = apperrors.New("stage already owned by another workflow", apperrors.CategoryConflict).
				WithTextCode(ErrCodeDuplicateWorkflow)
	ErrNilWorkflow = apperrors.New("workflow cannot be nil", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeNilWorkflow)
	ErrRegistryInitialized = apperrors.New("workflow registry already initialized", apperrors.CategoryConflict).
				WithTextCode(ErrCodeRegistryInitialized)
)

func stageError(base *apperrors.Error, stage Stage) *apperrors.Error {
	return base.Clone().WithMetadata(map[string]any{"stage": string(stage)})
}

// ErrorCode returns the text code carried by err, or "" when err is not a
// go-errors value.
func ErrorCode(err error) string {
	var ge *apperrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}
