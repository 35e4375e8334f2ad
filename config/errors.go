package config

import (
	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodeReadFailed    = "CONFIG_READ_FAILED"
	ErrCodeParseFailed   = "CONFIG_PARSE_FAILED"
	ErrCodeSchemaInvalid = "CONFIG_SCHEMA_INVALID"
)

var ErrInvalidConfig = apperrors.New("invalid configuration", apperrors.CategoryValidation).
	WithTextCode(ErrCodeSchemaInvalid)

func invalidConfig(reason string, problems []string) *apperrors.Error {
	err := ErrInvalidConfig.Clone()
	if reason != "" {
		err.Message = "invalid configuration: " + reason
	}
	return err.WithMetadata(map[string]any{"problems": problems})
}
