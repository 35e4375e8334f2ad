package cli

import apperrors "github.com/goliatone/go-errors"

const ErrCodeDurationElapsed = "RUN_DURATION_ELAPSED"

// ErrDurationElapsed stops a run whose --duration ran out. It is not a
// failure.
var ErrDurationElapsed = apperrors.New("run duration elapsed", apperrors.CategoryHandler).
	WithTextCode(ErrCodeDurationElapsed)
