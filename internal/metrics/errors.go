package metrics

import "codeberg.org/mutker/wattwatch/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("metrics_invalid_config")
	ErrRegister      = errors.ErrorCode("metrics_register_failed")
)
