package report

import "codeberg.org/mutker/wattwatch/internal/errors"

const (
	ErrNoData = errors.ErrNoData
	ErrRender = errors.ErrRender
)
