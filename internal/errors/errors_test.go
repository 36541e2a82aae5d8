package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryWrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := errors.New().Wrap(errors.ErrNetwork, cause)

	assert.Equal(t, errors.ErrNetwork, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network_error")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDataKeepsCode(t *testing.T) {
	err := errors.New().New(errors.ErrHTTP).WithData(503)

	assert.Equal(t, 503, err.GetData())
	assert.Equal(t, errors.ErrHTTP, err.Code())
	assert.Contains(t, err.Error(), "503")
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := errors.New().New(errors.ErrTimeout)
	outer := fmt.Errorf("cycle failed: %w", inner)

	assert.True(t, errors.HasCode(outer, errors.ErrTimeout))
	assert.False(t, errors.HasCode(outer, errors.ErrOffline))
	assert.False(t, errors.HasCode(nil, errors.ErrOffline))

	code, ok := errors.CodeOf(outer)
	require.True(t, ok)
	assert.Equal(t, errors.ErrTimeout, code)
}

func TestGetErrorMessageFallsBackToCode(t *testing.T) {
	assert.Equal(t, "Request timeout", errors.GetErrorMessage(errors.ErrTimeout))
	assert.Equal(t, "unknown_code", errors.GetErrorMessage(errors.ErrorCode("unknown_code")))
}

func TestNestedDomainErrors(t *testing.T) {
	inner := errors.New().New(errors.ErrTimeout)
	outer := errors.New().Wrap(errors.ErrCanceled, inner)

	code, ok := errors.CodeOf(outer)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCanceled, code)
	assert.True(t, errors.HasCode(outer, errors.ErrCanceled))
	assert.True(t, errors.HasCode(outer, errors.ErrTimeout))

	_, ok = errors.CodeOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestWithMessageReturnsCopy(t *testing.T) {
	base := errors.New().New(errors.ErrHTTP)
	changed := base.WithMessage("bad gateway").WithData(502)

	assert.Nil(t, base.GetData())
	assert.NotContains(t, base.Error(), "bad gateway")
	assert.Contains(t, changed.Error(), "bad gateway")
	assert.Equal(t, errors.ErrHTTP, changed.Code())
}
