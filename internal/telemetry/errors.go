package telemetry

import "codeberg.org/mutker/wattwatch/internal/errors"

const (
	ErrOffline        = errors.ErrOffline
	ErrTimeout        = errors.ErrTimeout
	ErrHTTP           = errors.ErrHTTP
	ErrInvalidPayload = errors.ErrInvalidPayload
	ErrNetwork        = errors.ErrNetwork
	ErrCanceled       = errors.ErrCanceled

	ErrInvalidEndpoint = errors.ErrorCode("telemetry_invalid_endpoint")
)

// HTTPStatus returns the status code carried by an ErrHTTP error.
func HTTPStatus(err error) (int, bool) {
	for err != nil {
		if appErr, ok := err.(errors.Error); ok && appErr.Code() == ErrHTTP {
			status, ok := appErr.GetData().(int)
			return status, ok
		}
		err = errors.Unwrap(err)
	}

	return 0, false
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	code, ok := errors.CodeOf(err)
	if !ok {
		return false
	}

	switch code {
	case ErrOffline, ErrTimeout, ErrHTTP, ErrNetwork:
		return true
	default:
		return false
	}
}
