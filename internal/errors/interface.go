package errors

// ErrorCode identifies a failure category. Callers branch on codes, never on
// message text: CodeOf returns the outermost code in a chain and HasCode
// matches any code in it, so wrapping a domain error in another domain error
// or in fmt.Errorf("%w") keeps both checks working.
type ErrorCode string

// Error is a domain error. Its code is fixed at creation; WithMessage and
// WithData return copies and leave the receiver untouched.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	// GetData returns the attached payload, such as an HTTP status for ErrHTTP.
	GetData() any
	Unwrap() error
}

// Factory creates domain errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
