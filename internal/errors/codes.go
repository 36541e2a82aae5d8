package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrValidation      ErrorCode = "validation_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Telemetry errors
	ErrOffline        ErrorCode = "offline"
	ErrTimeout        ErrorCode = "timeout"
	ErrHTTP           ErrorCode = "http_error"
	ErrInvalidPayload ErrorCode = "invalid_payload"
	ErrNetwork        ErrorCode = "network_error"
	ErrCanceled       ErrorCode = "operation_canceled"

	// Report errors
	ErrNoData ErrorCode = "no_data"
	ErrRender ErrorCode = "render_failed"

	// Storage errors
	ErrStorageInit   ErrorCode = "storage_init_failed"
	ErrStorageAccess ErrorCode = "storage_access_failed"
	ErrStorageClose  ErrorCode = "storage_close_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidInterval: "Invalid interval value",
	ErrValidation:      "Validation failed",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrOffline:         "No internet connection",
	ErrTimeout:         "Request timeout",
	ErrHTTP:            "Unexpected HTTP status",
	ErrInvalidPayload:  "Invalid payload",
	ErrNetwork:         "Network request failed",
	ErrCanceled:        "Operation canceled",
	ErrNoData:          "No data available",
	ErrRender:          "Failed to render output",
	ErrStorageInit:     "Failed to initialize storage",
	ErrStorageAccess:   "Failed to access storage",
	ErrStorageClose:    "Failed to close storage",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
