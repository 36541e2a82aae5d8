package settings

import "codeberg.org/mutker/wattwatch/internal/errors"

const (
	// Configuration Errors
	ErrInvalidDBPath = errors.ErrorCode("settings_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("settings_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("settings_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("settings_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("settings_transaction_failed")

	// Storage Errors
	ErrStorageInit   = errors.ErrStorageInit
	ErrStorageAccess = errors.ErrStorageAccess
	ErrStorageClose  = errors.ErrStorageClose
	ErrInvalidKey    = errors.ErrorCode("settings_invalid_key")
)
