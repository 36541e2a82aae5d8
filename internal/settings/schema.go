package settings

import (
	"database/sql"
	"strconv"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
)

// SchemaVersion is stored in the database header as PRAGMA user_version.
const SchemaVersion = 1

const (
	createSettingsSQL = `
	   CREATE TABLE IF NOT EXISTS settings (
	       key         TEXT PRIMARY KEY CHECK (length(key) > 0),
	       value       TEXT NOT NULL,
	       updated_at  INTEGER NOT NULL
	   )`

	upsertSettingSQL = `
    INSERT INTO settings (key, value, updated_at)
    VALUES (?, ?, ?)
    ON CONFLICT(key) DO UPDATE SET
        value = excluded.value,
        updated_at = excluded.updated_at`
)

// Version reads the preferences schema version. A fresh file reports 0.
func Version(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, errors.New().Wrap(ErrSchemaValidationFailed, err)
	}
	return v, nil
}

// hasSettings reports whether a settings table was left by an unversioned build.
func hasSettings(db *sql.DB) bool {
	var n int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'settings'`).Scan(&n)
	return err == nil && n > 0
}

// createSchema creates the settings table and stamps the version in one transaction.
func createSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Debug().Err(err).Msg("Failed to rollback schema creation")
		}
	}()

	stmts := []string{
		createSettingsSQL,
		// PRAGMA does not take bind parameters.
		"PRAGMA user_version = " + strconv.Itoa(SchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return errFactory.WithData(ErrSchemaInitFailed, struct {
				Error string
				SQL   string
			}{
				Error: err.Error(),
				SQL:   stmt,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	log.Info().Int("version", SchemaVersion).Msg("Settings schema created")
	return nil
}
