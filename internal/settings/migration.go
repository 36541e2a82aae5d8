package settings

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
)

func backupDatabase(db *sql.DB, dbPath string, version int, log logger.Logger) (string, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	backupPath := filepath.Join(filepath.Dir(dbPath),
		fmt.Sprintf("settings_v%d_%s.db", version, timestamp))

	// VACUUM INTO requires no active transaction
	quoted := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return "", errors.New().WithData(ErrSchemaMigrationFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_backup",
			Path:  backupPath,
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", backupPath).
		Int("version", version).
		Msg("Settings backup created")

	return backupPath, nil
}

// ValidateAndUpdateSchema creates the schema on a new database. A database
// written by another schema version, or by an unversioned build, is backed up
// and recreated; the stored preferences are carried over when readable.
func ValidateAndUpdateSchema(db *sql.DB, dbPath string, log logger.Logger) error {
	version, err := Version(db)
	if err != nil {
		return err
	}

	if version == SchemaVersion {
		log.Debug().Int("version", version).Msg("Settings schema is current")
		return nil
	}

	var carried map[string]string
	if version != 0 || hasSettings(db) {
		if _, err := backupDatabase(db, dbPath, version, log); err != nil {
			return err
		}
		carried = readLegacySettings(db, log)
		if err := dropTables(db, log); err != nil {
			return err
		}
	}

	if err := createSchema(db, log); err != nil {
		return err
	}

	if len(carried) == 0 {
		return nil
	}

	now := time.Now().Unix()
	for k, v := range carried {
		if _, err := db.Exec(upsertSettingSQL, k, v, now); err != nil {
			return errors.New().Wrap(ErrSchemaMigrationFailed, err)
		}
	}
	log.Info().Int("keys", len(carried)).Msg("Settings carried over to new schema")

	return nil
}

func readLegacySettings(db *sql.DB, log logger.Logger) map[string]string {
	rows, err := db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		log.Debug().Err(err).Msg("No readable legacy settings")
		return nil
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			log.Debug().Err(err).Msg("Skipping unreadable legacy setting")
			continue
		}
		values[k] = v
	}

	return values
}

func dropTables(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback drop tables")
			}
		}
	}()

	for _, table := range []string{"settings"} {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errFactory.WithData(ErrSchemaMigrationFailed, struct {
				Phase string
				Table string
				Error string
			}{
				Phase: "drop_table",
				Table: table,
				Error: err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	committed = true

	return nil
}
