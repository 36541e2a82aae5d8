package settings_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (settings.Settings, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	s, err := settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	_, ok, err := s.Get(ctx, "apiUrl")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetMany(ctx, map[string]string{
		"apiUrl":          "https://meter.example/api",
		"refreshInterval": "5",
	}))

	v, ok, err := s.Get(ctx, "apiUrl")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://meter.example/api", v)

	require.NoError(t, s.SetMany(ctx, map[string]string{"refreshInterval": "10"}))
	v, _, err = s.Get(ctx, "refreshInterval")
	require.NoError(t, err)
	assert.Equal(t, "10", v)

	require.NoError(t, s.Delete(ctx, "apiUrl", "missing"))
	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"refreshInterval": "10"}, all)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SetMany(ctx, map[string]string{"deviceId": "ESP8266_02"}))
	require.NoError(t, s.Close())

	s, err = settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "deviceId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ESP8266_02", v)
}

func TestSQLiteRejectsEmptyKey(t *testing.T) {
	s, _ := openTemp(t)

	err := s.SetMany(context.Background(), map[string]string{"": "x"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, settings.ErrInvalidKey))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := settings.Open(settings.Config{}, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, settings.ErrInvalidDBPath))
}

func TestSchemaVersionRecorded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	s, err := settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	version, err := settings.Version(db)
	require.NoError(t, err)
	assert.Equal(t, settings.SchemaVersion, version)
}

func TestOutdatedSchemaIsMigrated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		PRAGMA user_version = 99;
		CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO settings VALUES ('deviceId', 'legacy-device');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "deviceId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "legacy-device", v)

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(path), "settings_v99_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestUnversionedSettingsAreCarriedOver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO settings VALUES ('refreshInterval', '5');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := settings.Open(settings.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "refreshInterval")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(path), "settings_v0_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestMemoryCopiesInput(t *testing.T) {
	ctx := context.Background()
	initial := map[string]string{"darkMode": "true"}
	s := settings.NewMemory(initial)
	initial["darkMode"] = "false"

	v, ok, err := s.Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	all, err := s.All(ctx)
	require.NoError(t, err)
	all["darkMode"] = "mutated"
	v, _, _ = s.Get(ctx, "darkMode")
	assert.Equal(t, "true", v)
}
