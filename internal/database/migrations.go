package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

func (db *DB) migrate() error {
	log.Info().Msg("running database migrations")

	migrations := []string{
		db.migrationSkins(),
		db.migrationSkinSnapshots(),
		db.migrationSyncHistory(),
		db.migrationAppSettings(),
	}

	for i, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_skins_type ON skins(type)",
		"CREATE INDEX IF NOT EXISTS idx_sync_history_started_at ON sync_history(started_at)",
	}
	for _, idx := range indexes {
		if _, err := db.conn.Exec(idx); err != nil {
			return fmt.Errorf("index creation: %w", err)
		}
	}

	log.Info().Msg("migrations complete")
	return nil
}

func (db *DB) migrationSkins() string {
	return `CREATE TABLE IF NOT EXISTS skins (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		subtype TEXT,
		position INTEGER NOT NULL
	)`
}

// skin_snapshots holds a single row describing the stored snapshot.
func (db *DB) migrationSkinSnapshots() string {
	ts := db.timestampType()
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS skin_snapshots (
		id INTEGER PRIMARY KEY,
		version TEXT NOT NULL,
		generated_at %s NOT NULL,
		skin_count INTEGER NOT NULL DEFAULT 0,
		updated_at %s
	)`, ts, ts)
}

func (db *DB) migrationSyncHistory() string {
	ts := db.timestampType()
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sync_history (
		id %s,
		endpoint TEXT NOT NULL,
		status TEXT NOT NULL,
		record_count INTEGER DEFAULT 0,
		error_message TEXT,
		started_at %s DEFAULT CURRENT_TIMESTAMP,
		completed_at %s
	)`, db.autoIncrement(), ts, ts)
}

func (db *DB) migrationAppSettings() string {
	return `CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
}
