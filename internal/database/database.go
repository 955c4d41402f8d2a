package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/models"
	"github.com/nzvengeance/gw2style/internal/skins"
	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DB provides the data access layer
type DB struct {
	conn   *sql.DB
	driver string
}

// New creates a new database connection based on config
func New(cfg *config.Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch cfg.DBDriver {
	case "sqlite":
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
		conn, err = sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1) // SQLite is single-writer
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DATABASE_URL required for postgres driver")
		}
		conn, err = sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		conn.SetMaxOpenConns(10)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn, driver: cfg.DBDriver}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// rebind converts ? placeholders for the active driver
func (db *DB) rebind(query string) string {
	if db.driver == "postgres" {
		return replacePlaceholders(query)
	}
	return query
}

// autoIncrement returns the correct auto-increment syntax
func (db *DB) autoIncrement() string {
	if db.driver == "postgres" {
		return "SERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// onConflictUpdate returns the correct upsert syntax
func (db *DB) onConflictUpdate(conflictCol, updateCols string) string {
	if db.driver == "postgres" {
		return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", conflictCol, updateCols)
	}
	return fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", conflictCol, updateCols)
}

// timestampType returns the correct timestamp type
func (db *DB) timestampType() string {
	if db.driver == "postgres" {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

// now returns the correct current timestamp function
func (db *DB) now() string {
	if db.driver == "postgres" {
		return "NOW()"
	}
	return "datetime('now')"
}

// --- Skin Snapshot Operations ---
// DB satisfies skins.Store.

const snapshotRowID = 1

// Load returns the stored snapshot or skins.ErrNoSnapshot.
func (db *DB) Load(ctx context.Context) (*models.SkinSnapshot, error) {
	var snap models.SkinSnapshot
	err := db.conn.QueryRowContext(ctx,
		db.rebind("SELECT version, generated_at, skin_count FROM skin_snapshots WHERE id = ?"),
		snapshotRowID,
	).Scan(&snap.Version, &snap.GeneratedAt, &snap.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, skins.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot metadata: %w", err)
	}
	snap.GeneratedAt = snap.GeneratedAt.UTC()

	rows, err := db.conn.QueryContext(ctx, "SELECT id, name, type, subtype FROM skins ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("reading snapshot skins: %w", err)
	}
	defer rows.Close()

	snap.Skins = []models.SnapshotSkin{}
	for rows.Next() {
		var s models.SnapshotSkin
		var subtype sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &subtype); err != nil {
			return nil, err
		}
		if subtype.Valid {
			sub := subtype.String
			s.Subtype = &sub
		}
		snap.Skins = append(snap.Skins, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.Types = append([]string(nil), skins.AllowedTypes...)
	return &snap, nil
}

// Save replaces the stored snapshot in one transaction.
func (db *DB) Save(ctx context.Context, snap *models.SkinSnapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM skins"); err != nil {
		return fmt.Errorf("clearing skins: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, db.rebind("INSERT INTO skins (id, name, type, subtype, position) VALUES (?, ?, ?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("preparing skin insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range snap.Skins {
		var subtype sql.NullString
		if s.Subtype != nil {
			subtype = sql.NullString{String: *s.Subtype, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, s.ID, s.Name, s.Type, subtype, i); err != nil {
			return fmt.Errorf("inserting skin %d: %w", s.ID, err)
		}
	}

	meta := fmt.Sprintf(`INSERT INTO skin_snapshots (id, version, generated_at, skin_count, updated_at)
		VALUES (?, ?, ?, ?, %s) %s`,
		db.now(),
		db.onConflictUpdate("id", "version=excluded.version, generated_at=excluded.generated_at, skin_count=excluded.skin_count, updated_at=excluded.updated_at"),
	)
	if _, err := tx.ExecContext(ctx, db.rebind(meta), snapshotRowID, snap.Version, snap.GeneratedAt.UTC(), len(snap.Skins)); err != nil {
		return fmt.Errorf("writing snapshot metadata: %w", err)
	}

	return tx.Commit()
}

// Clear removes the stored snapshot.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM skins"); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx, "DELETE FROM skin_snapshots")
	return err
}

// --- Sync History Operations ---

func (db *DB) InsertSyncHistory(ctx context.Context, endpoint, status string) (int, error) {
	query := fmt.Sprintf(`INSERT INTO sync_history (endpoint, status, record_count, error_message, started_at) VALUES (?, ?, 0, '', %s)`, db.now())
	if db.driver == "postgres" {
		query = replacePlaceholders(query) + " RETURNING id"
		var id int
		err := db.conn.QueryRowContext(ctx, query, endpoint, status).Scan(&id)
		return id, err
	}

	result, err := db.conn.ExecContext(ctx, query, endpoint, status)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	return int(id), err
}

func (db *DB) UpdateSyncHistory(ctx context.Context, id int, status string, count int, errMsg string) error {
	query := fmt.Sprintf("UPDATE sync_history SET status = ?, record_count = ?, error_message = ?, completed_at = %s WHERE id = ?", db.now())
	_, err := db.conn.ExecContext(ctx, db.rebind(query), status, count, errMsg, id)
	return err
}

// GetLatestSyncHistory returns up to limit runs, newest first.
func (db *DB) GetLatestSyncHistory(ctx context.Context, limit int) ([]models.SyncHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx, db.rebind(`
		SELECT id, endpoint, status, record_count, error_message, started_at, completed_at
		FROM sync_history ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.SyncHistory{}
	for rows.Next() {
		var h models.SyncHistory
		var errMsg sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&h.ID, &h.Endpoint, &h.Status, &h.RecordCount, &errMsg, &h.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		h.ErrorMessage = errMsg.String
		if completedAt.Valid {
			t := completedAt.Time
			h.CompletedAt = &t
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// GetLastSuccessfulSync returns when endpoint last completed successfully.
func (db *DB) GetLastSuccessfulSync(ctx context.Context, endpoint string) (*time.Time, error) {
	var completedAt sql.NullTime
	err := db.conn.QueryRowContext(ctx, db.rebind(`
		SELECT completed_at FROM sync_history
		WHERE endpoint = ? AND status = 'success' ORDER BY id DESC LIMIT 1`), endpoint).Scan(&completedAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !completedAt.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &completedAt.Time, nil
}

// --- Settings ---

func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, db.rebind("SELECT value FROM app_settings WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	query := "INSERT INTO app_settings (key, value) VALUES (?, ?) " + db.onConflictUpdate("key", "value=excluded.value")
	_, err := db.conn.ExecContext(ctx, db.rebind(query), key, value)
	return err
}

// replacePlaceholders converts ? to $1, $2, etc. for PostgreSQL
func replacePlaceholders(query string) string {
	result := make([]byte, 0, len(query)+10)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, []byte(fmt.Sprintf("%d", n))...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
