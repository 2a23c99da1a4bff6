package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/stockwire/nse-announcements/internal/scraper"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrNoSnapshot is returned when no snapshot exists for a symbol.
var ErrNoSnapshot = errors.New("no snapshot for symbol")

// Repository provides access to persisted announcement snapshots.
type Repository struct {
	dbConn *sqlx.DB
}

// Open establishes a connection to the SQLite database file and applies all
// pending migrations. WAL mode and foreign keys are enabled, and the pool is
// pinned to a single connection, which SQLite handles best under write load.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000&_fk=true", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migration : %w", err)
	}
	return db, nil
}

// NewRepository wraps an open database connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{dbConn: db}
}

// Close terminates the database connection.
func (repo *Repository) Close() error {
	if err := repo.dbConn.Close(); err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

type snapshotRow struct {
	Symbol    string    `db:"symbol"`
	FetchedAt time.Time `db:"fetched_at"`
	Payload   string    `db:"payload"`
}

// UpsertSnapshot stores the announcements scraped for symbol at fetchedAt,
// replacing any previous snapshot for that symbol.
func (repo *Repository) UpsertSnapshot(symbol string, fetchedAt time.Time, announcements []scraper.Announcement) error {
	payload, err := json.Marshal(announcements)
	if err != nil {
		return fmt.Errorf("encoding snapshot payload : %w", err)
	}

	_, err = repo.dbConn.NamedExec(`
		INSERT INTO announcement_snapshots (symbol, fetched_at, payload)
		VALUES (:symbol, :fetched_at, :payload)
		ON CONFLICT (symbol) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload`,
		snapshotRow{
			Symbol:    symbol,
			FetchedAt: fetchedAt.UTC(),
			Payload:   string(payload),
		})
	if err != nil {
		return fmt.Errorf("upserting snapshot : %w", err)
	}
	return nil
}

// Snapshot returns the stored announcements for symbol and when they were
// fetched. ErrNoSnapshot is returned when the symbol has never been scraped.
func (repo *Repository) Snapshot(symbol string) ([]scraper.Announcement, time.Time, error) {
	var row snapshotRow
	err := repo.dbConn.Get(&row, `
		SELECT symbol, fetched_at, payload
		FROM announcement_snapshots
		WHERE symbol = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("selecting snapshot : %w", err)
	}

	var announcements []scraper.Announcement
	if err := json.Unmarshal([]byte(row.Payload), &announcements); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding snapshot payload : %w", err)
	}
	return announcements, row.FetchedAt, nil
}

// DeleteSnapshot removes the stored snapshot for symbol, if any.
func (repo *Repository) DeleteSnapshot(symbol string) error {
	if _, err := repo.dbConn.Exec(`DELETE FROM announcement_snapshots WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("deleting snapshot : %w", err)
	}
	return nil
}
