package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
)

const recordColumns = `id, run_id, episode, kind, fact_index, shop_index, status,
	artifact_path, video_id, error_category, error_message, created_at, updated_at`

// Store manages run ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewRun inserts a ledger record for a freshly selected episode.
func (s *Store) NewRun(ctx context.Context, runID string, episode rotation.Episode) (*Record, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("run id is required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var shopIndex any
	if episode.Shop != nil {
		shopIndex = episode.Shop.Index
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, episode, kind, fact_index, shop_index, status,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		episode.Number,
		string(episode.Kind),
		episode.Fact.Index,
		shopIndex,
		StatusSelected,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a ledger record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM runs WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return record, nil
}

// GetByRunID fetches a ledger record by its run identifier.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM runs WHERE run_id = ?`, runID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run by run_id: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing ledger record.
func (s *Store) Update(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	if !record.Status.Valid() {
		return fmt.Errorf("invalid status %q", record.Status)
	}
	record.UpdatedAt = time.Now().UTC()

	var shopIndex any
	if record.ShopIndex != nil {
		shopIndex = *record.ShopIndex
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET episode = ?, kind = ?, fact_index = ?, shop_index = ?, status = ?,
             artifact_path = ?, video_id = ?, error_category = ?, error_message = ?,
             updated_at = ?
         WHERE id = ?`,
		record.Episode,
		record.Kind,
		record.FactIndex,
		shopIndex,
		record.Status,
		nullableString(record.ArtifactPath),
		nullableString(record.VideoID),
		nullableString(record.ErrorCategory),
		nullableString(record.ErrorMessage),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first, bounded by limit
// (0 means a default of 20).
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Last returns the most recent record, or nil when the ledger is empty.
func (s *Store) Last(ctx context.Context) (*Record, error) {
	records, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record        Record
		shopIndex     sql.NullInt64
		artifactPath  sql.NullString
		videoID       sql.NullString
		errorCategory sql.NullString
		errorMessage  sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(
		&record.ID,
		&record.RunID,
		&record.Episode,
		&record.Kind,
		&record.FactIndex,
		&shopIndex,
		&record.Status,
		&artifactPath,
		&videoID,
		&errorCategory,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if shopIndex.Valid {
		idx := int(shopIndex.Int64)
		record.ShopIndex = &idx
	}
	record.ArtifactPath = artifactPath.String
	record.VideoID = videoID.String
	record.ErrorCategory = errorCategory.String
	record.ErrorMessage = errorMessage.String

	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &record, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
