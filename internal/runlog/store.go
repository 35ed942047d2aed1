package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cardpress/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the ledger database afterwards.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "runlog.db")
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
	if err := store.initSchema(context.Background()); err != nil {
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'cardpress queue clear' or delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

const itemColumns = `id, set_id, set_name, language, status, skipped_set,
    skipped_cards, rendered_cards, outputs_json, error_message, review_reason,
    needs_review, progress_stage, progress_message, created_at, updated_at`

// NewItem inserts a pending item for a (set, language) pair. An existing item
// for the pair is reset to pending and reused so repeated runs don't
// accumulate rows.
func (s *Store) NewItem(ctx context.Context, setID, setName, language string) (*Item, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_items (set_id, set_name, language, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (set_id, language) DO UPDATE SET
             set_name = excluded.set_name,
             status = excluded.status,
             skipped_set = 0, skipped_cards = 0, rendered_cards = 0,
             outputs_json = NULL, error_message = NULL, review_reason = NULL,
             needs_review = 0, progress_stage = NULL, progress_message = NULL,
             updated_at = excluded.updated_at`,
		setID, setName, language, StatusPending, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert run item: %w", err)
	}
	return s.FindPair(ctx, setID, language)
}

// GetByID fetches a ledger item by identifier. Missing items return nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM run_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindPair returns the item for a (set, language) pair, or nil.
func (s *Store) FindPair(ctx context.Context, setID, language string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM run_items WHERE set_id = ? AND language = ?`,
		setID, language)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pair: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing ledger item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_items
         SET set_name = ?, status = ?, skipped_set = ?, skipped_cards = ?,
             rendered_cards = ?, outputs_json = ?, error_message = ?,
             review_reason = ?, needs_review = ?, progress_stage = ?,
             progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(item.SetName),
		item.Status,
		boolToInt(item.SkippedSet),
		item.SkippedCards,
		item.RenderedCards,
		nullableString(item.OutputsJSON),
		nullableString(item.ErrorMessage),
		nullableString(item.ReviewReason),
		boolToInt(item.NeedsReview),
		nullableString(item.ProgressStage),
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns items filtered by status, or all items when no statuses are
// given, ordered by id.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM run_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM run_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates ledger state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusReview:
			health.Review += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// ResetProcessing rolls interrupted in-flight items back to the last stable
// status. Called on open so a crashed run's items become runnable again.
func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE run_items SET status = ?, updated_at = ? WHERE status = ?`,
			transition.to, time.Now().UTC().Format(time.RFC3339Nano), transition.from)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// RetryFailed moves failed and review items back to pending.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE run_items
         SET status = ?, error_message = NULL, review_reason = NULL,
             needs_review = 0, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusPending, time.Now().UTC().Format(time.RFC3339Nano),
		StatusFailed, StatusReview)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes items in the given statuses, or every item when none are
// given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := `DELETE FROM run_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item            Item
		setName         sql.NullString
		outputsJSON     sql.NullString
		errorMessage    sql.NullString
		reviewReason    sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		skippedSet      int
		needsReview     int
		createdAt       string
		updatedAt       string
	)
	err := row.Scan(
		&item.ID, &item.SetID, &setName, &item.Language, &item.Status,
		&skippedSet, &item.SkippedCards, &item.RenderedCards, &outputsJSON,
		&errorMessage, &reviewReason, &needsReview, &progressStage,
		&progressMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	item.SetName = setName.String
	item.OutputsJSON = outputsJSON.String
	item.ErrorMessage = errorMessage.String
	item.ReviewReason = reviewReason.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.SkippedSet = skippedSet != 0
	item.NeedsReview = needsReview != 0
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		item.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		item.UpdatedAt = t
	}
	return &item, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
