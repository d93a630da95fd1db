package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FeedbackStore = (*Store)(nil)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed feedback log.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns ~/.genie/feedback.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".genie", "feedback.db"), nil
}

// NewStore opens (or creates) the feedback database at dbPath.
// If dbPath is empty, defaults to ~/.genie/feedback.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Append stores one feedback record.
func (s *Store) Append(ctx context.Context, rec domain.FeedbackRecord) error {
	if rec.ID == "" || !rec.Label.IsValid() {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, timestamp, label, question, answer, used_rag, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Timestamp.UTC().Format(timeLayout), string(rec.Label),
		rec.Question, rec.Answer, boolToInt(rec.UsedRetrieval), rec.SourcesField())
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.FeedbackRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, label, question, answer, used_rag, sources
		FROM feedback ORDER BY timestamp DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var records []domain.FeedbackRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return records, nil
}

// Counts returns the number of records per label.
func (s *Store) Counts(ctx context.Context) (map[domain.FeedbackLabel]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT label, COUNT(*) FROM feedback GROUP BY label")
	if err != nil {
		return nil, fmt.Errorf("counting feedback: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.FeedbackLabel]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scanning feedback count: %w", err)
		}
		counts[domain.FeedbackLabel(label)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback counts: %w", err)
	}
	return counts, nil
}

// migrate applies, in one transaction each, the migrations newer than the
// recorded schema version.
func (s *Store) migrate() error {
	all, err := migrations.All()
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range all {
		if m.Version <= applied {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func (s *Store) apply(m migrations.Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row scanner) (domain.FeedbackRecord, error) {
	var (
		rec     domain.FeedbackRecord
		ts      string
		label   string
		usedRAG int
		sources string
	)
	if err := row.Scan(&rec.ID, &ts, &label, &rec.Question, &rec.Answer, &usedRAG, &sources); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("scanning feedback: %w", err)
	}
	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("parsing feedback timestamp: %w", err)
	}
	rec.Timestamp = t
	rec.Label = domain.FeedbackLabel(label)
	rec.UsedRetrieval = usedRAG != 0
	rec.Sources = domain.SplitSourcesField(sources)
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
