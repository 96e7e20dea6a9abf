package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/okian/flowfit/internal/domain/model"
)

// SQLStore persists submissions in sqlite or postgres through database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens the database and ensures the schema exists. driver is
// "sqlite" (modernc, dsn is a file path or URI) or "postgres" (pgx, dsn is a
// connection URL).
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:flowfit.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/flowfit?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent submissions.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  ratings_json TEXT NOT NULL,
  idempotency_key TEXT
);
CREATE INDEX IF NOT EXISTS submissions_created_idx ON submissions (created_at, id);
CREATE UNIQUE INDEX IF NOT EXISTS submissions_idempotency_key_idx ON submissions (idempotency_key);
`

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, sub Submission) error {
	defer observe("save", time.Now())
	raw, err := encodeRatings(sub.Ratings)
	if err != nil {
		return err
	}
	// NULL keys never collide, so unkeyed submissions are always inserted.
	key := sql.NullString{String: sub.IdempotencyKey, Valid: sub.IdempotencyKey != ""}
	res, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO submissions (id, name, created_at, ratings_json, idempotency_key) VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`),
		sub.ID, sub.Name, toMillis(sub.CreatedAt), raw, key)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if key.Valid {
			if _, err := s.GetByKey(ctx, key.String); err == nil {
				return ErrDuplicateKey
			}
		}
		return ErrConflict
	}
	return nil
}

const selectColumns = `SELECT id, name, created_at, ratings_json, idempotency_key FROM submissions`

func (s *SQLStore) Get(ctx context.Context, id string) (Submission, error) {
	defer observe("get", time.Now())
	row := s.db.QueryRowContext(ctx, s.rebind(selectColumns+` WHERE id = ?`), id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *SQLStore) GetByKey(ctx context.Context, key string) (Submission, error) {
	defer observe("get_by_key", time.Now())
	if key == "" {
		return Submission{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.rebind(selectColumns+` WHERE idempotency_key = ?`), key)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *SQLStore) List(ctx context.Context) ([]Submission, error) {
	defer observe("list", time.Now())
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	defer observe("count", time.Now())
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(sc scanner) (Submission, error) {
	var (
		sub       Submission
		createdAt int64
		raw       string
		key       sql.NullString
	)
	if err := sc.Scan(&sub.ID, &sub.Name, &createdAt, &raw, &key); err != nil {
		return Submission{}, err
	}
	sub.IdempotencyKey = key.String
	ratings, err := decodeRatings(raw)
	if err != nil {
		return Submission{}, err
	}
	sub.CreatedAt = fromMillis(createdAt)
	sub.Ratings = ratings
	return sub, nil
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func encodeRatings(rs []model.Rating) (string, error) {
	if len(rs) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(rs)
	if err != nil {
		return "", fmt.Errorf("marshal ratings: %w", err)
	}
	return string(b), nil
}

func decodeRatings(v string) ([]model.Rating, error) {
	var rs []model.Rating
	if err := json.Unmarshal([]byte(v), &rs); err != nil {
		return nil, fmt.Errorf("unmarshal ratings: %w", err)
	}
	return rs, nil
}
