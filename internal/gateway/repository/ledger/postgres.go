package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"bidforge/internal/estimate"
)

// PostgresStore persists the ledger in postgres over the pgx stdlib driver.
// Won-bid lookups sit on the synthesis hot path, so they are cached per user
// and invalidated on any write for that user.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	wonCache *lru.Cache[string, []estimate.HistoricalBid]
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, []estimate.HistoricalBid](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, wonCache: cache}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS estimates (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  scope TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  margin DOUBLE PRECISION NOT NULL DEFAULT 0,
  result JSONB NOT NULL,
  summary JSONB NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_estimates_user_id ON estimates (user_id);
CREATE INDEX IF NOT EXISTS idx_estimates_user_status ON estimates (user_id, status);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	// ON CONFLICT DO NOTHING keeps accept retries idempotent.
	_, err = s.db.ExecContext(ctx, `
INSERT INTO estimates (id, user_id, scope, location, status, margin, result, summary, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.UserID, rec.Scope, rec.Location, rec.Status, rec.Margin,
		resultJSON, summaryJSON, rec.CreatedAt)
	if err == nil {
		s.wonCache.Remove(rec.UserID)
	}
	return err
}

func (s *PostgresStore) History(ctx context.Context, userID string) ([]Record, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, scope, location, status, margin, result, summary, created_at
FROM estimates WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, userID, id, status string, margin float64) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE estimates SET status = $3, margin = $4 WHERE id = $1 AND user_id = $2`,
		id, userID, strings.ToLower(strings.TrimSpace(status)), margin)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	s.wonCache.Remove(userID)
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	s.wonCache.Remove(userID)
	return nil
}

func (s *PostgresStore) WonBids(ctx context.Context, userID string, limit int) ([]estimate.HistoricalBid, error) {
	if bids, ok := s.wonCache.Get(userID); ok {
		if limit > 0 && len(bids) > limit {
			bids = bids[:limit]
		}
		return bids, nil
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, scope, location, status, margin, result, summary, created_at
FROM estimates WHERE user_id = $1 AND status = $2
ORDER BY created_at DESC LIMIT $3`, userID, StatusWon, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []estimate.HistoricalBid
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, toBid(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.wonCache.Add(userID, bids)
	return bids, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec         Record
		resultJSON  []byte
		summaryJSON []byte
	)
	if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Scope, &rec.Location, &rec.Status,
		&rec.Margin, &resultJSON, &summaryJSON, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode result for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
		return Record{}, fmt.Errorf("decode summary for %s: %w", rec.ID, err)
	}
	return rec, nil
}
