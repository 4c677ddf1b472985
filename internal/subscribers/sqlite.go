package subscribers

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"marketbot/internal/config"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

var _ Store = (*sqliteStore)(nil)

func openSQLite(cfg config.SubscribersConfig, log logx.Logger) (Store, error) {
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS subscribers (id TEXT PRIMARY KEY)"); err != nil {
		_ = db.Close()
		return nil, unavailable("sqlite migrate", err)
	}
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Add(ctx context.Context, id transport.Recipient) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO subscribers (id) VALUES (?)", string(id))
	if err != nil {
		return unavailable("sqlite insert", err)
	}
	return nil
}

func (s *sqliteStore) Remove(ctx context.Context, id transport.Recipient) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE id = ?", string(id))
	if err != nil {
		return unavailable("sqlite delete", err)
	}
	return nil
}

func (s *sqliteStore) ListAll(ctx context.Context) ([]transport.Recipient, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM subscribers")
	if err != nil {
		return nil, unavailable("sqlite select", err)
	}
	defer rows.Close()

	var out []transport.Recipient
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable("sqlite scan", err)
		}
		out = append(out, transport.Recipient(id))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("sqlite rows", err)
	}
	return out, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
