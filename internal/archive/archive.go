// Package archive persists accepted messages to Postgres as a write-only
// audit trail. The hub never reads it back: history replay is served from
// the in-memory buffer only, so archived rows do not make messages durable
// from the client's point of view.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"huddle/internal/hub"
)

// Archive records messages into a single append-only table.
type Archive struct {
	db *sql.DB
}

// Open connects to Postgres and ensures the messages table exists.
func Open(dsn string) (*Archive, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	a := &Archive{db: db}
	if err := a.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS messages (
			id VARCHAR(32) PRIMARY KEY,
			author_id VARCHAR(64) NOT NULL,
			author_name VARCHAR(32) NOT NULL,
			content TEXT NOT NULL,
			kind VARCHAR(8) NOT NULL,
			file_name TEXT,
			file_size BIGINT,
			file_url TEXT,
			file_mime TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := a.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("archive migration failed: %w", err)
	}
	return nil
}

// Record implements hub.Archiver.
func (a *Archive) Record(ctx context.Context, msg hub.Message) error {
	query := `
		INSERT INTO messages
			(id, author_id, author_name, content, kind, file_name, file_size, file_url, file_mime, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	var fileName, fileURL, fileMime sql.NullString
	var fileSize sql.NullInt64
	if msg.FileMeta != nil {
		fileName = sql.NullString{String: msg.FileMeta.Name, Valid: true}
		fileSize = sql.NullInt64{Int64: msg.FileMeta.SizeBytes, Valid: true}
		fileURL = sql.NullString{String: msg.FileMeta.URL, Valid: true}
		fileMime = sql.NullString{String: msg.FileMeta.MimeType, Valid: true}
	}

	_, err := a.db.ExecContext(ctx, query,
		msg.ID, msg.AuthorID, msg.AuthorName, msg.Content, string(msg.Kind),
		fileName, fileSize, fileURL, fileMime, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("archive message %s: %w", msg.ID, err)
	}
	return nil
}

// Close releases the database pool.
func (a *Archive) Close() error {
	return a.db.Close()
}
