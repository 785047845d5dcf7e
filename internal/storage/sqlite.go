//go:build cgo

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite implements Storage using SQLite with sqlite-vec
type SQLite struct {
	conn       *sql.DB
	table      string
	embeddings string
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// NewSQLite creates a new SQLite storage
func NewSQLite(path, table string, dimensions int) (*SQLite, error) {
	sqlite_vec.Auto()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{
		conn:       conn,
		table:      quoteIdent(table),
		embeddings: quoteIdent(table + "_embeddings"),
	}
	if err := s.initSchema(table, dimensions); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) initSchema(table string, dimensions int) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			text TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s(category);

		CREATE VIRTUAL TABLE IF NOT EXISTS %[2]s USING vec0(
			document_id INTEGER PRIMARY KEY,
			embedding FLOAT[%[4]d]
		);
	`, s.table, s.embeddings, quoteIdent("idx_"+table+"_category"), dimensions)
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Clear(ctx context.Context) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// vec0 tables have no foreign keys, so vectors are deleted explicitly
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.embeddings)); err != nil {
		return 0, fmt.Errorf("failed to clear embeddings: %w", err)
	}

	result, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table))
	if err != nil {
		return 0, fmt.Errorf("failed to clear knowledge: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return n, tx.Commit()
}

func (s *SQLite) Insert(ctx context.Context, doc Document) (*Document, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (category, text) VALUES (?, ?)`, s.table),
		doc.Category, doc.Text,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	embeddingJSON, err := json.Marshal(doc.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (document_id, embedding) VALUES (?, ?)`, s.embeddings),
		id, string(embeddingJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Document{
		ID:       strconv.FormatInt(id, 10),
		Category: doc.Category,
		Text:     doc.Text,
	}, nil
}

func (s *SQLite) Search(ctx context.Context, embedding []float32, opts SearchOpts) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.category, d.text, 1 - vec_distance_cosine(e.embedding, ?) AS score
		FROM %s d
		JOIN %s e ON d.id = e.document_id
		WHERE 1=1
	`, s.table, s.embeddings)
	args := []interface{}{string(embeddingJSON)}

	if opts.Category != "" {
		query += " AND d.category = ?"
		args = append(args, opts.Category)
	}

	query += `
		ORDER BY score DESC
		LIMIT ?
	`
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var id int64
		if err := rows.Scan(&id, &r.Category, &r.Text, &r.Score); err != nil {
			return nil, err
		}
		r.ID = strconv.FormatInt(id, 10)
		results = append(results, r)
	}

	return results, rows.Err()
}

func (s *SQLite) List(ctx context.Context, opts ListOpts) ([]Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT id, category, text FROM %s WHERE 1=1`, s.table)
	args := []interface{}{}

	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}

	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var id int64
		if err := rows.Scan(&id, &d.Category, &d.Text); err != nil {
			return nil, err
		}
		d.ID = strconv.FormatInt(id, 10)
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func (s *SQLite) Count(ctx context.Context, category string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}

	var n int64
	err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *SQLite) Scan(ctx context.Context, fn func(Document) error) error {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT d.id, d.category, d.text, vec_to_json(e.embedding)
		FROM %s d
		JOIN %s e ON d.id = e.document_id
		ORDER BY d.id
	`, s.table, s.embeddings))
	if err != nil {
		return err
	}
	defer rows.Close()

	// collect first: fn may issue its own queries on the same connection pool
	var docs []Document
	for rows.Next() {
		var d Document
		var id int64
		var embeddingJSON string
		if err := rows.Scan(&id, &d.Category, &d.Text, &embeddingJSON); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &d.Embedding); err != nil {
			return fmt.Errorf("failed to decode embedding for document %d: %w", id, err)
		}
		d.ID = strconv.FormatInt(id, 10)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}
