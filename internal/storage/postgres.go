package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Postgres implements Storage using PostgreSQL with pgvector
type Postgres struct {
	pool       *pgxpool.Pool
	table      string
	embeddings string
	dimensions int
}

// NewPostgres creates a new Postgres storage.
// Documents go to table; vectors to table_embeddings as vector(dimensions).
func NewPostgres(ctx context.Context, dsn, table string, dimensions int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{
		pool:       pool,
		table:      pgx.Identifier{table}.Sanitize(),
		embeddings: pgx.Identifier{table + "_embeddings"}.Sanitize(),
		dimensions: dimensions,
	}
	if err := p.initSchema(ctx, table); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context, table string) error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS %[1]s (
			id SERIAL PRIMARY KEY,
			category TEXT NOT NULL,
			text TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS %[2]s (
			document_id INTEGER PRIMARY KEY REFERENCES %[1]s(id) ON DELETE CASCADE,
			embedding vector(%[3]d) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %[4]s ON %[1]s(category);

		CREATE INDEX IF NOT EXISTS %[5]s
		ON %[2]s USING hnsw (embedding vector_cosine_ops);
	`,
		p.table, p.embeddings, p.dimensions,
		pgx.Identifier{"idx_" + table + "_category"}.Sanitize(),
		pgx.Identifier{"idx_" + table + "_vector"}.Sanitize(),
	)
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Clear(ctx context.Context) (int64, error) {
	// embeddings go with their rows via ON DELETE CASCADE
	tag, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, p.table))
	if err != nil {
		return 0, fmt.Errorf("failed to clear knowledge: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Insert(ctx context.Context, doc Document) (*Document, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (category, text) VALUES ($1, $2) RETURNING id`, p.table),
		doc.Category, doc.Text,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	vec := pgvector.NewVector(doc.Embedding)
	_, err = tx.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (document_id, embedding) VALUES ($1, $2)`, p.embeddings),
		id, vec,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &Document{
		ID:       strconv.FormatInt(id, 10),
		Category: doc.Category,
		Text:     doc.Text,
	}, nil
}

func (p *Postgres) Search(ctx context.Context, embedding []float32, opts SearchOpts) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	query := fmt.Sprintf(`
		SELECT d.id, d.category, d.text, 1 - (e.embedding <=> $1) AS score
		FROM %s d
		JOIN %s e ON d.id = e.document_id
		WHERE 1=1
	`, p.table, p.embeddings)
	args := []interface{}{vec}
	argNum := 2

	if opts.Category != "" {
		query += fmt.Sprintf(" AND d.category = $%d", argNum)
		args = append(args, opts.Category)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY e.embedding <=> $1 LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := p.pool.Query(ctx, query, args...)
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

func (p *Postgres) List(ctx context.Context, opts ListOpts) ([]Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT id, category, text FROM %s WHERE 1=1`, p.table)
	args := []interface{}{}
	argNum := 1

	if opts.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, opts.Category)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, opts.Offset)

	rows, err := p.pool.Query(ctx, query, args...)
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

func (p *Postgres) Count(ctx context.Context, category string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, p.table)
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}

	var n int64
	err := p.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (p *Postgres) Scan(ctx context.Context, fn func(Document) error) error {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
		SELECT d.id, d.category, d.text, e.embedding
		FROM %s d
		JOIN %s e ON d.id = e.document_id
		ORDER BY d.id
	`, p.table, p.embeddings))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d Document
		var id int64
		var vec pgvector.Vector
		if err := rows.Scan(&id, &d.Category, &d.Text, &vec); err != nil {
			return err
		}
		d.ID = strconv.FormatInt(id, 10)
		d.Embedding = vec.Slice()
		if err := fn(d); err != nil {
			return err
		}
	}

	return rows.Err()
}
