package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// mergeAttempts bounds the optimistic read/modify/write loop used by Merge.
const mergeAttempts = 16

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists documents as JSON text rows with a version column.
// Merge and CompareAndSwap are conditional on the version read, so
// concurrent writers never silently overwrite each other.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func encodeBody(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func decodeBody(body string) (map[string]any, error) {
	data := make(map[string]any)
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	var body string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, version FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key,
	).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	data, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	return &Document{Key: key, Version: version, Data: data}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s/%s: %w", collection, key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Create(ctx context.Context, collection, key string, data map[string]any) error {
	body, err := encodeBody(data)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_key, body, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (collection, doc_key) DO NOTHING
	`, collection, key, body, now())
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, key, err)
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

func (s *SQLiteStore) Set(ctx context.Context, collection, key string, data map[string]any) error {
	body, err := encodeBody(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_key, body, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (collection, doc_key)
		DO UPDATE SET body = excluded.body, version = documents.version + 1, updated_at = excluded.updated_at
	`, collection, key, body, now())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

// swap writes body only if the row still carries expectedVersion.
func (s *SQLiteStore) swap(ctx context.Context, collection, key string, expectedVersion int64, body string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET body = ?, version = version + 1, updated_at = ?
		WHERE collection = ? AND doc_key = ? AND version = ?
	`, body, now(), collection, key, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) Merge(ctx context.Context, collection, key string, path []string, value any) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	for attempt := 0; attempt < mergeAttempts; attempt++ {
		doc, err := s.Get(ctx, collection, key)
		if err != nil {
			return err
		}
		setPath(doc.Data, path, value)
		body, err := encodeBody(doc.Data)
		if err != nil {
			return err
		}
		ok, err := s.swap(ctx, collection, key, doc.Version, body)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("merge %s/%s: %w", collection, key, ErrConflict)
}

func (s *SQLiteStore) CompareAndSwap(ctx context.Context, collection, key string, expectedVersion int64, data map[string]any) error {
	if expectedVersion == 0 {
		if err := s.Create(ctx, collection, key, data); err != nil {
			if errors.Is(err, ErrExists) {
				return ErrConflict
			}
			return err
		}
		return nil
	}
	body, err := encodeBody(data)
	if err != nil {
		return err
	}
	ok, err := s.swap(ctx, collection, key, expectedVersion, body)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_key, body, version FROM documents WHERE collection = ? ORDER BY doc_key`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		var key, body string
		var version int64
		if err := rows.Scan(&key, &body, &version); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		data, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		out = append(out, &Document{Key: key, Version: version, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
