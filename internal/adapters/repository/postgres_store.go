package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/ports"
)

// PostgresStore keeps the whole document in one JSONB row of employee_documents
type PostgresStore struct {
	db   *sqlx.DB
	name string
}

// NewPostgresStore creates a document store over an open connection pool.
// The schema is created by the migrate command.
func NewPostgresStore(db *sqlx.DB, name string) ports.DocumentStore {
	return &PostgresStore{db: db, name: name}
}

func (s *PostgresStore) EnsureInitialized(ctx context.Context) error {
	seed, err := encodeDocument(entities.SeedDocument())
	if err != nil {
		return entities.NewStorageError("init", err)
	}

	query := `
		INSERT INTO employee_documents (name, body)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, s.name, string(seed)); err != nil {
		return entities.NewStorageError("init", explainSchemaError(fmt.Errorf("seed document %q: %w", s.name, err)))
	}
	return nil
}

// undefinedTable is the postgres SQLSTATE for a missing relation
const undefinedTable pq.ErrorCode = "42P01"

// explainSchemaError points at the migrate command when the table is missing
func explainSchemaError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("table employee_documents does not exist, run \"employeedir migrate up\" first: %w", err)
	}
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (*entities.Document, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	var body string
	err := s.db.GetContext(ctx, &body, `SELECT body::text FROM employee_documents WHERE name = $1`, s.name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.NewStorageError("load", fmt.Errorf("document %q disappeared after seeding", s.name))
		}
		return nil, entities.NewStorageError("load", fmt.Errorf("select document: %w", err))
	}

	doc, err := decodeDocument([]byte(body))
	if err != nil {
		return nil, entities.NewStorageError("load", fmt.Errorf("document %q: %w", s.name, err))
	}
	return doc, nil
}

func (s *PostgresStore) Save(ctx context.Context, doc *entities.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return entities.NewStorageError("save", fmt.Errorf("encode document: %w", err))
	}

	query := `
		INSERT INTO employee_documents (name, body, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, s.name, string(data)); err != nil {
		return entities.NewStorageError("save", fmt.Errorf("upsert document: %w", err))
	}
	return nil
}

// Close is a no-op; the connection pool is owned by the caller
func (s *PostgresStore) Close() error {
	return nil
}
