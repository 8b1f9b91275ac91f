package ports

import (
	"context"

	"github.com/employeedir/core/internal/domain/entities"
)

// DocumentStore defines the persistence contract for the employee document.
// Every mutation is a full Load followed by a full Save.
type DocumentStore interface {
	EnsureInitialized(ctx context.Context) error
	Load(ctx context.Context) (*entities.Document, error)
	Save(ctx context.Context, doc *entities.Document) error
	Close() error
}
