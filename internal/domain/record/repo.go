package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists clinical items. Referential violations on the payload
// (unknown act or diagnosis code, unknown recipient) surface as the matching
// failure kind.
type Repository interface {
	Create(ctx context.Context, i *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, i *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientFileID string) ([]*Item, error)
}
