package delegation

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists delegations. ListByPatient returns every delegation
// for the file regardless of validity; filtering against "now" belongs to
// the access policy, not the store.
type Repository interface {
	Create(ctx context.Context, d *Delegation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Delegation, error)
	ListByPatient(ctx context.Context, patientFileID string) ([]*Delegation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
