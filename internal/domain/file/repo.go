package file

import "context"

// Repository persists clinical files. Implementations map "no row" to an
// apperr NotFound and referential violations to the matching failure kind.
type Repository interface {
	Create(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	Update(ctx context.Context, f *File) error

	// DeletePractitioner removes a practitioner file. It fails while the
	// practitioner is referenced as anyone's referring practitioner or by
	// any clinical item.
	DeletePractitioner(ctx context.Context, id string) error

	// DeletePatient removes a patient file together with its delegations
	// and clinical items in a single transaction.
	DeletePatient(ctx context.Context, id string) error

	Search(ctx context.Context, keyword string) ([]*File, error)
	List(ctx context.Context, role Role, limit, offset int) ([]*File, int, error)
}
