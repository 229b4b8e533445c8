package account

import (
	"context"

	"github.com/sharemed/smr/internal/domain/file"
)

// Provider is the identity store credentials live in. It is modelled as an
// external collaborator: lookups return NotFound, write failures surface as
// the matching failure kind.
type Provider interface {
	Find(ctx context.Context, id string) (*Credential, error)
	FindByUsername(ctx context.Context, username string) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	Delete(ctx context.Context, id string) error
}

// FileStore is the slice of the clinical file repository enrollment needs.
type FileStore interface {
	GetByID(ctx context.Context, id string) (*file.File, error)
}
