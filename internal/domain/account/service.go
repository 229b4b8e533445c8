package account

import (
	"context"
	"time"

	"github.com/sharemed/smr/internal/platform/apperr"
	"github.com/sharemed/smr/internal/platform/auth"
)

// Service binds login credentials to clinical files. Enrollment consumes
// the file's one-time enrollment code; the code and the password only ever
// exist in hashed form at rest.
type Service struct {
	provider   Provider
	files      FileStore
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(provider Provider, files FileStore, signingKey []byte, tokenTTL time.Duration) *Service {
	return &Service{provider: provider, files: files, signingKey: signingKey, tokenTTL: tokenTTL}
}

// Enroll creates the credential for fileID after proving possession of the
// file's enrollment code. The checks run in a fixed order so each failure
// mode stays distinguishable.
func (s *Service) Enroll(ctx context.Context, fileID, username, password, code string) (*Credential, error) {
	if fileID == "" {
		return nil, apperr.Invalid("enrollment requires a file id")
	}
	if code == "" {
		return nil, apperr.Invalid("enrollment requires an enrollment code")
	}
	if username == "" || password == "" {
		return nil, apperr.Invalid("enrollment requires a username and password")
	}

	if _, err := s.provider.Find(ctx, fileID); err == nil {
		return nil, apperr.Conflict("credential for %s already exists", fileID)
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	if _, err := s.provider.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("username %s is already taken", username)
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.VerifySecret(code) {
		return nil, apperr.Invalid("enrollment code does not match")
	}

	cred := &Credential{ID: fileID, Username: username}
	if err := cred.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.provider.Save(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// Unenroll removes the credential bound to fileID. Removal is terminal: the
// file needs a fresh enrollment code before it can be bound again.
func (s *Service) Unenroll(ctx context.Context, fileID string) error {
	if _, err := s.provider.Find(ctx, fileID); err != nil {
		return err
	}
	return s.provider.Delete(ctx, fileID)
}

// Login verifies a username/password pair and mints a token whose subject is
// the bound file id.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	cred, err := s.provider.FindByUsername(ctx, username)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", apperr.Forbidden("invalid username or password")
		}
		return "", err
	}
	if !cred.VerifyPassword(password) {
		return "", apperr.Forbidden("invalid username or password")
	}

	f, err := s.files.GetByID(ctx, cred.ID)
	if err != nil {
		return "", err
	}
	return auth.Mint(s.signingKey, cred.ID, string(f.Role), s.tokenTTL)
}
