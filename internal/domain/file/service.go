package file

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/platform/apperr"
)

// Service owns clinical file onboarding and maintenance. Files are created
// here with a freshly issued enrollment code; the plaintext code is returned
// exactly once and only its bcrypt hash is stored.
type Service struct {
	files Repository
	now   func() time.Time
}

func NewService(files Repository) *Service {
	return &Service{files: files, now: time.Now}
}

// CreatePractitioner onboards a practitioner file and returns the one-time
// enrollment code issued with it.
func (s *Service) CreatePractitioner(ctx context.Context, f *File) (string, error) {
	f.Role = RolePractitioner
	f.BirthDate = nil
	f.ReferringPractitionerID = nil

	if err := s.validateCommon(f); err != nil {
		return "", err
	}
	if len(f.Specialties) == 0 {
		return "", apperr.Invalid("a practitioner needs at least one specialty")
	}

	code, err := s.issueSecret(f)
	if err != nil {
		return "", err
	}
	if err := s.files.Create(ctx, f); err != nil {
		return "", err
	}
	return code, nil
}

// CreatePatient onboards a patient file and returns the one-time enrollment
// code issued with it.
func (s *Service) CreatePatient(ctx context.Context, f *File) (string, error) {
	f.Role = RolePatient
	f.Specialties = nil

	if err := s.validateCommon(f); err != nil {
		return "", err
	}
	if err := s.validatePatient(ctx, f); err != nil {
		return "", err
	}

	code, err := s.issueSecret(f)
	if err != nil {
		return "", err
	}
	if err := s.files.Create(ctx, f); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) Get(ctx context.Context, id string) (*File, error) {
	return s.files.GetByID(ctx, id)
}

// Update replaces the mutable identity fields of a file. The role and the
// secret hash are not updatable through this path.
func (s *Service) Update(ctx context.Context, f *File) (*File, error) {
	stored, err := s.files.GetByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if f.Role != "" && f.Role != stored.Role {
		return nil, apperr.Invalid("file role cannot change")
	}
	f.Role = stored.Role
	f.SecretHash = stored.SecretHash

	if err := s.validateCommon(f); err != nil {
		return nil, err
	}
	if stored.IsPatient() {
		if err := s.validatePatient(ctx, f); err != nil {
			return nil, err
		}
	} else if len(f.Specialties) == 0 {
		return nil, apperr.Invalid("a practitioner needs at least one specialty")
	}

	if err := s.files.Update(ctx, f); err != nil {
		return nil, err
	}
	return s.files.GetByID(ctx, f.ID)
}

// RenewSecret starts a fresh onboarding cycle for a file whose credential was
// removed, issuing a new one-time enrollment code.
func (s *Service) RenewSecret(ctx context.Context, id string) (string, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	code, err := s.issueSecret(f)
	if err != nil {
		return "", err
	}
	if err := s.files.Update(ctx, f); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) DeletePractitioner(ctx context.Context, id string) error {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !f.IsPractitioner() {
		return apperr.NotFound("practitioner %s not found", id)
	}
	return s.files.DeletePractitioner(ctx, id)
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !f.IsPatient() {
		return apperr.NotFound("patient %s not found", id)
	}
	return s.files.DeletePatient(ctx, id)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]*File, error) {
	if keyword == "" {
		return nil, apperr.Invalid("search keyword is required")
	}
	return s.files.Search(ctx, keyword)
}

func (s *Service) List(ctx context.Context, role Role, limit, offset int) ([]*File, int, error) {
	if role != RolePractitioner && role != RolePatient {
		return nil, 0, apperr.Invalid("unknown role %q", role)
	}
	return s.files.List(ctx, role, limit, offset)
}

func (s *Service) validateCommon(f *File) error {
	if f.ID == "" {
		return apperr.Invalid("file id is required")
	}
	if f.FirstName == "" || f.LastName == "" {
		return apperr.Invalid("first_name and last_name are required")
	}
	return nil
}

func (s *Service) validatePatient(ctx context.Context, f *File) error {
	if f.BirthDate == nil {
		return apperr.Invalid("birth_date is required for a patient")
	}
	if f.BirthDate.After(s.now()) {
		return apperr.Invalid("birth_date cannot be in the future")
	}
	if f.ReferringPractitionerID == nil || *f.ReferringPractitionerID == "" {
		return apperr.Invalid("referring_practitioner_id is required for a patient")
	}
	referring, err := s.files.GetByID(ctx, *f.ReferringPractitionerID)
	if err != nil {
		return err
	}
	if !referring.IsPractitioner() {
		return apperr.Invalid("referring practitioner %s is not a practitioner", referring.ID)
	}
	return nil
}

func (s *Service) issueSecret(f *File) (string, error) {
	code := uuid.New().String()
	if err := f.SetSecret(code); err != nil {
		return "", err
	}
	return code, nil
}
