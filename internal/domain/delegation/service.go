package delegation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/domain/file"
	"github.com/sharemed/smr/internal/platform/access"
	"github.com/sharemed/smr/internal/platform/apperr"
)

// FileStore is the slice of the clinical file repository the registry needs.
type FileStore interface {
	GetByID(ctx context.Context, id string) (*file.File, error)
}

// Service is the delegation registry: it owns the grant lifecycle and the
// guards around who may create, list and revoke delegations on a patient
// file.
type Service struct {
	delegations Repository
	files       FileStore
	now         func() time.Time
}

func NewService(delegations Repository, files FileStore) *Service {
	return &Service{delegations: delegations, files: files, now: time.Now}
}

// Create grants practitionerID access to the patient's record until
// validUntil. Only the referring practitioner may create a delegation, never
// for themselves, and the expiry must be strictly after today.
func (s *Service) Create(ctx context.Context, actorID, patientID, practitionerID string, validUntil time.Time) (*Delegation, error) {
	patient, err := s.resolvePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	practitioner, err := s.files.GetByID(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	if !practitioner.IsPractitioner() {
		return nil, apperr.NotFound("practitioner %s not found", practitionerID)
	}

	if actorID != patient.ReferringID() {
		return nil, apperr.Forbidden("only the referring practitioner may delegate access")
	}
	if practitionerID == actorID {
		return nil, apperr.Forbidden("the referring practitioner cannot delegate to themselves")
	}
	if !access.Day(validUntil).After(access.Day(s.now())) {
		return nil, apperr.Invalid("valid_until must be strictly after today")
	}

	d := &Delegation{
		PatientFileID:  patientID,
		PractitionerID: practitionerID,
		ValidUntil:     validUntil,
	}
	if err := s.delegations.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListForPatient returns every delegation on the patient's file, expired ones
// included. The actor must currently be the referring practitioner or an
// active delegate.
func (s *Service) ListForPatient(ctx context.Context, actorID, patientID string) ([]*Delegation, error) {
	patient, err := s.resolvePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	ds, err := s.delegations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	level := access.Evaluate(actorID, patient.ReferringID(), Grants(ds), s.now())
	if !level.Authorized() {
		return nil, apperr.Forbidden("no access to patient %s", patientID)
	}
	return ds, nil
}

// Revoke hard-deletes a delegation. Only the referring practitioner may
// revoke; a delegate cannot shed their own grant.
func (s *Service) Revoke(ctx context.Context, actorID, patientID string, delegationID uuid.UUID) error {
	patient, err := s.resolvePatient(ctx, patientID)
	if err != nil {
		return err
	}

	d, err := s.delegations.GetByID(ctx, delegationID)
	if err != nil {
		return err
	}
	if d.PatientFileID != patientID {
		return apperr.NotFound("delegation %s not found for patient %s", delegationID, patientID)
	}

	if actorID != patient.ReferringID() {
		return apperr.Forbidden("only the referring practitioner may revoke a delegation")
	}
	return s.delegations.Delete(ctx, delegationID)
}

// GrantsForPatient loads the patient's delegations as policy inputs. It
// performs no authorization: it exists so other services can evaluate the
// access policy.
func (s *Service) GrantsForPatient(ctx context.Context, patientID string) ([]access.Grant, error) {
	ds, err := s.delegations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return Grants(ds), nil
}

func (s *Service) resolvePatient(ctx context.Context, patientID string) (*file.File, error) {
	f, err := s.files.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !f.IsPatient() {
		return nil, apperr.NotFound("patient %s not found", patientID)
	}
	return f, nil
}
