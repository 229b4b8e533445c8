package record

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/domain/file"
	"github.com/sharemed/smr/internal/platform/access"
	"github.com/sharemed/smr/internal/platform/apperr"
)

// FileStore is the slice of the clinical file repository this service needs.
type FileStore interface {
	GetByID(ctx context.Context, id string) (*file.File, error)
}

// GrantSource supplies the live delegation grants on a patient file. Every
// call re-reads; authorization is never decided from cached grants.
type GrantSource interface {
	GrantsForPatient(ctx context.Context, patientFileID string) ([]access.Grant, error)
}

// Service manages clinical items. Every operation resolves the patient file,
// re-reads the delegations and consults the access policy before touching
// the store; mutation additionally requires authorship.
type Service struct {
	items  Repository
	files  FileStore
	grants GrantSource
	now    func() time.Time
}

func NewService(items Repository, files FileStore, grants GrantSource) *Service {
	return &Service{items: items, files: files, grants: grants, now: time.Now}
}

// Create adds a new item to the patient's record, stamping the actor as
// author. The actor must be the referring practitioner or an active
// delegate.
func (s *Service) Create(ctx context.Context, actorID, patientID string, item *Item) (*Item, error) {
	level, err := s.standing(ctx, actorID, patientID)
	if err != nil {
		return nil, err
	}
	if !level.Authorized() {
		return nil, apperr.Forbidden("no access to patient %s", patientID)
	}

	if item.Date.IsZero() {
		item.Date = s.now()
	}
	if access.Day(item.Date).After(access.Day(s.now())) {
		return nil, apperr.Invalid("item date cannot be in the future")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.PatientFileID = patientID
	item.AuthorID = actorID
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a patch to an existing item. Only the author may update,
// and only while they still hold owner or delegate standing on the patient.
func (s *Service) Update(ctx context.Context, actorID string, itemID uuid.UUID, patch *Item) (*Item, error) {
	stored, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if patch.PatientFileID != "" && patch.PatientFileID != stored.PatientFileID {
		return nil, apperr.NotFound("clinical item %s not found for patient %s", itemID, patch.PatientFileID)
	}

	if err := s.authorizeMutation(ctx, actorID, stored); err != nil {
		return nil, err
	}

	stored.Comments = patch.Comments
	if !patch.Date.IsZero() {
		if access.Day(patch.Date).After(access.Day(s.now())) {
			return nil, apperr.Invalid("item date cannot be in the future")
		}
		stored.Date = patch.Date
	}
	stored.ActCode = patch.ActCode
	stored.DiagnosisCode = patch.DiagnosisCode
	stored.RecipientID = patch.RecipientID
	stored.Body = patch.Body

	if err := stored.Validate(); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes an item under the same authorization rules as Update.
func (s *Service) Delete(ctx context.Context, actorID string, itemID uuid.UUID) error {
	stored, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(ctx, actorID, stored); err != nil {
		return err
	}
	return s.items.Delete(ctx, itemID)
}

// ListForPatient returns every item on the patient's record. The actor must
// be the referring practitioner or an active delegate.
func (s *Service) ListForPatient(ctx context.Context, actorID, patientID string) ([]*Item, error) {
	level, err := s.standing(ctx, actorID, patientID)
	if err != nil {
		return nil, err
	}
	if !level.Authorized() {
		return nil, apperr.Forbidden("no access to patient %s", patientID)
	}
	return s.items.ListByPatient(ctx, patientID)
}

// standing resolves the patient file and evaluates the actor's current
// access level against live delegations.
func (s *Service) standing(ctx context.Context, actorID, patientID string) (access.Level, error) {
	f, err := s.files.GetByID(ctx, patientID)
	if err != nil {
		return access.LevelNone, err
	}
	if !f.IsPatient() {
		return access.LevelNone, apperr.NotFound("patient %s not found", patientID)
	}

	grants, err := s.grants.GrantsForPatient(ctx, patientID)
	if err != nil {
		return access.LevelNone, err
	}
	return access.Evaluate(actorID, f.ReferringID(), grants, s.now()), nil
}

func (s *Service) authorizeMutation(ctx context.Context, actorID string, stored *Item) error {
	if actorID != stored.AuthorID {
		return apperr.Forbidden("only the author may modify a clinical item")
	}
	level, err := s.standing(ctx, actorID, stored.PatientFileID)
	if err != nil {
		return err
	}
	if !access.CanMutate(actorID, stored.AuthorID, level) {
		return apperr.Forbidden("author no longer holds access to patient %s", stored.PatientFileID)
	}
	return nil
}
