package record

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sharemed/smr/internal/domain/file"
	"github.com/sharemed/smr/internal/platform/access"
	"github.com/sharemed/smr/internal/platform/apperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Item
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]*Item{}}
}

func (m *mockRepo) Create(_ context.Context, i *Item) error {
	i.ID = uuid.New()
	cp := *i
	m.items[i.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	i, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("clinical item %s not found", id)
	}
	cp := *i
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, i *Item) error {
	if _, ok := m.items[i.ID]; !ok {
		return apperr.NotFound("clinical item %s not found", i.ID)
	}
	cp := *i
	m.items[i.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("clinical item %s not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientFileID string) ([]*Item, error) {
	var out []*Item
	for _, i := range m.items {
		if i.PatientFileID == patientFileID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockFileStore struct {
	files map[string]*file.File
}

func (m *mockFileStore) GetByID(_ context.Context, id string) (*file.File, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, apperr.NotFound("clinical file %s not found", id)
	}
	return f, nil
}

type mockGrantSource struct {
	grants map[string][]access.Grant
}

func (m *mockGrantSource) GrantsForPatient(_ context.Context, patientFileID string) ([]access.Grant, error) {
	return m.grants[patientFileID], nil
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

// fixture: patient P001 referred by D001; D002 holds a delegation until
// 2030-01-01; D003 holds nothing.
func fixture() (*mockRepo, *mockFileStore, *mockGrantSource) {
	repo := newMockRepo()
	files := &mockFileStore{files: map[string]*file.File{
		"D001": {ID: "D001", Role: file.RolePractitioner},
		"D002": {ID: "D002", Role: file.RolePractitioner},
		"D003": {ID: "D003", Role: file.RolePractitioner},
		"P001": {ID: "P001", Role: file.RolePatient, ReferringPractitionerID: strPtr("D001")},
	}}
	grants := &mockGrantSource{grants: map[string][]access.Grant{
		"P001": {{PractitionerID: "D002", ValidUntil: day(2030, 1, 1)}},
	}}
	return repo, files, grants
}

func serviceAt(repo *mockRepo, files *mockFileStore, grants *mockGrantSource, today time.Time) *Service {
	svc := NewService(repo, files, grants)
	svc.now = func() time.Time { return today }
	return svc
}

func symptom(body string) *Item {
	return &Item{Kind: KindSymptom, Body: strPtr(body)}
}

func TestCreateStampsAuthorAndPatient(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))

	created, err := svc.Create(context.Background(), "D001", "P001", symptom("persistent cough"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.AuthorID != "D001" || created.PatientFileID != "P001" {
		t.Fatalf("stamping failed: %+v", created)
	}
	if created.Date.IsZero() {
		t.Fatal("date must default to today")
	}
}

func TestDelegateCanCreateUntilExpiry(t *testing.T) {
	repo, files, grants := fixture()
	ctx := context.Background()

	// The day before expiry the delegate can write.
	before := serviceAt(repo, files, grants, day(2029, 12, 31))
	if _, err := before.Create(ctx, "D002", "P001", symptom("fever")); err != nil {
		t.Fatalf("Create on 2029-12-31: %v", err)
	}

	// On the expiry day itself the grant still holds.
	onExpiry := serviceAt(repo, files, grants, day(2030, 1, 1))
	if _, err := onExpiry.Create(ctx, "D002", "P001", symptom("fever")); err != nil {
		t.Fatalf("Create on 2030-01-01: %v", err)
	}

	// The day after, the same call is refused.
	after := serviceAt(repo, files, grants, day(2030, 1, 2))
	if _, err := after.Create(ctx, "D002", "P001", symptom("fever")); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden on 2030-01-02, got %v", err)
	}
}

func TestStrangerCannotListItems(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))

	if _, err := svc.ListForPatient(context.Background(), "D003", "P001"); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestListForPatient(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))
	ctx := context.Background()

	if _, err := svc.Create(ctx, "D001", "P001", symptom("persistent cough")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := svc.ListForPatient(ctx, "D002", "P001")
	if err != nil {
		t.Fatalf("ListForPatient as delegate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	if _, err := svc.ListForPatient(ctx, "D001", "D002"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound listing a practitioner file, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))
	ctx := context.Background()

	// Future-dated items are rejected.
	futureDated := symptom("fever")
	futureDated.Date = day(2029, 6, 2)
	if _, err := svc.Create(ctx, "D001", "P001", futureDated); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected Invalid for future date, got %v", err)
	}

	// Payload must match the kind.
	if _, err := svc.Create(ctx, "D001", "P001", &Item{Kind: KindAct}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected Invalid for act without code, got %v", err)
	}
	if _, err := svc.Create(ctx, "D001", "P001", &Item{Kind: KindLetter, Body: strPtr("dear colleague")}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected Invalid for letter without recipient, got %v", err)
	}
	if _, err := svc.Create(ctx, "D001", "P001", &Item{Kind: Kind("note")}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected Invalid for unknown kind, got %v", err)
	}
}

func TestItemDateDayBoundaryAcrossZones(t *testing.T) {
	repo, files, grants := fixture()
	ctx := context.Background()

	// Dates arrive from the boundary as UTC midnight. On a server clock
	// west of UTC, tomorrow's midnight is an earlier instant than the end
	// of the local evening; the comparison is on calendar days, so it is
	// still in the future and rejected.
	west := serviceAt(repo, files, grants, time.Date(2029, 6, 1, 20, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)))
	futureDated := symptom("fever")
	futureDated.Date = time.Date(2029, 6, 2, 0, 0, 0, 0, time.UTC)
	if _, err := west.Create(ctx, "D002", "P001", futureDated); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected Invalid for item dated tomorrow on a UTC-5 clock, got %v", err)
	}

	// Today at UTC midnight is acceptable whatever zone the clock reports.
	todayDated := symptom("fever")
	todayDated.Date = time.Date(2029, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := west.Create(ctx, "D002", "P001", todayDated); err != nil {
		t.Fatalf("item dated today rejected on a UTC-5 clock: %v", err)
	}
}

func TestOnlyAuthorMayMutate(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))
	ctx := context.Background()

	created, err := svc.Create(ctx, "D002", "P001", symptom("fever"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := symptom("high fever")
	if _, err := svc.Update(ctx, "D001", created.ID, patch); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden for non-author update, got %v", err)
	}
	if err := svc.Delete(ctx, "D001", created.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden for non-author delete, got %v", err)
	}

	updated, err := svc.Update(ctx, "D002", created.ID, patch)
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Body == nil || *updated.Body != "high fever" {
		t.Fatalf("patch not applied: %+v", updated)
	}

	if err := svc.Delete(ctx, "D002", created.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
}

func TestAuthorLosesEditRightsWithDelegation(t *testing.T) {
	repo, files, grants := fixture()
	ctx := context.Background()

	// D002 authors an act while delegated.
	during := serviceAt(repo, files, grants, day(2029, 6, 1))
	created, err := during.Create(ctx, "D002", "P001", &Item{Kind: KindAct, ActCode: strPtr("CONS-01")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// After the delegation lapses the recorded author can no longer mutate.
	after := serviceAt(repo, files, grants, day(2030, 1, 2))
	patch := &Item{Kind: KindAct, ActCode: strPtr("CONS-02")}
	if _, err := after.Update(ctx, "D002", created.ID, patch); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden after delegation expiry, got %v", err)
	}
	if err := after.Delete(ctx, "D002", created.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden delete after expiry, got %v", err)
	}

	// The item itself is untouched.
	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *stored.ActCode != "CONS-01" {
		t.Fatalf("item mutated despite Forbidden: %+v", stored)
	}
}

func TestUpdatePatientScopeMismatch(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))
	ctx := context.Background()

	created, err := svc.Create(ctx, "D001", "P001", symptom("fever"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := symptom("fever")
	patch.PatientFileID = "P002"
	if _, err := svc.Update(ctx, "D001", created.ID, patch); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for patient scope mismatch, got %v", err)
	}
}

func TestUpdateUnknownItem(t *testing.T) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, day(2029, 6, 1))

	if _, err := svc.Update(context.Background(), "D001", uuid.New(), symptom("fever")); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
