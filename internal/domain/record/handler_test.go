package record

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharemed/smr/internal/platform/auth"
)

func newTestHandler(today time.Time) (*Handler, *echo.Echo, *Service) {
	repo, files, grants := fixture()
	svc := serviceAt(repo, files, grants, today)
	return NewHandler(svc), echo.New(), svc
}

func newRequestContext(e *echo.Echo, method, target, body, actorID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.ActorIDKey, actorID)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerCreate(t *testing.T) {
	h, e, _ := newTestHandler(day(2029, 6, 1))

	body := `{"kind":"symptom","body":"persistent cough","date":"2029-05-30"}`
	c, rec := newRequestContext(e, http.MethodPost, "/", body, "D001")
	c.SetParamNames("id")
	c.SetParamValues("P001")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var created Item
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if created.AuthorID != "D001" || created.Kind != KindSymptom {
		t.Errorf("unexpected item: %+v", created)
	}
}

func TestHandlerCreateForbidden(t *testing.T) {
	h, e, _ := newTestHandler(day(2029, 6, 1))

	body := `{"kind":"symptom","body":"fever"}`
	c, _ := newRequestContext(e, http.MethodPost, "/", body, "D003")
	c.SetParamNames("id")
	c.SetParamValues("P001")

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestHandlerCreateBadDate(t *testing.T) {
	h, e, _ := newTestHandler(day(2029, 6, 1))

	body := `{"kind":"symptom","body":"fever","date":"30/05/2029"}`
	c, _ := newRequestContext(e, http.MethodPost, "/", body, "D001")
	c.SetParamNames("id")
	c.SetParamValues("P001")

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerList(t *testing.T) {
	h, e, svc := newTestHandler(day(2029, 6, 1))
	if _, err := svc.Create(context.Background(), "D001", "P001", symptom("fever")); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	c, rec := newRequestContext(e, http.MethodGet, "/", "", "D002")
	c.SetParamNames("id")
	c.SetParamValues("P001")

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var items []Item
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestHandlerUpdateAndDelete(t *testing.T) {
	h, e, svc := newTestHandler(day(2029, 6, 1))
	created, err := svc.Create(context.Background(), "D001", "P001", symptom("fever"))
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	body := `{"kind":"symptom","body":"high fever"}`
	c, rec := newRequestContext(e, http.MethodPut, "/", body, "D001")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, rec = newRequestContext(e, http.MethodDelete, "/", "", "D001")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandlerUpdatePatientScopeMismatch(t *testing.T) {
	h, e, svc := newTestHandler(day(2029, 6, 1))
	created, err := svc.Create(context.Background(), "D001", "P001", symptom("fever"))
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	// A patch that names a different patient must read as absent.
	body := `{"kind":"symptom","body":"high fever","patient_file_id":"P002"}`
	c, _ := newRequestContext(e, http.MethodPut, "/", body, "D001")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	err = h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandlerUpdateBadID(t *testing.T) {
	h, e, _ := newTestHandler(day(2029, 6, 1))

	c, _ := newRequestContext(e, http.MethodPut, "/", `{"kind":"symptom","body":"x"}`, "D001")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
