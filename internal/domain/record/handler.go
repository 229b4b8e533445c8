package record

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sharemed/smr/internal/platform/apperr"
	"github.com/sharemed/smr/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/records", h.Create)
	api.GET("/patients/:id/records", h.List)
	api.PUT("/records/:id", h.Update)
	api.DELETE("/records/:id", h.Delete)
}

type itemRequest struct {
	Kind          Kind    `json:"kind"`
	PatientFileID string  `json:"patient_file_id"`
	Date          string  `json:"date"`
	Comments      string  `json:"comments"`
	ActCode       *string `json:"act_code"`
	DiagnosisCode *string `json:"diagnosis_code"`
	RecipientID   *string `json:"recipient_id"`
	Body          *string `json:"body"`
}

func (r *itemRequest) toItem() (*Item, error) {
	i := &Item{
		Kind:          r.Kind,
		PatientFileID: r.PatientFileID,
		Comments:      r.Comments,
		ActCode:       r.ActCode,
		DiagnosisCode: r.DiagnosisCode,
		RecipientID:   r.RecipientID,
		Body:          r.Body,
	}
	if r.Date != "" {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, apperr.Invalid("date must be formatted YYYY-MM-DD")
		}
		i.Date = d
	}
	return i, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := req.toItem()
	if err != nil {
		return httpError(err)
	}

	actorID := auth.ActorIDFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), actorID, c.Param("id"), item)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	actorID := auth.ActorIDFromContext(c.Request().Context())
	items, err := h.svc.ListForPatient(c.Request().Context(), actorID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patch, err := req.toItem()
	if err != nil {
		return httpError(err)
	}

	actorID := auth.ActorIDFromContext(c.Request().Context())
	updated, err := h.svc.Update(c.Request().Context(), actorID, itemID, patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	actorID := auth.ActorIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actorID, itemID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
