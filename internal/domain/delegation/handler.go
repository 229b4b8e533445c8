package delegation

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
	api.POST("/patients/:id/delegations", h.Create)
	api.GET("/patients/:id/delegations", h.List)
	api.DELETE("/patients/:id/delegations/:delegation_id", h.Revoke)
}

type createRequest struct {
	PractitionerID string `json:"practitioner_id"`
	ValidUntil     string `json:"valid_until"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	validUntil, err := time.Parse("2006-01-02", req.ValidUntil)
	if err != nil {
		return httpError(apperr.Invalid("valid_until must be formatted YYYY-MM-DD"))
	}

	actorID := auth.ActorIDFromContext(c.Request().Context())
	d, err := h.svc.Create(c.Request().Context(), actorID, c.Param("id"), req.PractitionerID, validUntil)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) List(c echo.Context) error {
	actorID := auth.ActorIDFromContext(c.Request().Context())
	ds, err := h.svc.ListForPatient(c.Request().Context(), actorID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ds)
}

func (h *Handler) Revoke(c echo.Context) error {
	delegationID, err := uuid.Parse(c.Param("delegation_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid delegation id")
	}

	actorID := auth.ActorIDFromContext(c.Request().Context())
	if err := h.svc.Revoke(c.Request().Context(), actorID, c.Param("id"), delegationID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
