package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharemed/smr/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the pre-auth account endpoints. These sit outside
// the authenticated group: enrollment and login happen before a token exists.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/enroll", h.Enroll)
	g.POST("/auth/login", h.Login)
	g.DELETE("/auth/enroll/:id", h.Unenroll)
}

type enrollRequest struct {
	FileID         string `json:"file_id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	EnrollmentCode string `json:"enrollment_code"`
}

func (h *Handler) Enroll(c echo.Context) error {
	var req enrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cred, err := h.svc.Enroll(c.Request().Context(), req.FileID, req.Username, req.Password, req.EnrollmentCode)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cred)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

func (h *Handler) Unenroll(c echo.Context) error {
	if err := h.svc.Unenroll(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
