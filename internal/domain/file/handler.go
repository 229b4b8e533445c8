package file

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharemed/smr/internal/platform/apperr"
	"github.com/sharemed/smr/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/practitioners", h.CreatePractitioner)
	api.GET("/practitioners", h.ListPractitioners)
	api.DELETE("/practitioners/:id", h.DeletePractitioner)

	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/files", h.Search)
	api.GET("/files/:id", h.Get)
	api.PUT("/files/:id", h.Update)
	api.POST("/files/:id/secret", h.RenewSecret)
}

type fileRequest struct {
	ID                      string   `json:"id"`
	FirstName               string   `json:"first_name"`
	LastName                string   `json:"last_name"`
	Phone                   string   `json:"phone"`
	Email                   string   `json:"email"`
	Address                 string   `json:"address"`
	Specialties             []string `json:"specialties"`
	BirthDate               string   `json:"birth_date"`
	ReferringPractitionerID string   `json:"referring_practitioner_id"`
}

func (req *fileRequest) toFile() (*File, error) {
	f := &File{
		ID:          req.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		Specialties: req.Specialties,
	}
	if req.BirthDate != "" {
		d, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, apperr.Invalid("birth_date must be formatted YYYY-MM-DD")
		}
		f.BirthDate = &d
	}
	if req.ReferringPractitionerID != "" {
		f.ReferringPractitionerID = &req.ReferringPractitionerID
	}
	return f, nil
}

// createdResponse carries the one-time enrollment code alongside the file.
type createdResponse struct {
	File           *File  `json:"file"`
	EnrollmentCode string `json:"enrollment_code"`
}

func (h *Handler) CreatePractitioner(c echo.Context) error {
	var req fileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := req.toFile()
	if err != nil {
		return httpError(err)
	}
	code, err := h.svc.CreatePractitioner(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createdResponse{File: f, EnrollmentCode: code})
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req fileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := req.toFile()
	if err != nil {
		return httpError(err)
	}
	code, err := h.svc.CreatePatient(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createdResponse{File: f, EnrollmentCode: code})
}

func (h *Handler) Get(c echo.Context) error {
	f, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) Update(c echo.Context) error {
	var req fileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := req.toFile()
	if err != nil {
		return httpError(err)
	}
	f.ID = c.Param("id")
	updated, err := h.svc.Update(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) RenewSecret(c echo.Context) error {
	code, err := h.svc.RenewSecret(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"enrollment_code": code})
}

func (h *Handler) DeletePractitioner(c echo.Context) error {
	if err := h.svc.DeletePractitioner(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.svc.DeletePatient(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Search(c echo.Context) error {
	files, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, files)
}

func (h *Handler) ListPractitioners(c echo.Context) error {
	return h.list(c, RolePractitioner)
}

func (h *Handler) ListPatients(c echo.Context) error {
	return h.list(c, RolePatient)
}

func (h *Handler) list(c echo.Context, role Role) error {
	pg := pagination.FromContext(c)
	files, total, err := h.svc.List(c.Request().Context(), role, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(files, total, pg.Limit, pg.Offset))
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
