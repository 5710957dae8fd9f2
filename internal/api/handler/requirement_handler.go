package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

type RequirementHandler struct {
	service ports.RequirementService
}

func NewRequirementHandler(service ports.RequirementService) *RequirementHandler {
	return &RequirementHandler{service: service}
}

// Create stores a requirement.
//
// @Summary      Create requirement
// @Tags         requirements
// @Accept       json
// @Produce      json
// @Param        body  body      createRequirementRequest  true  "Requirement"
// @Success      201   {object}  domain.Requirement
// @Failure      400   {object}  errorResponse
// @Router       /api/requirements [post]
func (h *RequirementHandler) Create(c echo.Context) error {
	var req createRequirementRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	r, err := h.service.Create(c.Request().Context(), toCreateRequirementInput(req))
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("requirement").Inc()
	return c.JSON(http.StatusCreated, r)
}

// List returns requirements filtered by the optional type and priority.
//
// @Summary      List requirements
// @Tags         requirements
// @Produce      json
// @Param        type      query     string  false  "FR or NFR"
// @Param        priority  query     string  false  "Must, Should, Could or Won't"
// @Success      200       {array}   domain.Requirement
// @Failure      400       {object}  errorResponse
// @Router       /api/requirements [get]
func (h *RequirementHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), ports.RequirementFilter{
		Type:     c.QueryParam("type"),
		Priority: c.QueryParam("priority"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one requirement.
//
// @Summary      Get requirement
// @Tags         requirements
// @Produce      json
// @Param        id   path      string  true  "Requirement ID"
// @Success      200  {object}  domain.Requirement
// @Failure      404  {object}  errorResponse
// @Router       /api/requirements/{id} [get]
func (h *RequirementHandler) Get(c echo.Context) error {
	r, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Delete removes a requirement.
//
// @Summary      Delete requirement
// @Tags         requirements
// @Produce      json
// @Param        id   path      string  true  "Requirement ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/requirements/{id} [delete]
func (h *RequirementHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.WithLabelValues("requirement").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "requirement deleted"})
}
