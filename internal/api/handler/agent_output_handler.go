package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

type AgentOutputHandler struct {
	service ports.AgentOutputService
}

func NewAgentOutputHandler(service ports.AgentOutputService) *AgentOutputHandler {
	return &AgentOutputHandler{service: service}
}

// Create stores an agent output as submitted.
//
// @Summary      Create agent output
// @Tags         agents
// @Accept       json
// @Produce      json
// @Param        body  body      createAgentOutputRequest  true  "Agent output"
// @Success      201   {object}  domain.AgentOutput
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/agents [post]
func (h *AgentOutputHandler) Create(c echo.Context) error {
	var req createAgentOutputRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.service.Create(c.Request().Context(), toCreateAgentOutputInput(req))
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("agent_output").Inc()
	return c.JSON(http.StatusCreated, out)
}

// List returns agent outputs, optionally those of one document.
//
// @Summary      List agent outputs
// @Tags         agents
// @Produce      json
// @Param        document_id  query     string  false  "Filter by document"
// @Success      200          {array}   domain.AgentOutput
// @Router       /api/agents [get]
func (h *AgentOutputHandler) List(c echo.Context) error {
	outs, err := h.service.List(c.Request().Context(), c.QueryParam("document_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outs)
}

// Get returns one agent output.
//
// @Summary      Get agent output
// @Tags         agents
// @Produce      json
// @Param        id   path      string  true  "Agent output ID"
// @Success      200  {object}  domain.AgentOutput
// @Failure      404  {object}  errorResponse
// @Router       /api/agents/{id} [get]
func (h *AgentOutputHandler) Get(c echo.Context) error {
	out, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes an agent output.
//
// @Summary      Delete agent output
// @Tags         agents
// @Produce      json
// @Param        id   path      string  true  "Agent output ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/agents/{id} [delete]
func (h *AgentOutputHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.WithLabelValues("agent_output").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "agent output deleted"})
}
