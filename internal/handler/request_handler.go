package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
	"github.com/appforge-labs/devopshub/pkg/response"
)

type requestService interface {
	List(ctx context.Context, query dto.RequestListQuery) (*dto.RequestListResponse, error)
	Get(ctx context.Context, id string) (*models.Request, error)
	Create(ctx context.Context, input dto.CreateRequestInput) (*models.Request, error)
	Start(ctx context.Context, id, assignee string) (*models.Request, error)
	Complete(ctx context.Context, id string) (*models.Request, error)
	Analytics(ctx context.Context) (*dto.RequestAnalyticsResponse, error)
}

// RequestHandler wires the programming-request service to HTTP endpoints.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// List godoc
// @Summary List programming requests
// @Tags Requests
// @Produce json
// @Param status query []string false "Status filter, repeatable"
// @Param type query []string false "Type filter, repeatable"
// @Param priority query []string false "Priority filter, repeatable"
// @Param assignee query []string false "Assignee filter, repeatable"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	query := dto.RequestListQuery{
		Statuses:   c.QueryArray("status"),
		Types:      c.QueryArray("type"),
		Priorities: c.QueryArray("priority"),
		Assignees:  c.QueryArray("assignee"),
	}
	resp, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Get godoc
// @Summary Fetch a single request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Submit a programming request
// @Tags Requests
// @Accept json
// @Produce json
// @Param request body dto.CreateRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var input dto.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.WithCause(appErrors.ErrValidation, err))
		return
	}
	record, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Start godoc
// @Summary Start work on a submitted request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body dto.StartRequestInput false "Optional assignee"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/start [post]
func (h *RequestHandler) Start(c *gin.Context) {
	var input dto.StartRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.WithCause(appErrors.ErrValidation, err))
		return
	}
	record, err := h.service.Start(c.Request.Context(), c.Param("id"), input.AssignedTo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Complete godoc
// @Summary Complete a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *gin.Context) {
	record, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Analytics godoc
// @Summary Request aggregates
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/analytics [get]
func (h *RequestHandler) Analytics(c *gin.Context) {
	resp, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
