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

type errorService interface {
	List(ctx context.Context, query dto.ErrorListQuery) (*dto.ErrorListResponse, error)
	Get(ctx context.Context, id string) (*models.SystemError, error)
	Create(ctx context.Context, input dto.CreateErrorInput) (*models.SystemError, error)
	Investigate(ctx context.Context, id string) (*models.SystemError, error)
	Fix(ctx context.Context, id string, input dto.FixErrorInput) (*models.SystemError, error)
	Escalate(ctx context.Context, id string) (*models.SystemError, error)
	Analytics(ctx context.Context) (*dto.ErrorAnalyticsResponse, error)
}

// ErrorHandler wires the system-error service to HTTP endpoints.
type ErrorHandler struct {
	service errorService
}

// NewErrorHandler constructs the handler.
func NewErrorHandler(service errorService) *ErrorHandler {
	return &ErrorHandler{service: service}
}

// List godoc
// @Summary List system errors
// @Tags Errors
// @Produce json
// @Param status query []string false "Status filter, repeatable"
// @Param severity query []string false "Severity filter, repeatable"
// @Param system query []string false "System filter, repeatable"
// @Param fiserv query string false "Reported to Fiserv: Yes or No"
// @Success 200 {object} response.Envelope
// @Router /errors [get]
func (h *ErrorHandler) List(c *gin.Context) {
	query := dto.ErrorListQuery{
		Statuses:   c.QueryArray("status"),
		Severities: c.QueryArray("severity"),
		Systems:    c.QueryArray("system"),
		Fiserv:     c.Query("fiserv"),
	}
	resp, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Get godoc
// @Summary Fetch a single error
// @Tags Errors
// @Produce json
// @Param id path string true "Error ID"
// @Success 200 {object} response.Envelope
// @Router /errors/{id} [get]
func (h *ErrorHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Log a system error
// @Tags Errors
// @Accept json
// @Produce json
// @Param request body dto.CreateErrorInput true "Error payload"
// @Success 201 {object} response.Envelope
// @Router /errors [post]
func (h *ErrorHandler) Create(c *gin.Context) {
	var input dto.CreateErrorInput
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

// Investigate godoc
// @Summary Begin investigating an error
// @Tags Errors
// @Produce json
// @Param id path string true "Error ID"
// @Success 200 {object} response.Envelope
// @Router /errors/{id}/investigate [post]
func (h *ErrorHandler) Investigate(c *gin.Context) {
	record, err := h.service.Investigate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Fix godoc
// @Summary Mark an error fixed internally
// @Tags Errors
// @Accept json
// @Produce json
// @Param id path string true "Error ID"
// @Param request body dto.FixErrorInput false "Resolution notes"
// @Success 200 {object} response.Envelope
// @Router /errors/{id}/fix [post]
func (h *ErrorHandler) Fix(c *gin.Context) {
	var input dto.FixErrorInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.WithCause(appErrors.ErrValidation, err))
		return
	}
	record, err := h.service.Fix(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Escalate godoc
// @Summary Escalate an error to Fiserv
// @Tags Errors
// @Produce json
// @Param id path string true "Error ID"
// @Success 200 {object} response.Envelope
// @Router /errors/{id}/escalate [post]
func (h *ErrorHandler) Escalate(c *gin.Context) {
	record, err := h.service.Escalate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Analytics godoc
// @Summary Error aggregates
// @Tags Errors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /errors/analytics [get]
func (h *ErrorHandler) Analytics(c *gin.Context) {
	resp, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
