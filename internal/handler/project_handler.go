package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appforge-labs/devopshub/internal/dto"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
	"github.com/appforge-labs/devopshub/pkg/response"
)

type projectService interface {
	List(ctx context.Context, query dto.ProjectListQuery) (*dto.ProjectListResponse, error)
	Get(ctx context.Context, id string) (*dto.ProjectView, error)
	Create(ctx context.Context, input dto.CreateProjectInput) (*dto.ProjectView, error)
	Testing(ctx context.Context, id string) (*dto.ProjectView, error)
	Deploy(ctx context.Context, id string) (*dto.ProjectView, error)
	Analytics(ctx context.Context) (*dto.ProjectAnalyticsResponse, error)
}

// ProjectHandler wires the project service to HTTP endpoints.
type ProjectHandler struct {
	service projectService
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(service projectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param status query []string false "Status filter, repeatable"
// @Param search query string false "Case-insensitive name/description search"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	query := dto.ProjectListQuery{
		Statuses: c.QueryArray("status"),
		Search:   c.Query("search"),
	}
	resp, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Get godoc
// @Summary Fetch a single project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectInput true "Project payload"
// @Success 201 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var input dto.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.WithCause(appErrors.ErrValidation, err))
		return
	}
	view, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Testing godoc
// @Summary Move a project into Testing & QA
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/testing [post]
func (h *ProjectHandler) Testing(c *gin.Context) {
	view, err := h.service.Testing(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Deploy godoc
// @Summary Deploy a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/deploy [post]
func (h *ProjectHandler) Deploy(c *gin.Context) {
	view, err := h.service.Deploy(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Analytics godoc
// @Summary Project aggregates
// @Tags Projects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /projects/analytics [get]
func (h *ProjectHandler) Analytics(c *gin.Context) {
	resp, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
