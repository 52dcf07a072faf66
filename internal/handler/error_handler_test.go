package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

type fakeErrorSrv struct {
	listResp  *dto.ErrorListResponse
	listErr   error
	lastQuery dto.ErrorListQuery

	record    *models.SystemError
	recordErr error
	lastID    string
	lastFix   dto.FixErrorInput
}

func (f *fakeErrorSrv) List(_ context.Context, query dto.ErrorListQuery) (*dto.ErrorListResponse, error) {
	f.lastQuery = query
	return f.listResp, f.listErr
}

func (f *fakeErrorSrv) Get(_ context.Context, id string) (*models.SystemError, error) {
	f.lastID = id
	return f.record, f.recordErr
}

func (f *fakeErrorSrv) Create(context.Context, dto.CreateErrorInput) (*models.SystemError, error) {
	return f.record, f.recordErr
}

func (f *fakeErrorSrv) Investigate(_ context.Context, id string) (*models.SystemError, error) {
	f.lastID = id
	return f.record, f.recordErr
}

func (f *fakeErrorSrv) Fix(_ context.Context, id string, input dto.FixErrorInput) (*models.SystemError, error) {
	f.lastID = id
	f.lastFix = input
	return f.record, f.recordErr
}

func (f *fakeErrorSrv) Escalate(_ context.Context, id string) (*models.SystemError, error) {
	f.lastID = id
	return f.record, f.recordErr
}

func (f *fakeErrorSrv) Analytics(context.Context) (*dto.ErrorAnalyticsResponse, error) {
	return &dto.ErrorAnalyticsResponse{}, nil
}

func TestErrorHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeErrorSrv{listResp: &dto.ErrorListResponse{}}
	handler := NewErrorHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/errors?severity=Critical&severity=High&system=Datasafe&fiserv=Yes", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Critical", "High"}, srv.lastQuery.Severities)
	assert.Equal(t, []string{"Datasafe"}, srv.lastQuery.Systems)
	assert.Equal(t, "Yes", srv.lastQuery.Fiserv)
}

func TestErrorHandlerFixPassesNotes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeErrorSrv{record: &models.SystemError{ID: "ERR-002"}}
	handler := NewErrorHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/errors/ERR-002/fix",
		strings.NewReader(`{"resolution_notes":"Restarted the transfer agent"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "ERR-002"}}

	handler.Fix(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ERR-002", srv.lastID)
	assert.Equal(t, "Restarted the transfer agent", srv.lastFix.ResolutionNotes)
}

func TestErrorHandlerFixWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeErrorSrv{record: &models.SystemError{ID: "ERR-002"}}
	handler := NewErrorHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/errors/ERR-002/fix", nil)
	c.Params = gin.Params{{Key: "id", Value: "ERR-002"}}

	handler.Fix(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, srv.lastFix.ResolutionNotes)
}

func TestErrorHandlerEscalateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewErrorHandler(&fakeErrorSrv{recordErr: appErrors.ErrConflict})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/errors/ERR-001/escalate", nil)
	c.Params = gin.Params{{Key: "id", Value: "ERR-001"}}

	handler.Escalate(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
