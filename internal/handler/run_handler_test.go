package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
	"gstreco/internal/handler"
	"gstreco/mocks"
)

func setupRunRouter(svc *mocks.MockRunService) *gin.Engine {
	h := handler.NewRunHandler(svc)
	r := gin.New()
	r.GET("/runs", h.List)
	r.GET("/runs/:id", h.GetByID)
	r.GET("/runs/:id/download", h.Download)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
	r.ServeHTTP(w, req)
	return w
}

func TestRunHandler_List(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := setupRunRouter(svc)
	svc.On("List", mock.Anything, 10, 5).Return([]domain.RecoRun{{ID: uuid.New()}, {ID: uuid.New()}}, 12, nil)

	w := get(r, "/runs?offset=10&limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 12, resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.Offset)
	assert.Equal(t, 5, resp.Meta.Limit)
	assert.Len(t, resp.Data.([]interface{}), 2)
}

func TestRunHandler_GetByID(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := setupRunRouter(svc)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.RecoRun{ID: id, ReportKey: "reports/secret.xlsx"}, nil)

	w := get(r, "/runs/"+id.String())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.NotContains(t, w.Body.String(), "reports/secret.xlsx", "object keys stay internal")
}

func TestRunHandler_Errors(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := setupRunRouter(svc)
	missing := uuid.New()
	svc.On("Get", mock.Anything, missing).Return(nil, domain.ErrNotFound)
	svc.On("DownloadURL", mock.Anything, missing).Return("", domain.ErrNotFound)

	tests := []struct {
		path     string
		wantCode int
		wantErr  string
	}{
		{"/runs/not-a-uuid", http.StatusBadRequest, "INVALID_ID"},
		{"/runs/not-a-uuid/download", http.StatusBadRequest, "INVALID_ID"},
		{"/runs/" + missing.String(), http.StatusNotFound, "NOT_FOUND"},
		{"/runs/" + missing.String() + "/download", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(r, tt.path)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestRunHandler_Download(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := setupRunRouter(svc)
	id := uuid.New()
	svc.On("DownloadURL", mock.Anything, id).Return("https://reports.example.com/signed", nil)

	w := get(r, "/runs/"+id.String()+"/download")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "https://reports.example.com/signed", data["download_url"])
}

func TestOffsetHandler_Calculate(t *testing.T) {
	svc := new(mocks.MockOffsetService)
	h := handler.NewOffsetHandler(svc)
	r := gin.New()
	r.POST("/offset", h.Calculate)

	liability := domain.TaxVector{IGST: decimal.NewFromInt(100), CGST: decimal.NewFromInt(50), SGST: decimal.NewFromInt(50)}
	credit := domain.TaxVector{IGST: decimal.NewFromInt(120), CGST: decimal.Zero, SGST: decimal.Zero}
	svc.On("Calculate", mock.MatchedBy(func(v domain.TaxVector) bool { return v.IGST.Equal(liability.IGST) && v.CGST.Equal(liability.CGST) }),
		mock.MatchedBy(func(v domain.TaxVector) bool { return v.IGST.Equal(credit.IGST) })).
		Return(&domain.OffsetResult{Liability: liability, Credit: credit}, nil)

	body := `{"liability":{"igst":100,"cgst":"50","sgst":50},"credit":{"igst":120,"cgst":0,"sgst":0}}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/offset", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	svc.AssertExpectations(t)
}

func TestOffsetHandler_Errors(t *testing.T) {
	svc := new(mocks.MockOffsetService)
	h := handler.NewOffsetHandler(svc)
	r := gin.New()
	r.POST("/offset", h.Calculate)
	svc.On("Calculate", mock.Anything, mock.Anything).Return(nil, errors.Join(errors.New("liability IGST is negative"), domain.ErrInvalidInput))

	tests := []struct {
		name, body string
		wantErr    string
	}{
		{"malformed json", `{"liability":`, "INVALID_REQUEST"},
		{"negative figure", `{"liability":{"igst":-1},"credit":{}}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/offset", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	db := new(mocks.MockRunRepo)
	storage := new(mocks.MockReportStorage)
	h := handler.NewHealthHandler(map[string]handler.Pinger{"database": db, "storage": storage})
	r := gin.New()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)

	db.On("Ping", mock.Anything).Return(nil)
	storage.On("Ping", mock.Anything).Return(nil).Once()
	storage.On("Ping", mock.Anything).Return(errors.New("no bucket"))

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)

	w := get(r, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "storage not reachable")
}
