package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"
	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockRunner struct{ mock.Mock }

func (m *MockRunner) Run(ctx context.Context, doc analyzer.Document, names []string) analyzer.Outcome {
	return m.Called(doc.FileName, names).Get(0).(analyzer.Outcome)
}

type MockAuditService struct{ mock.Mock }

func (m *MockAuditService) SaveAuditLog(ctx context.Context, in service.AuditLogInput) (*model.AuditLog, error) {
	args := m.Called(in)
	entry, _ := args.Get(0).(*model.AuditLog)
	return entry, args.Error(1)
}

func (m *MockAuditService) FetchAuditLogs(ctx context.Context, standards []string, limit int) ([]model.AuditLog, error) {
	args := m.Called(standards, limit)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

func (m *MockAuditService) GetAuditLog(ctx context.Context, id string) (*model.AuditLog, error) {
	args := m.Called(id)
	entry, _ := args.Get(0).(*model.AuditLog)
	return entry, args.Error(1)
}

type MockTaskManager struct{ mock.Mock }

func (m *MockTaskManager) CreateTask(ctx context.Context, in service.TaskInput) (*model.Task, error) {
	args := m.Called(in)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskManager) ListTasks(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(f)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskManager) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (*model.Task, error) {
	args := m.Called(id, upd)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskManager) DeleteTask(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockTaskManager) AddTaskFromGap(ctx context.Context, in service.GapTaskInput) (*service.AddTaskResult, error) {
	args := m.Called(in)
	res, _ := args.Get(0).(*service.AddTaskResult)
	return res, args.Error(1)
}

func (m *MockTaskManager) AddTaskFromSuggestion(ctx context.Context, in service.SuggestionTaskInput) (*service.AddTaskResult, error) {
	args := m.Called(in)
	res, _ := args.Get(0).(*service.AddTaskResult)
	return res, args.Error(1)
}

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Search(ctx context.Context, query string, limit int) ([]service.SearchHit, error) {
	args := m.Called(query, limit)
	hits, _ := args.Get(0).([]service.SearchHit)
	return hits, args.Error(1)
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func analysisRouter(t *testing.T, runner *MockRunner, audit AuditRecorder) *gin.Engine {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	ac := NewAnalysisController(service.NewAnalysisService(cat, runner), audit, cat)
	r := gin.New()
	r.GET("/api/standards", ac.GetStandards)
	r.POST("/api/compliance-analysis", ac.AnalyzeDocument)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAnalyzeRejectsExecutable(t *testing.T) {
	runner := &MockRunner{}
	r := analysisRouter(t, runner, nil)
	body, ct := multipartBody(t, "setup.exe", []byte("MZ\x90"), map[string]string{"selectedStandards": "gdpr"})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unsupported file type. Please upload PDF, DOC, DOCX, or TXT files.", decode(t, w)["error"])
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestAnalyzeMissingFile(t *testing.T) {
	r := analysisRouter(t, &MockRunner{}, nil)
	body, ct := multipartBody(t, "", nil, map[string]string{"selectedStandards": "gdpr"})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", decode(t, w)["error"])
}

func TestAnalyzeAllProvidersDown(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "policy.pdf", []string{"GDPR"}).Return(analyzer.Outcome{
		Err: &analyzer.ProvidersFailedError{Primary: errors.New("503 Service Unavailable"), Fallback: errors.New("dial tcp: no route to host")},
	})
	r := analysisRouter(t, runner, nil)
	body, ct := multipartBody(t, "policy.pdf", []byte("%PDF-1.7"), map[string]string{"selectedStandards": "gdpr"})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	msg, _ := resp["error"].(string)
	assert.Contains(t, msg, "Gemini:")
	assert.Contains(t, msg, "Kroolo:")
	result := resp["result"].(map[string]interface{})
	assert.Equal(t, "non-compliant", result["status"])
}

func TestAnalyzeSuccessSavesAuditLog(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "policy.txt", []string{"GDPR", "HIPAA"}).Return(analyzer.Outcome{
		Method: analyzer.MethodGeminiPrimary,
		Result: &analyzer.AnalysisResult{
			OverallScore:      91,
			StandardsAnalysis: []analyzer.StandardAnalysis{{Standard: "GDPR", Score: 91, Status: "compliant"}},
		},
	})
	audit := &MockAuditService{}
	audit.On("SaveAuditLog", mock.MatchedBy(func(in service.AuditLogInput) bool {
		return in.FileName == "policy.txt" && in.Method == "gemini-primary"
	})).Return(&model.AuditLog{ID: "log-1"}, nil)
	r := analysisRouter(t, runner, audit)
	body, ct := multipartBody(t, "policy.txt", []byte("We protect data."), map[string]string{"selectedStandards": `["gdpr","hipaa"]`})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "policy.txt", resp["fileName"])
	assert.Equal(t, []interface{}{"gdpr", "hipaa"}, resp["selectedStandards"])
	assert.Equal(t, "gemini-primary", resp["method"])
	assert.Equal(t, "log-1", resp["auditLogId"])
	assert.NotNil(t, resp["analysis"])
	audit.AssertExpectations(t)
}

func TestAnalyzeAcceptsStandardsAlias(t *testing.T) {
	runner := &MockRunner{}
	runner.On("Run", "policy.txt", []string{"GDPR"}).Return(analyzer.Outcome{
		Method: analyzer.MethodGeminiPrimary,
		Result: &analyzer.AnalysisResult{
			OverallScore:      80,
			StandardsAnalysis: []analyzer.StandardAnalysis{{Standard: "GDPR", Score: 80, Status: "compliant"}},
		},
	})
	r := analysisRouter(t, runner, nil)
	body, ct := multipartBody(t, "policy.txt", []byte("We protect data."), map[string]string{"standards": "gdpr"})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"gdpr"}, decode(t, w)["selectedStandards"])
	runner.AssertExpectations(t)
}

func TestAnalyzeNoStandardsSelected(t *testing.T) {
	runner := &MockRunner{}
	r := analysisRouter(t, runner, nil)
	body, ct := multipartBody(t, "policy.txt", []byte("We protect data."), map[string]string{"selectedStandards": "[]"})

	req := httptest.NewRequest(http.MethodPost, "/api/compliance-analysis", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No compliance standards selected", decode(t, w)["error"])
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestGetStandards(t *testing.T) {
	r := analysisRouter(t, &MockRunner{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/standards", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp["standards"], 10)
	assert.Len(t, resp["priorities"], 4)
}

func TestGetAuditLogsParsesStandards(t *testing.T) {
	audit := &MockAuditService{}
	audit.On("FetchAuditLogs", []string{"gdpr"}, 25).Return([]model.AuditLog{{ID: "a"}}, nil)
	ac := NewAuditController(audit)
	r := gin.New()
	r.GET("/api/audit-logs", ac.GetAuditLogs)
	r.GET("/api/audit-logs/:id", ac.GetAuditLog)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs?standards=gdpr&limit=25", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["logs"], 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	audit.On("GetAuditLog", "nope").Return(nil, service.ErrNotFound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddFromGapDedupedResponse(t *testing.T) {
	tasks := &MockTaskManager{}
	tasks.On("AddTaskFromGap", mock.Anything).Return(&service.AddTaskResult{Deduped: true}, nil)
	tc := NewTaskController(tasks)
	r := gin.New()
	r.POST("/api/tasks/from-gap", tc.AddFromGap)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/from-gap", strings.NewReader(`{"resultId":"r1","gap":{"id":"gap-1","title":"No DPO"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["deduped"])
}

func TestUpdateTaskMapsErrors(t *testing.T) {
	tasks := &MockTaskManager{}
	tasks.On("UpdateTask", "t1", mock.Anything).Return(nil, service.ErrInvalidTransition)
	tc := NewTaskController(tasks)
	r := gin.New()
	r.PATCH("/api/tasks", tc.UpdateTask)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/tasks?id=t1", strings.NewReader(`{"status":"pending"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/tasks", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchUnavailable(t *testing.T) {
	searcher := &MockSearcher{}
	searcher.On("Search", "gdpr", 0).Return(nil, service.ErrSearchUnavailable)
	r := gin.New()
	r.GET("/api/search", NewSearchController(searcher).Search)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search?q=gdpr", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "search is not configured", decode(t, w)["error"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(service.ErrStorageUnavailable))
}
