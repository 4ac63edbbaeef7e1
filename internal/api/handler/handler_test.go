package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"time-tracker/internal/dto"
	"time-tracker/internal/model"
	"time-tracker/internal/service"
	"time-tracker/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock TimeEntryService ──

type mockTimeEntryService struct {
	createResult *dto.TimeEntryResponse
	createErr    error
	createReq    *dto.CreateTimeEntryRequest
	listResult   []dto.TimeEntryResponse
	listErr      error
	getResult    *dto.TimeEntryResponse
	getErr       error
	getID        string
	updateResult *dto.TimeEntryResponse
	updateErr    error
	updateReq    *dto.UpdateTimeEntryRequest
	updateIfM    model.ETag
	updateCalled bool
	deleteResult *dto.TimeEntryResponse
	deleteErr    error
	deleteIfM    model.ETag
	deleteCalled bool
}

func (m *mockTimeEntryService) Create(_ context.Context, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	m.createReq = req
	return m.createResult, m.createErr
}
func (m *mockTimeEntryService) List(_ context.Context) ([]dto.TimeEntryResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockTimeEntryService) GetByID(_ context.Context, id string) (*dto.TimeEntryResponse, error) {
	m.getID = id
	return m.getResult, m.getErr
}
func (m *mockTimeEntryService) Update(_ context.Context, _ string, req *dto.UpdateTimeEntryRequest, ifMatch model.ETag) (*dto.TimeEntryResponse, error) {
	m.updateCalled = true
	m.updateReq = req
	m.updateIfM = ifMatch
	return m.updateResult, m.updateErr
}
func (m *mockTimeEntryService) Delete(_ context.Context, _ string, ifMatch model.ETag) (*dto.TimeEntryResponse, error) {
	m.deleteCalled = true
	m.deleteIfM = ifMatch
	return m.deleteResult, m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportTimeEntries(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func newTimeRouter(h *TimeEntryHandler) *gin.Engine {
	r := gin.New()
	r.POST("/time", h.CreateTime)
	r.GET("/time", h.GetAllTime)
	r.GET("/time/:id", h.GetTimeByID)
	r.PUT("/time/:id", h.UpdateTime)
	r.DELETE("/time/:id", h.DeleteTime)
	return r
}

func doRequest(r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func sampleEntry(id string, version int) *dto.TimeEntryResponse {
	return &dto.TimeEntryResponse{
		ID:           id,
		PartitionKey: model.TimePartition,
		EmployeeID:   7,
		Date:         time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		Type:         0,
		ETag:         model.ETagOf(version).String(),
	}
}

// ═══════════════════════════════════════════════════════════
// TimeEntryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimeEntryHandler_Create_Success(t *testing.T) {
	mock := &mockTimeEntryService{createResult: sampleEntry("abc", 1)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "POST", "/time",
		strings.NewReader(`{"employeeId":7,"date":"2024-01-05T09:00:00Z","type":0}`), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if !resp.IsSuccess || resp.Message != "New time stored in table." {
		t.Errorf("响应信封不符: %+v", resp)
	}
	if got := w.Header().Get("ETag"); got != `"1"` {
		t.Errorf(`期望 ETag "1"，实际 %s`, got)
	}
	if mock.createReq == nil || mock.createReq.Type == nil || *mock.createReq.Type != 0 {
		t.Error("type=0 应作为显式值传递给服务层")
	}
}

func TestTimeEntryHandler_Create_BadJSON(t *testing.T) {
	mock := &mockTimeEntryService{}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "POST", "/time", strings.NewReader(`{bad json`), nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.IsSuccess || resp.Message != MsgInvalidTimeRequest || resp.Result != nil {
		t.Errorf("响应信封不符: %+v", resp)
	}
	if mock.createReq != nil {
		t.Error("非法 JSON 不应调用服务层")
	}
}

func TestTimeEntryHandler_Create_Invalid(t *testing.T) {
	mock := &mockTimeEntryService{createErr: service.ErrInvalidTimeRequest}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "POST", "/time", jsonBody(map[string]int{"employeeId": 7}), nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	if msg := parseResponse(w).Message; msg != "The request must have a EmployeId, Date and Type" {
		t.Errorf("提示文案不符: %s", msg)
	}
}

func TestTimeEntryHandler_List_Success(t *testing.T) {
	mock := &mockTimeEntryService{listResult: []dto.TimeEntryResponse{
		*sampleEntry("a", 1), *sampleEntry("b", 2),
	}}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "GET", "/time", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var resp struct {
		IsSuccess bool                    `json:"isSuccess"`
		Message   string                  `json:"message"`
		Result    []dto.TimeEntryResponse `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Message != "Retrieved all time" || len(resp.Result) != 2 {
		t.Errorf("响应不符: %+v", resp)
	}
}

func TestTimeEntryHandler_List_Empty(t *testing.T) {
	mock := &mockTimeEntryService{listResult: []dto.TimeEntryResponse{}}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "GET", "/time", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"result":[]`) {
		t.Errorf("空列表应序列化为 []，实际 %s", w.Body.String())
	}
}

func TestTimeEntryHandler_Get_Success(t *testing.T) {
	mock := &mockTimeEntryService{getResult: sampleEntry("abc", 3)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "GET", "/time/abc", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.getID != "abc" {
		t.Errorf("期望路径参数 abc，实际 %s", mock.getID)
	}
	if msg := parseResponse(w).Message; msg != "Retrieved time: abc" {
		t.Errorf("提示文案不符: %s", msg)
	}
	if got := w.Header().Get("ETag"); got != `"3"` {
		t.Errorf(`期望 ETag "3"，实际 %s`, got)
	}
}

func TestTimeEntryHandler_Update_PassesIfMatch(t *testing.T) {
	mock := &mockTimeEntryService{updateResult: sampleEntry("abc", 3)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "PUT", "/time/abc",
		strings.NewReader(`{"date":"2024-01-05T17:00:00Z"}`),
		map[string]string{"If-Match": `"2"`})

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.updateIfM != model.ETagOf(2) {
		t.Errorf("期望 If-Match 版本 2，实际 %v", mock.updateIfM)
	}
	if mock.updateReq == nil || mock.updateReq.Date == nil {
		t.Fatal("date 应传递给服务层")
	}
	if msg := parseResponse(w).Message; msg != "time: abc Update in table" {
		t.Errorf("提示文案不符: %s", msg)
	}
}

func TestTimeEntryHandler_Update_NoIfMatch(t *testing.T) {
	mock := &mockTimeEntryService{updateResult: sampleEntry("abc", 2)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "PUT", "/time/abc", strings.NewReader(`{}`), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !mock.updateIfM.IsZero() {
		t.Errorf("未提供 If-Match 时应传零值令牌，实际 %v", mock.updateIfM)
	}
}

func TestTimeEntryHandler_Update_EmptyBody(t *testing.T) {
	mock := &mockTimeEntryService{updateResult: sampleEntry("abc", 1)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/time/abc", http.NoBody)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("空请求体应视为空补丁，期望 200，实际 %d", w.Code)
	}
	if !mock.updateCalled {
		t.Error("空请求体仍应调用服务层")
	}
}

func TestTimeEntryHandler_Update_BadJSON(t *testing.T) {
	mock := &mockTimeEntryService{}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "PUT", "/time/abc", strings.NewReader(`{"date":"yesterday"}`), nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	if mock.updateCalled {
		t.Error("非法请求体不应调用服务层")
	}
}

func TestTimeEntryHandler_InvalidIfMatch(t *testing.T) {
	mock := &mockTimeEntryService{}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	for _, method := range []string{"PUT", "DELETE"} {
		w := doRequest(r, method, "/time/abc", strings.NewReader(`{}`),
			map[string]string{"If-Match": `"abc"`})

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: 期望 400，实际 %d", method, w.Code)
		}
		if msg := parseResponse(w).Message; msg != MsgInvalidIfMatch {
			t.Errorf("%s: 提示文案不符: %s", method, msg)
		}
	}
	if mock.updateCalled || mock.deleteCalled {
		t.Error("非法 If-Match 不应调用服务层")
	}
}

func TestTimeEntryHandler_Delete_Wildcard(t *testing.T) {
	mock := &mockTimeEntryService{deleteResult: sampleEntry("abc", 4)}
	r := newTimeRouter(NewTimeEntryHandler(mock))

	w := doRequest(r, "DELETE", "/time/abc", nil, map[string]string{"If-Match": "*"})

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !mock.deleteIfM.IsAny() {
		t.Errorf("期望通配令牌，实际 %v", mock.deleteIfM)
	}
	resp := parseResponse(w)
	if resp.Message != "Deleted time: abc" || resp.Result == nil {
		t.Errorf("删除应返回被删除的记录: %+v", resp)
	}
}

func TestTimeEntryHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"Invalid", service.ErrInvalidTimeRequest, 400, MsgInvalidTimeRequest},
		{"NotFound", service.ErrTimeNotFound, 400, "Time not found."},
		{"Conflict", service.ErrTimeConflict, 409, MsgTimeConflict},
		{"StoreUnavailable", fmt.Errorf("%w: dial tcp: refused", service.ErrStoreUnavailable), 503, response.MsgStoreUnavailable},
		{"InternalError", errors.New("unknown"), 500, "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTimeEntryService{
				getErr:    tt.err,
				updateErr: tt.err,
				deleteErr: tt.err,
			}
			r := newTimeRouter(NewTimeEntryHandler(mock))

			for _, method := range []string{"GET", "PUT", "DELETE"} {
				w := doRequest(r, method, "/time/abc", strings.NewReader(`{}`), nil)

				if w.Code != tt.wantStatus {
					t.Errorf("%s: 期望状态 %d，实际 %d", method, tt.wantStatus, w.Code)
				}
				resp := parseResponse(w)
				if resp.IsSuccess || resp.Message != tt.wantMsg || resp.Result != nil {
					t.Errorf("%s: 响应信封不符: %+v", method, resp)
				}
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "time_20240105_090000.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/time/export", h.ExportTime)
	w := doRequest(r, "GET", "/time/export", nil, nil)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "time_20240105_090000.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Errorf("文件内容不符: %s", w.Body.String())
	}
}

func TestExportHandler_NoEntries(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoEntries})

	r := gin.New()
	r.GET("/time/export", h.ExportTime)
	w := doRequest(r, "GET", "/time/export", nil, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	if parseResponse(w).IsSuccess {
		t.Error("isSuccess 应为 false")
	}
}

func TestExportHandler_StoreUnavailable(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: fmt.Errorf("%w: closed", service.ErrStoreUnavailable)})

	r := gin.New()
	r.GET("/time/export", h.ExportTime)
	w := doRequest(r, "GET", "/time/export", nil, nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("期望 503，实际 %d", w.Code)
	}
}
