package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"univera/backend/internal/dto"
	"univera/backend/internal/service"
	"univera/backend/pkg/jwt"
	"univera/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	meResult      *dto.UserDetailResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims, _ string) error { return nil }
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock TimeTableService ──

type mockTimeTableService struct {
	getResult   *dto.TimeTableResponse
	getErr      error
	saveResult  *dto.TimeTableResponse
	saveErr     error
	gridResult  *dto.GridResponse
	gridErr     error
	draftResult *dto.DraftResponse
	draftErr    error
}

func (m *mockTimeTableService) GetByClass(_ context.Context, _ string) (*dto.TimeTableResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTimeTableService) Save(_ context.Context, _ string, _ *dto.SaveTimeTableRequest, _ string) (*dto.TimeTableResponse, error) {
	return m.saveResult, m.saveErr
}
func (m *mockTimeTableService) GetGrid(_ context.Context, _ string) (*dto.GridResponse, error) {
	return m.gridResult, m.gridErr
}
func (m *mockTimeTableService) GetDraft(_ context.Context, _ string) (*dto.DraftResponse, error) {
	return m.draftResult, m.draftErr
}
func (m *mockTimeTableService) PutDraftSlot(_ context.Context, _ string, _ *dto.DraftSlotRequest) (*dto.DraftResponse, error) {
	return m.draftResult, m.draftErr
}
func (m *mockTimeTableService) DeleteDraftSlot(_ context.Context, _, _, _ string) (*dto.DraftResponse, error) {
	return m.draftResult, m.draftErr
}
func (m *mockTimeTableService) ClearDraft(_ context.Context, _ string) error {
	return m.draftErr
}

// ── Mock ChatService ──

type mockChatService struct {
	forumsResult  []dto.ForumResponse
	forumsErr     error
	forumResult   *dto.ForumResponse
	forumErr      error
	sendResult    *dto.ChatMessagePayload
	sendErr       error
	listResult    *dto.MessageListResponse
	listErr       error
	flushErr      error
	deleteErr     error
	openSessions  []int64
	closeSessions []int64
}

func (m *mockChatService) ListForums(_ context.Context, _ string) ([]dto.ForumResponse, error) {
	return m.forumsResult, m.forumsErr
}
func (m *mockChatService) GetForum(_ context.Context, _ int64) (*dto.ForumResponse, error) {
	return m.forumResult, m.forumErr
}
func (m *mockChatService) SendMessage(_ context.Context, _ int64, _ string, _ *dto.SendMessageRequest) (*dto.ChatMessagePayload, error) {
	return m.sendResult, m.sendErr
}
func (m *mockChatService) ListMessages(_ context.Context, _ int64) (*dto.MessageListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockChatService) FlushClient(_ context.Context, _ int64, _ *dto.FlushMessagesRequest) error {
	return m.flushErr
}
func (m *mockChatService) DeleteMessages(_ context.Context, _ int64, _ *dto.DeleteMessagesRequest) error {
	return m.deleteErr
}
func (m *mockChatService) Flush(_ context.Context, _ int64) error { return nil }
func (m *mockChatService) PurgeTombstones(_ context.Context) error {
	return nil
}
func (m *mockChatService) OpenSession(forumID int64)  { m.openSessions = append(m.openSessions, forumID) }
func (m *mockChatService) CloseSession(forumID int64) { m.closeSessions = append(m.closeSessions, forumID) }
func (m *mockChatService) StopScheduler()             {}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportTimetable(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportTimetableICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportAttendance(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "department_admin")
	c.Set("department_id", "test-dept-id")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newRequest(c *gin.Context, method string, body io.Reader) {
	req := httptest.NewRequest(method, "/", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken: "token", RefreshToken: "refresh",
			User: dto.UserResponse{ID: "u1", Email: "a@b.edu"},
		},
	}
	h := NewAuthHandler(svc)

	c, w := setupGin()
	newRequest(c, http.MethodPost, jsonBody(dto.LoginRequest{Email: "a@b.edu", Password: "secret123"}))
	h.Login(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 0 {
		t.Errorf("期望 code 0，实际 %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	c, w := setupGin()
	newRequest(c, http.MethodPost, jsonBody(dto.LoginRequest{Email: "a@b.edu", Password: "wrong-pass"}))
	h.Login(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 11001 {
		t.Errorf("期望 code 11001，实际 %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	c, w := setupGin()
	newRequest(c, http.MethodPost, bytes.NewReader([]byte("{not json")))
	h.Login(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidToken})

	c, w := setupGin()
	newRequest(c, http.MethodPost, jsonBody(dto.RefreshTokenRequest{RefreshToken: "stale"}))
	h.RefreshToken(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 11002 {
		t.Errorf("期望 code 11002，实际 %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TimeTableHandler
// ═══════════════════════════════════════════════════════════

func TestTimeTableHandler_GetGrid(t *testing.T) {
	svc := &mockTimeTableService{
		gridResult: &dto.GridResponse{ClassID: "class-A", Days: []dto.GridDay{{Day: "Monday"}}},
	}
	h := NewTimeTableHandler(svc)

	c, w := setupGin()
	c.Params = gin.Params{{Key: "id", Value: "class-A"}}
	newRequest(c, http.MethodGet, nil)
	h.GetGrid(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}

func TestTimeTableHandler_GetTimeTable_NotFound(t *testing.T) {
	h := NewTimeTableHandler(&mockTimeTableService{getErr: service.ErrTimeTableNotFound})

	c, w := setupGin()
	c.Params = gin.Params{{Key: "id", Value: "class-A"}}
	newRequest(c, http.MethodGet, nil)
	h.GetTimeTable(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 17001 {
		t.Errorf("期望 code 17001，实际 %d", resp.Code)
	}
}

func TestTimeTableHandler_Save_InvalidSlots(t *testing.T) {
	h := NewTimeTableHandler(&mockTimeTableService{saveErr: service.ErrInvalidSlots})

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "class-A"}}
	newRequest(c, http.MethodPut, jsonBody(dto.SaveTimeTableRequest{
		SlotsData: []dto.SlotPayload{{Day: "Monday", StartTime: "8:00 AM", EndTime: "9:00 AM", Title: "数据结构"}},
	}))
	h.SaveTimeTable(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 17002 {
		t.Errorf("期望 code 17002，实际 %d", resp.Code)
	}
}

func TestTimeTableHandler_DeleteDraftSlot_MissingQuery(t *testing.T) {
	h := NewTimeTableHandler(&mockTimeTableService{})

	c, w := setupGin()
	c.Params = gin.Params{{Key: "id", Value: "class-A"}}
	newRequest(c, http.MethodDelete, nil)
	h.DeleteDraftSlot(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("缺少查询参数期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ForumHandler
// ═══════════════════════════════════════════════════════════

func newForumHandler(svc service.ChatService) *ForumHandler {
	return NewForumHandler(svc, service.NewForumHub(), zap.NewNop())
}

func TestForumHandler_SendMessage_Success(t *testing.T) {
	svc := &mockChatService{
		sendResult: &dto.ChatMessagePayload{ID: 1700000000000, ForumID: 1, UserID: "test-user-id", Message: "hello"},
	}
	h := newForumHandler(svc)

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	newRequest(c, http.MethodPost, jsonBody(dto.SendMessageRequest{Message: "hello"}))
	h.SendMessage(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d", w.Code)
	}
}

func TestForumHandler_SendMessage_Empty(t *testing.T) {
	h := newForumHandler(&mockChatService{sendErr: service.ErrEmptyMessage})

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	newRequest(c, http.MethodPost, jsonBody(dto.SendMessageRequest{}))
	h.SendMessage(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 18002 {
		t.Errorf("期望 code 18002，实际 %d", resp.Code)
	}
}

func TestForumHandler_BadForumID(t *testing.T) {
	h := newForumHandler(&mockChatService{})

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	newRequest(c, http.MethodGet, nil)
	h.GetForum(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("非数字论坛 id 期望 400，实际 %d", w.Code)
	}
}

func TestForumHandler_GetForum_NotFound(t *testing.T) {
	h := newForumHandler(&mockChatService{forumErr: service.ErrForumNotFound})

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	newRequest(c, http.MethodGet, nil)
	h.GetForum(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 18001 {
		t.Errorf("期望 code 18001，实际 %d", resp.Code)
	}
}

func TestForumHandler_DeleteMessages(t *testing.T) {
	h := newForumHandler(&mockChatService{})

	c, w := setupGin()
	setAuth(c)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	newRequest(c, http.MethodDelete, jsonBody(dto.DeleteMessagesRequest{MessageIDs: []int64{1700000000000}}))
	h.DeleteMessages(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportTimetable_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf: bytes.NewBufferString("excel-bytes"), filename: "课表_CS-3A.xlsx",
	})

	c, w := setupGin()
	req := httptest.NewRequest(http.MethodGet, "/?class_id=class-A", nil)
	c.Request = req
	h.ExportTimetable(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got == "" {
		t.Error("应设置 Content-Disposition 下载头")
	}
	if got := w.Header().Get("Content-Type"); got != contentTypeXLSX {
		t.Errorf("期望 Content-Type %s，实际 %s", contentTypeXLSX, got)
	}
}

func TestExportHandler_ExportTimetable_MissingClassID(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ExportTimetable(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("缺少 class_id 期望 400，实际 %d", w.Code)
	}
}

func TestExportHandler_ExportAttendance_NoRecords(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRecords})

	c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/?subject_id=s1&class_id=c1", nil)
	h.ExportAttendance(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 21003 {
		t.Errorf("期望 code 21003，实际 %d", resp.Code)
	}
}
