package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jpdataXOR/hrdesk/internal/config"
	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/internal/gateway"
	"github.com/jpdataXOR/hrdesk/internal/policy"
	"github.com/jpdataXOR/hrdesk/internal/service"
	"github.com/jpdataXOR/hrdesk/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *gateway.MockGateway) {
	t.Helper()

	customers := map[string]domain.Customer{
		"acme":   {ID: "acme", Name: "Acme Corp HR", AssistantID: "asst_acme", IndexID: "vs_acme"},
		"globex": {ID: "globex", Name: "Globex HR", AssistantID: "asst_globex", IndexID: "vs_globex"},
	}
	cfg := &config.Config{
		RunPollInterval: time.Millisecond,
		RunTimeout:      250 * time.Millisecond,
		BatchTimeout:    250 * time.Millisecond,
		RunInstructions: "Please address HR issues or questions of the user.",
		DisplayTimeZone: "UTC",
		Customers:       customers,
	}

	db := helpers.NewTestSQLiteStore(t)
	gw := gateway.NewMockGateway("asst_acme", "asst_globex")

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	svc := service.New(db, gw, nil, policyEngine, cfg)
	return NewHandler(svc, nil), gw
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestIndexPage(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Index(c); err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>hrdesk</title>") {
		t.Error("expected the embedded page")
	}
	if strings.Contains(body, "—") {
		t.Error("page text should use plain ASCII punctuation")
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestChat(t *testing.T) {
	h, gw := newTestHandler(t)
	gw.Reply = "You accrue one day per month."

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/chat",
		`{"customer_id": "acme", "text": "vacation accrual?"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/chat")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.Chat(c); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["reply"] != "You accrue one day per month." {
		t.Errorf("unexpected reply: %v", body["reply"])
	}
	if body["run_status"] != "completed" {
		t.Errorf("unexpected run status: %v", body["run_status"])
	}
	turns, ok := body["turns"].([]interface{})
	if !ok || len(turns) != 2 {
		t.Errorf("expected 2 turns in response, got %v", body["turns"])
	}
}

func TestChatEmptyText(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/chat",
		`{"customer_id": "acme", "text": "  "}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/chat")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.Chat(c); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChatUnknownCustomer(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/chat",
		`{"customer_id": "nope", "text": "hello"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/chat")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.Chat(c); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestChatRunTimeout(t *testing.T) {
	h, gw := newTestHandler(t)
	gw.PollsToComplete = 1 << 20

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/chat",
		`{"customer_id": "acme", "text": "hello"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/chat")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.Chat(c); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}

func TestSelectCustomerEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/customer", `{"customer_id": "acme"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/customer")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.SelectCustomer(c); err != nil {
		t.Fatalf("SelectCustomer failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["customer_id"] != "acme" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestGetTurns(t *testing.T) {
	h, _ := newTestHandler(t)

	// Seed a conversation through the chat endpoint.
	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/sessions/sess-1/chat",
		`{"customer_id": "acme", "text": "hello"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/chat")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")
	if err := h.Chat(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("seed chat failed: err=%v code=%d", err, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/sess-1/turns", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/turns")
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")

	if err := h.GetTurns(c); err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	turns, ok := body["turns"].([]interface{})
	if !ok || len(turns) != 2 {
		t.Errorf("expected 2 turns, got %v", body["turns"])
	}
}

func TestUploadFiles(t *testing.T) {
	h, _ := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "handbook.txt")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte("Employees accrue one vacation day per month.")); err != nil {
		t.Fatalf("write part failed: %v", err)
	}
	mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/acme/files", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/files")
	c.SetParamNames("customer_id")
	c.SetParamValues("acme")

	if err := h.UploadFiles(c); err != nil {
		t.Fatalf("UploadFiles failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["status"] != "completed" {
		t.Errorf("unexpected summary: %v", body)
	}
}

func TestListIndexFilesEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/customers/acme/files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/files")
	c.SetParamNames("customer_id")
	c.SetParamValues("acme")

	if err := h.ListIndexFiles(c); err != nil {
		t.Fatalf("ListIndexFiles failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListIndexFilesUnknownCustomer(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/customers/nope/files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/files")
	c.SetParamNames("customer_id")
	c.SetParamValues("nope")

	if err := h.ListIndexFiles(c); err != nil {
		t.Fatalf("ListIndexFiles failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestBindIndexEndpoint(t *testing.T) {
	h, gw := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/customers/acme/bind", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/bind")
	c.SetParamNames("customer_id")
	c.SetParamValues("acme")

	if err := h.BindIndex(c); err != nil {
		t.Fatalf("BindIndex failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cfg, err := gw.GetAssistant(context.Background(), "asst_acme")
	if err != nil {
		t.Fatalf("GetAssistant failed: %v", err)
	}
	if len(cfg.VectorIndexIDs) != 1 || cfg.VectorIndexIDs[0] != "vs_acme" {
		t.Errorf("expected [vs_acme], got %v", cfg.VectorIndexIDs)
	}
}

func TestGetInstructionsUnknownCustomer(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/customers/nope/instructions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/instructions")
	c.SetParamNames("customer_id")
	c.SetParamValues("nope")

	if err := h.GetInstructions(c); err != nil {
		t.Fatalf("GetInstructions failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateInstructionsEndpoint(t *testing.T) {
	h, gw := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPut, "/v1/customers/acme/instructions",
		`{"instructions": "Answer HR questions for Acme staff."}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/customers/:customer_id/instructions")
	c.SetParamNames("customer_id")
	c.SetParamValues("acme")

	if err := h.UpdateInstructions(c); err != nil {
		t.Fatalf("UpdateInstructions failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cfg, err := gw.GetAssistant(context.Background(), "asst_acme")
	if err != nil {
		t.Fatalf("GetAssistant failed: %v", err)
	}
	if cfg.Instructions != "Answer HR questions for Acme staff." {
		t.Errorf("instructions not updated: %q", cfg.Instructions)
	}
}

func TestListCustomersEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/customers", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListCustomers(c); err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	customers, ok := body["customers"].([]interface{})
	if !ok || len(customers) != 2 {
		t.Errorf("expected 2 customers, got %v", body["customers"])
	}
}

func TestDeleteFileEndpoint(t *testing.T) {
	h, gw := newTestHandler(t)

	ref, err := gw.UploadFile(context.Background(), "old.txt", []byte("x"))
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/files/"+ref.ID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/files/:file_id")
	c.SetParamNames("file_id")
	c.SetParamValues(ref.ID)

	if err := h.DeleteFile(c); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := gw.GetFile(context.Background(), ref.ID); err == nil {
		t.Error("expected the file gone after delete")
	}
}
