package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/internal/index"
	"github.com/quickpaste/quickpaste/internal/services"
	"github.com/quickpaste/quickpaste/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	blobs, err := storage.NewFilesystemStore(dir)
	if err != nil {
		t.Fatalf("failed to create filesystem store: %v", err)
	}

	cfg := &config.Config{
		BaseURL:            "http://paste.test",
		DataDir:            dir,
		MaxSize:            1024,
		DefaultExpiryHours: 24 * 7,
		SlugLength:         8,
	}

	svc := services.NewPasteService(index.New(dir), blobs, cfg)
	if err := svc.Load(); err != nil {
		t.Fatalf("failed to load index: %v", err)
	}
	return setupRouter(svc, cfg)
}

func createPaste(t *testing.T, router *gin.Engine, body string) map[string]interface{} {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/paste", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}
	return resp
}

func TestCreateAndReadRaw(t *testing.T) {
	router := newTestRouter(t)

	resp := createPaste(t, router, `{"content":"hello world","language":"go","title":"greeting"}`)

	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatal("create response missing id")
	}
	if resp["url"] != "http://paste.test/"+id {
		t.Errorf("url = %v", resp["url"])
	}
	if resp["raw_url"] != "http://paste.test/"+id+"/raw" {
		t.Errorf("raw_url = %v", resp["raw_url"])
	}
	if resp["language"] != "go" {
		t.Errorf("language = %v, want go", resp["language"])
	}
	if resp["expires_at"] == nil {
		t.Error("expires_at missing despite default expiry")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("raw returned %d", w.Code)
	}
	if w.Body.String() != "hello world" {
		t.Errorf("raw body = %q, want %q", w.Body.String(), "hello world")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("raw Content-Type = %q", ct)
	}
}

func TestCreateValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "content too large",
			body:       fmt.Sprintf(`{"content":%q}`, strings.Repeat("a", 1025)),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "empty content",
			body:       `{"content":""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "whitespace-only content",
			body:       `{"content":"  \n\t "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"content":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/paste", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCreateExpiryField(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		body        string
		wantExpires bool
	}{
		{name: "omitted gets default expiry", body: `{"content":"x"}`, wantExpires: true},
		{name: "explicit hours", body: `{"content":"x","expires_in_hours":2}`, wantExpires: true},
		{name: "explicit zero never expires", body: `{"content":"x","expires_in_hours":0}`, wantExpires: false},
		{name: "explicit null never expires", body: `{"content":"x","expires_in_hours":null}`, wantExpires: false},
		{name: "negative never expires", body: `{"content":"x","expires_in_hours":-1}`, wantExpires: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := createPaste(t, router, tt.body)
			if got := resp["expires_at"] != nil; got != tt.wantExpires {
				t.Errorf("expires_at = %v, want set=%v", resp["expires_at"], tt.wantExpires)
			}
		})
	}
}

func TestReadUnknownID(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/nothere1", "/nothere1/raw", "/api/paste/nothere1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
}

func TestBurnAfterReadHTTP(t *testing.T) {
	router := newTestRouter(t)

	resp := createPaste(t, router, `{"content":"top secret","burn_after_read":true}`)
	id := resp["id"].(string)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first read returned %d", w.Code)
	}
	if w.Body.String() != "top secret" {
		t.Errorf("first read body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second read status = %d, want 404", w.Code)
	}
}

func TestDeleteHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/paste/nothere1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("delete unknown status = %d, want 404", w.Code)
	}

	resp := createPaste(t, router, `{"content":"delete me"}`)
	id := resp["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/paste/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}

	var deleted map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("failed to parse delete response: %v", err)
	}
	if deleted["ok"] != true || deleted["deleted"] != id {
		t.Errorf("delete response = %v", deleted)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("read after delete status = %d, want 404", w.Code)
	}
}

func TestListHTTP(t *testing.T) {
	router := newTestRouter(t)

	var ids []string
	for i := 0; i < 4; i++ {
		resp := createPaste(t, router, fmt.Sprintf(`{"content":"entry %d"}`, i))
		ids = append(ids, resp["id"].(string))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pastes?limit=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}

	var resp struct {
		Pastes []struct {
			ID string `json:"id"`
		} `json:"pastes"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse list response: %v", err)
	}
	if len(resp.Pastes) != 2 {
		t.Errorf("list returned %d entries, want 2", len(resp.Pastes))
	}
	if resp.Total != 4 {
		t.Errorf("total = %d, want 4", resp.Total)
	}
	for i, p := range resp.Pastes {
		if p.ID != ids[i] {
			t.Errorf("pastes[%d].id = %q, want %q (creation order)", i, p.ID, ids[i])
		}
	}
}

func TestViewHTML(t *testing.T) {
	router := newTestRouter(t)

	resp := createPaste(t, router, `{"content":"package main","language":"go","title":"snippet"}`)
	id := resp["id"].(string)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("view returned %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("view Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "snippet") {
		t.Error("view missing paste title")
	}
	if !strings.Contains(body, "/"+id+"/raw") {
		t.Error("view missing raw link")
	}
}

func TestMetaHTTP(t *testing.T) {
	router := newTestRouter(t)

	resp := createPaste(t, router, `{"content":"meta me","title":"t","burn_after_read":true}`)
	id := resp["id"].(string)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/paste/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("meta returned %d", w.Code)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("failed to parse meta response: %v", err)
	}
	if meta["id"] != id || meta["burn_after_read"] != true {
		t.Errorf("meta = %v", meta)
	}
	if _, hasContent := meta["content"]; hasContent {
		t.Error("meta response leaked content")
	}

	// Metadata access must not consume the burn read.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Code != http.StatusOK {
		t.Errorf("read after meta status = %d, want 200", w.Code)
	}
}

func TestRootAndHealth(t *testing.T) {
	router := newTestRouter(t)
	createPaste(t, router, `{"content":"one"}`)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to parse health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("health status = %v", health["status"])
	}
	if health["pastes"] != float64(1) {
		t.Errorf("health pastes = %v, want 1", health["pastes"])
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("root returned %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Quick Paste")) {
		t.Error("root missing service name")
	}
}

func TestRoundTripBinaryEdgeCharacters(t *testing.T) {
	router := newTestRouter(t)

	// JSON transport limits content to valid UTF-8, so exercise the
	// awkward-but-legal cases: control characters, quotes, emoji.
	content := "line1\nline2\t\"quoted\" \\backslash\\ é世界 \U0001f600 "
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/paste", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}
	id := resp["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+id+"/raw", nil))
	if w.Body.String() != content {
		t.Errorf("raw body = %q, want %q", w.Body.String(), content)
	}
}
