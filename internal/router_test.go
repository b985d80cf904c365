package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/quill/internal/testutil"
)

func testRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "notes.json")
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	svc, _, err := OpenService(cfg, testutil.DiscardLogger())
	if err != nil {
		t.Fatalf("OpenService: %v", err)
	}
	return NewRouter(cfg, svc, nil, "test")
}

func TestRouter_Health(t *testing.T) {
	h := testRouter(t, nil)
	for _, p := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d", p, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"version":"test"`) {
			t.Errorf("%s body = %s", p, w.Body.String())
		}
	}
}

func TestRouter_FormAndAPIShareStore(t *testing.T) {
	h := testRouter(t, nil)

	form := url.Values{"title": {"via form"}, "keywords": {"a,b"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("form submit = %d", w.Code)
	}

	body, _ := json.Marshal(map[string]string{"title": "via api"})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("api add = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"id":2`) {
		t.Errorf("api note = %s", w.Body.String())
	}
}

func TestRouter_TokenModeProtectsAPI(t *testing.T) {
	h := testRouter(t, func(c *Config) {
		c.Auth.Mode = AuthModeToken
		c.Auth.Token = "tok"
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("api without token = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("form page = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="token"`) {
		t.Error("form should ask for the token in token mode")
	}
}

func TestRouter_FormMountedAtRoot(t *testing.T) {
	h := testRouter(t, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?added=4", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Note added successfully! (id 4)") {
		t.Errorf("form page = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", w.Code)
	}
}
