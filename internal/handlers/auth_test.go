package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cozy_nook/internal/models"
	"cozy_nook/internal/service"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlers_RegisterAndLogin(t *testing.T) {
	users := &mockUsers{user: models.User{ID: "u1", Username: "alice", Password: "pw"}}
	sessions := &mockSessions{token: "tok123"}
	s := &service.Service{UserDirectory: users, Sessions: sessions}
	r := newTestRouter(s)

	// register trims the username but passes the password through untouched
	w := httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/register", `{"username":"  alice ","password":" pw "}`))
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d, body=%s", w.Code, w.Body.String())
	}
	if users.lastUsername != "alice" || users.lastPassword != " pw " {
		t.Fatalf("unexpected credentials passed: %q/%q", users.lastUsername, users.lastPassword)
	}
	var resp authResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token != "tok123" || resp.Session.Username != "alice" || resp.Session.IsAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if sessions.lastIssued.Username != "alice" {
		t.Fatalf("token issued for %q", sessions.lastIssued.Username)
	}

	// login success
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/login", `{"username":"alice","password":"pw"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d, body=%s", w.Code, w.Body.String())
	}

	// login invalid body → 400
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/login", `{"username":1}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestAuthHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"duplicate username", "/auth/register", fmt.Errorf("%w: %q", service.ErrDuplicateUsername, "alice"), http.StatusConflict},
		{"blank username", "/auth/register", fmt.Errorf("%w: username is required", service.ErrValidation), http.StatusBadRequest},
		{"wrong password", "/auth/login", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"storage down", "/auth/login", fmt.Errorf("%w: boom", service.ErrStorageUnavailable), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &mockSessions{token: "tok"}
			s := &service.Service{UserDirectory: &mockUsers{err: tc.err}, Sessions: sessions}
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, postJSON(tc.path, `{"username":"alice","password":"pw"}`))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			if sessions.lastIssued.Username != "" {
				t.Fatalf("token must not be issued on failure")
			}
		})
	}
}

func TestAuthHandlers_LogoutEndsSession(t *testing.T) {
	sessions := &mockSessions{}
	r := newTestRouter(&service.Service{Sessions: sessions})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("logout status=%d, body=%s", w.Code, w.Body.String())
	}
	if sessions.endCalls != 1 {
		t.Fatalf("End called %d times, want 1", sessions.endCalls)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["redirect"] != redirectHome {
		t.Fatalf("redirect=%v, want %s", m["redirect"], redirectHome)
	}
}

func TestAuthHandlers_CurrentSession(t *testing.T) {
	sessions := &mockSessions{}
	r := newTestRouter(&service.Service{Sessions: sessions})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Body.String(); got != `{"session":null}` {
		t.Fatalf("anonymous body=%s", got)
	}

	sessions.current = &models.Session{Username: "admin", IsAdmin: true}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	var out struct {
		Session *models.Session `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Session == nil || out.Session.Username != "admin" || !out.Session.IsAdmin {
		t.Fatalf("unexpected session: %+v", out.Session)
	}
}
