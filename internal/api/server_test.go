package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nmhoang23/rotauth/internal/core/domain"
	"github.com/nmhoang23/rotauth/internal/infra/store"
	"github.com/nmhoang23/rotauth/internal/login"
	"github.com/nmhoang23/rotauth/internal/pool"
)

type stubService struct {
	session   *login.Session
	preferred *domain.Resource
}

func (s *stubService) RunWithRetry(_ context.Context, _ login.Request, preferred *domain.Resource) *login.Session {
	s.preferred = preferred
	return s.session
}

func newServerForTest(t *testing.T, svc LoginService, resources ...string) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "proxies.txt")
	if err := os.WriteFile(path, []byte(strings.Join(resources, "\n")), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	p := pool.New(pool.Config{DefaultCooldown: time.Second}, store.Noop{}, nil, nil)
	p.Init(context.Background(), path)

	return NewServer(Config{Port: 0, MaxConcurrent: 4}, svc, p, nil)
}

func postLogin(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleLogin(w, req)
	return w
}

func TestHandleLoginSuccess(t *testing.T) {
	svc := &stubService{session: &login.Session{
		ID:     "sess-1",
		Status: domain.StatusSuccess,
		Token:  "tok-9",
	}}
	s := newServerForTest(t, svc, "198.51.100.10:3128")

	w := postLogin(t, s, `{"target_url":"https://target.example/login","username":"u","password":"p"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "success" || got.Token != "tok-9" {
		t.Errorf("response = %+v, want success with token tok-9", got)
	}
}

func TestHandleLoginStatusCodes(t *testing.T) {
	tests := []struct {
		status domain.TerminalStatus
		code   int
	}{
		{domain.StatusSuccess, http.StatusOK},
		{domain.StatusCredentialRejected, http.StatusUnauthorized},
		{domain.StatusTargetRejected, http.StatusForbidden},
		{domain.StatusPoolExhausted, http.StatusServiceUnavailable},
		{domain.StatusResourceUnresponsive, http.StatusBadGateway},
		{domain.StatusDefenseBlocked, http.StatusBadGateway},
		{domain.StatusUnclassified, http.StatusBadGateway},
	}

	for _, tt := range tests {
		svc := &stubService{session: &login.Session{Status: tt.status}}
		s := newServerForTest(t, svc, "198.51.100.10:3128")

		w := postLogin(t, s, `{"target_url":"https://t.example","username":"u","password":"p"}`)
		if w.Code != tt.code {
			t.Errorf("terminal %s: status = %d, want %d", tt.status, w.Code, tt.code)
		}
	}
}

func TestHandleLoginValidation(t *testing.T) {
	svc := &stubService{session: &login.Session{Status: domain.StatusSuccess}}
	s := newServerForTest(t, svc)

	tests := []string{
		`not json`,
		`{}`,
		`{"target_url":"https://t.example"}`,
		`{"target_url":"https://t.example","username":"u","password":"p","proxy":"::::bad"}`,
	}
	for _, body := range tests {
		if w := postLogin(t, s, body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestHandleLoginForwardsPreferredProxy(t *testing.T) {
	svc := &stubService{session: &login.Session{Status: domain.StatusSuccess}}
	s := newServerForTest(t, svc, "198.51.100.10:3128")

	w := postLogin(t, s, `{"target_url":"https://t.example","username":"u","password":"p","proxy":"198.51.100.99:3128"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.preferred == nil || svc.preferred.Key() != "http://198.51.100.99:3128" {
		t.Errorf("preferred = %v, want parsed proxy", svc.preferred)
	}
}

func TestHandleLoginMethodNotAllowed(t *testing.T) {
	svc := &stubService{session: &login.Session{Status: domain.StatusSuccess}}
	s := newServerForTest(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/login", nil)
	w := httptest.NewRecorder()
	s.handleLogin(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestHealthReportsPoolCounts(t *testing.T) {
	svc := &stubService{session: &login.Session{Status: domain.StatusSuccess}}
	s := newServerForTest(t, svc, "198.51.100.10:3128", "198.51.100.11:3128")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Resources int    `json:"resources"`
		Available int    `json:"available"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if body.Resources != 2 || body.Available != 2 {
		t.Errorf("health = %+v, want 2 resources all available", body)
	}
}
