package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/internal/platform/session"
	platformtx "github.com/agrilink/marketplace/internal/platform/transaction"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/users"
	"github.com/agrilink/marketplace/modules/users/infrastructure/identity"
	"github.com/agrilink/marketplace/modules/users/infrastructure/persistence"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.EventType
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type testServer struct {
	t         *testing.T
	handler   http.Handler
	cookie    *http.Cookie
	publisher *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	signer, err := baas.NewTokenVerifier("test-secret")
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	provider := identity.NewMemoryProvider(identity.MemoryConfig{Signer: signer, Logger: logger})
	manager := authn.NewManager(authn.Config{
		Store:       session.NewMemoryStore(time.Hour),
		Cookie:      authn.CookieConfig{Name: "agrilink_session", MaxAge: time.Hour},
		Verifier:    signer,
		Refresh:     identity.RefreshFunc(provider),
		RefreshSkew: time.Minute,
		Logger:      logger,
	})

	publisher := &recordingPublisher{}
	module := users.New(users.Config{
		Repository:     persistence.NewInMemoryRepository(),
		Identity:       provider,
		Sessions:       manager,
		TxScope:        platformtx.NewLocalScope(),
		EventPublisher: publisher,
		Logger:         logger,
	})

	mux := http.NewServeMux()
	module.RegisterRoutes(mux)
	return &testServer{t: t, handler: manager.Middleware(mux), publisher: publisher}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			s.cookie = nil
		} else {
			s.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestUsersModule_AccountLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Register signs straight in when no confirmation is required.
	rec := s.do(http.MethodPost, "/auth/register", map[string]string{
		"email":     "ada@farm.example",
		"password":  "harvest2026",
		"full_name": "Ada Grower",
		"role":      "farmer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	reg := decode[map[string]any](t, rec)
	userID, _ := reg["user_id"].(string)
	if reg["email_confirmation_required"] != false {
		t.Errorf("expected no confirmation step, got %v", reg)
	}
	if s.cookie == nil {
		t.Fatal("expected a session cookie after registration")
	}

	rec = s.do(http.MethodGet, "/auth/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: expected 200, got %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec)["user_id"]; got != userID {
		t.Errorf("expected session for %s, got %v", userID, got)
	}

	rec = s.do(http.MethodPut, "/profile", map[string]string{
		"full_name": "Ada Grower",
		"farm_name": "Sunny Acres",
		"phone":     "+1 (555) 010-0100",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = s.do(http.MethodGet, "/profiles/"+userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public profile: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ada@farm.example") || strings.Contains(rec.Body.String(), `"phone"`) {
		t.Errorf("public profile leaks contact details: %s", rec.Body)
	}
	if got := decode[map[string]any](t, rec)["farm_name"]; got != "Sunny Acres" {
		t.Errorf("expected farm name, got %v", got)
	}

	rec = s.do(http.MethodPost, "/auth/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec = s.do(http.MethodGet, "/profile", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/auth/login", map[string]string{"email": "ada@farm.example", "password": "nope-nope1"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/auth/login", map[string]string{"email": "ADA@farm.example", "password": "harvest2026"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	if rec = s.do(http.MethodDelete, "/profile", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d: %s", rec.Code, rec.Body)
	}
	if rec = s.do(http.MethodGet, "/profiles/"+userID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("deleted public profile: expected 404, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/auth/login", map[string]string{"email": "ada@farm.example", "password": "harvest2026"})
	if rec.Code != http.StatusGone {
		t.Errorf("login after delete: expected 410, got %d", rec.Code)
	}

	got := s.publisher.types()
	want := []events.EventType{contracts.UserRegisteredEventType, contracts.UserDeletedEventType}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected events %v, got %v", want, got)
	}
}

func TestUsersModule_RegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"weak password", map[string]string{"email": "a@b.example", "password": "short", "full_name": "Al Bo", "role": "buyer"}, http.StatusBadRequest},
		{"bad role", map[string]string{"email": "a@b.example", "password": "harvest2026", "full_name": "Al Bo", "role": "admin"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "not-an-email", "password": "harvest2026", "full_name": "Al Bo", "role": "buyer"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.do(http.MethodPost, "/auth/register", tt.body); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}

	body := map[string]string{"email": "dup@b.example", "password": "harvest2026", "full_name": "Al Bo", "role": "buyer"}
	s.do(http.MethodPost, "/auth/register", body)
	s.cookie = nil
	if rec := s.do(http.MethodPost, "/auth/register", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}
}
