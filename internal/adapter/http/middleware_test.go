package adapthttp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"healthvault/internal/app"
	"healthvault/internal/domain"
	"healthvault/internal/metrics"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{log: zerolog.New(&buf)}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("OK")) //nolint:errcheck
	})
	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "GET") || !strings.Contains(logOutput, "/test-path") || !strings.Contains(logOutput, "418") {
		t.Errorf("log output missing expected fields. Got: %s", logOutput)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	s := &Server{metrics: metrics.New()}

	handler := s.metricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/missing", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// The labeled counter must exist after one request; reading it back
	// through the registry keeps this independent of prometheus internals.
	families, err := s.metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, fam := range families {
		if fam.GetName() == "healthvault_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("request counter not registered after a request")
	}
}

type staticSessionRepo struct {
	session *domain.Session
}

func (r *staticSessionRepo) Create(context.Context, int64, string, string, string, time.Time) error {
	return nil
}

func (r *staticSessionRepo) GetByToken(context.Context, string) (*domain.Session, error) {
	return r.session, nil
}

func (r *staticSessionRepo) Delete(context.Context, string) error { return nil }

func (r *staticSessionRepo) DeleteExpired(context.Context) error { return nil }

type staticUserRepo struct {
	user *domain.User
}

func (r *staticUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return r.user, nil
}

func (r *staticUserRepo) GetByID(context.Context, int64) (*domain.User, error) {
	return r.user, nil
}

func (r *staticUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	return &domain.User{ID: 1, Username: username}, nil
}

func (r *staticUserRepo) Count(context.Context) (int, error) { return 1, nil }

func TestAuthMiddleware(t *testing.T) {
	user := &domain.User{ID: 7, Username: "asha"}
	session := &domain.Session{
		Token:     "tok",
		UserID:    7,
		UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s := &Server{
		authSvc: app.NewAuthService(&staticUserRepo{user: user}, &staticSessionRepo{session: session}),
	}

	var gotUser int64
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = userFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/bmi", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid session cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/bmi", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
		req.Header.Set("User-Agent", "test-agent")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if gotUser != 7 {
			t.Fatalf("expected user 7 in context, got %d", gotUser)
		}
	})

	t.Run("user agent mismatch", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/bmi", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
		req.Header.Set("User-Agent", "someone-else")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("forward auth header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/bmi", nil)
		req.Header.Set("Remote-User", "asha")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("auth disabled runs as local user", func(t *testing.T) {
		local := &Server{disableAuth: true}
		h := local.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = userFrom(r)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/bmi", nil))
		if gotUser != localUserID {
			t.Fatalf("expected local user id, got %d", gotUser)
		}
	})
}
