package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/facturation/internal/config"
	"github.com/diewo77/facturation/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Client{}, &models.Invoice{}, &models.InvoiceLine{}, &models.YearCounter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Config{OperatorEmail: "admin@example.com", OperatorPassword: "secret"}
	return New(conn, cfg)
}

func TestHealth(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s expected 200 got %d", path, w.Code)
		}
	}
}

func TestInvoicesRequireAuth(t *testing.T) {
	h := setupRouter(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/invoices"},
		{http.MethodPost, "/invoices/delete?id=x"},
		{http.MethodGet, "/dashboard"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s expected 401 got %d", p.method, p.path, w.Code)
		}
	}
}

func login(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoginAndAuthenticatedRequest(t *testing.T) {
	h := setupRouter(t)

	if w := login(t, h, "admin@example.com", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401 got %d", w.Code)
	}

	w := login(t, h, "admin@example.com", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("login expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login did not set a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated list expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := setupRouter(t)
	w := login(t, h, "admin@example.com", "secret")
	req := httptest.NewRequest(http.MethodDelete, "/invoices", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow == "" {
		t.Fatalf("missing Allow header")
	}
}
