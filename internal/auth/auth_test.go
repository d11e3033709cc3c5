package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w)
	if !ParseSession(requestWithCookies(w)) {
		t.Fatalf("valid session rejected")
	}
}

func TestSessionTamperRejected(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w)
	c := w.Result().Cookies()[0]
	c.Value = strings.Replace(c.Value, "operator", "operatox", 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if ParseSession(req) {
		t.Fatalf("tampered session accepted")
	}
}

func TestNoCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ParseSession(req) {
		t.Fatalf("missing cookie accepted")
	}
}

func TestClearSession(t *testing.T) {
	w := httptest.NewRecorder()
	ClearSession(w)
	c := w.Result().Cookies()[0]
	if c.Value != "" || c.MaxAge > 0 {
		t.Fatalf("clear did not expire cookie: %+v", c)
	}
}

func TestCheckCredentials(t *testing.T) {
	if !CheckCredentials("Admin@Example.com", "pw", "admin@example.com", "pw") {
		t.Fatalf("email comparison should be case-insensitive")
	}
	if CheckCredentials("admin@example.com", "PW", "admin@example.com", "pw") {
		t.Fatalf("password comparison must be case-sensitive")
	}
	if CheckCredentials("other@example.com", "pw", "admin@example.com", "pw") {
		t.Fatalf("wrong email accepted")
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Middleware(RequireAuth(next))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous expected 401 got %d", rec.Code)
	}

	w := httptest.NewRecorder()
	CreateSession(w)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookies(w))
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated expected 200 got %d", rec.Code)
	}
}
