// Package auth implements the operator gate: a single authorized operator
// identified by a signed session cookie. Identity itself (who the operator
// is, password policy) stays outside the core; the rest of the application
// only ever asks "is an authorized operator acting".
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	operatorCtxKey    = ctxKey("operator")
	sessionSubject    = "operator"
)

// Secret returns SESSION_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(value string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CheckCredentials compares the submitted login against the configured
// operator in constant time.
func CheckCredentials(email, password, wantEmail, wantPassword string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(strings.ToLower(wantEmail)))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword))
	return emailOK == 1 && passOK == 1
}

// CreateSession sets the signed operator cookie.
func CreateSession(w http.ResponseWriter) {
	value := sessionSubject + "." + sign(sessionSubject)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature.
func ParseSession(r *http.Request) bool {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 || parts[0] != sessionSubject {
		return false
	}
	return hmac.Equal([]byte(parts[1]), []byte(sign(parts[0])))
}

// WithOperator marks the context as carrying an authorized operator.
func WithOperator(ctx context.Context) context.Context {
	return context.WithValue(ctx, operatorCtxKey, true)
}

// IsOperator reports whether an authorized operator is acting.
func IsOperator(ctx context.Context) bool {
	ok, _ := ctx.Value(operatorCtxKey).(bool)
	return ok
}

// Middleware attaches the operator marker to the request context when a
// valid session cookie is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ParseSession(r) {
			r = r.WithContext(WithOperator(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects unauthenticated requests with 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsOperator(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
