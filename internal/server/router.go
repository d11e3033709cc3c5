package server

import (
	"log"
	"net/http"
	"time"

	"github.com/diewo77/facturation/internal/auth"
	"github.com/diewo77/facturation/internal/billing"
	"github.com/diewo77/facturation/internal/config"
	"github.com/diewo77/facturation/internal/handlers"
	"github.com/diewo77/facturation/internal/httpx"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Operator session
	ah := handlers.NewAuthHandler(cfg)
	mux.Handle("/login", post(ah.Login))
	mux.Handle("/logout", post(ah.Logout))

	// Invoice endpoints, all behind the operator gate. Reads are gated too:
	// invoices carry client contact details.
	svc := billing.NewService(db)
	ih := handlers.NewInvoiceHandler(svc)
	mux.Handle("/invoices", gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ih.List(w, r)
		case http.MethodPost:
			ih.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/invoices/get", gate(get(ih.Get)))
	mux.Handle("/invoices/update", gate(post(ih.Update)))
	mux.Handle("/invoices/status", gate(post(ih.Status)))
	mux.Handle("/invoices/delete", gate(post(ih.Delete)))
	mux.Handle("/invoices/duplicate", gate(post(ih.Duplicate)))
	mux.Handle("/invoices/pdf", gate(get(ih.PDF)))
	mux.Handle("/dashboard", gate(get(ih.Dashboard)))

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Facturation API"))
	})

	return withRecover(withLogging(mux))
}

func gate(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func get(h http.HandlerFunc) http.Handler  { return method(http.MethodGet, h) }
func post(h http.HandlerFunc) http.Handler { return method(http.MethodPost, h) }

func method(m string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.Header().Set("Allow", m)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
