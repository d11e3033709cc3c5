package handlers

import (
	"net/http"

	"github.com/diewo77/facturation/internal/auth"
	"github.com/diewo77/facturation/internal/config"
	"github.com/diewo77/facturation/internal/httpx"
)

// AuthHandler signs the single operator in and out.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// Login: POST /login with body {"email":..., "password":...}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !auth.CheckCredentials(req.Email, req.Password, h.Cfg.OperatorEmail, h.Cfg.OperatorPassword) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout: POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
