package handler

import (
	"net/http"
	"time"

	"freshmart/internal/auth"
	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	accounts     service.AccountService
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler. cookieSecure marks the credential cookies Secure.
func NewAuthHandler(accounts service.AccountService, cookieSecure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// Register returns the handler for POST /api/auth/{role}/register.
func (h *AuthHandler) Register(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}

		account, err := h.accounts.Register(r.Context(), role, &req)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

// Login returns the handler for POST /api/auth/{role}/login. The token is returned in the
// body and set as a cookie together with the session cookie when sessions are enabled.
func (h *AuthHandler) Login(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}

		resp, err := h.accounts.Login(r.Context(), role, &req)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}

		http.SetCookie(w, h.cookie(auth.TokenCookie, resp.Token, resp.ExpiresAt))
		if resp.SessionID != "" {
			http.SetCookie(w, h.cookie(auth.SessionCookie, resp.SessionID, resp.ExpiresAt))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		if err := h.accounts.Logout(r.Context(), c.Value); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	expired := time.Unix(0, 0)
	http.SetCookie(w, h.cookie(auth.TokenCookie, "", expired))
	http.SetCookie(w, h.cookie(auth.SessionCookie, "", expired))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	account, err := h.accounts.Me(r.Context(), identity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
