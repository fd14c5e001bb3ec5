package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"example.com/wordlink/internal/auth"
)

// AdminSessions issues and revokes admin tokens.
type AdminSessions interface {
	TokenAuthenticator
	Login(password string) (string, time.Duration, error)
	Logout(claims *auth.Claims)
}

type AuthHandler struct {
	Admins AdminSessions
	Log    *slog.Logger
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "password is required")
		return
	}

	token, ttl, err := h.Admins.Login(req.Password)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresIn: int64(ttl / time.Second)})
}

// Logout runs behind AdminMiddleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context")
		return
	}
	h.Admins.Logout(claims)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}
