// Package httpapi exposes the dashboard's authentication JSON API: login,
// logout, session introspection, admin user management, and the scoped promo
// reads. It sits behind the middleware gate for page rules but repeats the
// role checks that matter, so the API stays safe even when mounted bare.
package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	storegate "github.com/arvindpj/storegate"
)

// Handler bundles the auth engine with its HTTP surface.
type Handler struct {
	engine *storegate.Engine
	promos storegate.PromoDirectory
	logger zerolog.Logger
}

// NewHandler builds the API handler. promos may be nil, which disables the
// promo endpoints.
func NewHandler(engine *storegate.Engine, promos storegate.PromoDirectory, logger zerolog.Logger) *Handler {
	return &Handler{engine: engine, promos: promos, logger: logger}
}

// Routes returns the API mux with request logging attached.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/logout", h.handleLogout)
	mux.HandleFunc("GET /api/me", h.handleMe)

	mux.HandleFunc("GET /api/users", h.handleListUsers)
	mux.HandleFunc("POST /api/users", h.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", h.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", h.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", h.handleDeleteUser)

	if h.promos != nil {
		mux.HandleFunc("GET /api/promos", h.handleListPromos)
		mux.HandleFunc("GET /api/promos/{code}", h.handleGetPromo)
	}

	return h.withLogging(mux)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	Email         string   `json:"email,omitempty"`
	Role          string   `json:"role,omitempty"`
	EngineerName  string   `json:"engineerName,omitempty"`
	AllowedPromos []string `json:"allowedPromos,omitempty"`
	ExpiresAt     string   `json:"expiresAt,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := storegate.WithClientIP(r.Context(), clientIP(r))
	token, sess, err := h.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storegate.ErrLoginRateLimited) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
			return
		}
		// One response for every other failure: unknown email, inactive
		// account, wrong password, backend trouble.
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	h.engine.IssueCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Email:         sess.Email,
		Role:          sess.Role.String(),
		EngineerName:  sess.EngineerName,
		ExpiresAt:     time.Unix(sess.ExpiresAt, 0).UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := storegate.WithClientIP(r.Context(), clientIP(r))
	h.engine.Logout(ctx, w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMe reports who the caller is. It is informational for the frontend;
// the gate and handler-level checks remain the authoritative enforcement.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := h.engine.Introspect(r)
	if sess == nil {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	resp := sessionResponse{
		Authenticated: true,
		Email:         sess.Email,
		Role:          sess.Role.String(),
	}
	if name, ok := sess.Engineer(); ok {
		resp.EngineerName = name
	}
	if sub, ok := sess.Sub(); ok {
		resp.AllowedPromos = sub.Promos
	}
	if sess.ExpiresAt != 0 {
		resp.ExpiresAt = time.Unix(sess.ExpiresAt, 0).UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
