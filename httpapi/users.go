package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	storegate "github.com/arvindpj/storegate"
	"github.com/arvindpj/storegate/session"
)

// requireAdmin re-checks the caller's role even though the gate already
// guards /api/users. The gate is page-level routing policy; this is the
// handler's own guarantee.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if h.engine.Introspect(r).IsAdmin() {
		return true
	}
	writeError(w, http.StatusForbidden, "forbidden", "admin role required")
	return false
}

type userPayload struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	EngineerName     string   `json:"engineerName,omitempty"`
	AllowedEngineers []string `json:"allowedEngineers,omitempty"`
	AllowedProjects  []string `json:"allowedProjects,omitempty"`
	AllowedPromos    []string `json:"allowedPromos,omitempty"`
	Active           bool     `json:"active"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
}

func toUserPayload(rec storegate.UserRecord) userPayload {
	return userPayload{
		ID:               rec.ID,
		Email:            rec.Email,
		Role:             rec.Role.String(),
		EngineerName:     rec.EngineerName,
		AllowedEngineers: rec.AllowedEngineers,
		AllowedProjects:  rec.AllowedProjects,
		AllowedPromos:    rec.AllowedPromos,
		Active:           rec.Active,
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type createUserRequest struct {
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Role             string   `json:"role"`
	EngineerName     string   `json:"engineerName"`
	AllowedEngineers []string `json:"allowedEngineers"`
	AllowedProjects  []string `json:"allowedProjects"`
	AllowedPromos    []string `json:"allowedPromos"`
}

type updateUserRequest struct {
	Password         *string   `json:"password"`
	Role             *string   `json:"role"`
	EngineerName     *string   `json:"engineerName"`
	AllowedEngineers *[]string `json:"allowedEngineers"`
	AllowedProjects  *[]string `json:"allowedProjects"`
	AllowedPromos    *[]string `json:"allowedPromos"`
	Active           *bool     `json:"active"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	records, err := h.engine.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	payload := make([]userPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toUserPayload(rec))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req createUserRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	role, err := session.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "role must be admin, engineer, or sub")
		return
	}

	ctx := storegate.WithClientIP(r.Context(), clientIP(r))
	rec, err := h.engine.CreateUser(ctx, storegate.CreateUserInput{
		Email:            req.Email,
		Password:         req.Password,
		Role:             role,
		EngineerName:     req.EngineerName,
		AllowedEngineers: req.AllowedEngineers,
		AllowedProjects:  req.AllowedProjects,
		AllowedPromos:    req.AllowedPromos,
	})
	if err != nil {
		switch {
		case errors.Is(err, storegate.ErrUserExists):
			writeError(w, http.StatusConflict, "user_exists", "email is already registered")
		case errors.Is(err, storegate.ErrInvalidUserInput):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserPayload(rec))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rec, err := h.engine.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storegate.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(rec))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req updateUserRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	input := storegate.UpdateUserInput{
		Password:         req.Password,
		EngineerName:     req.EngineerName,
		AllowedEngineers: req.AllowedEngineers,
		AllowedProjects:  req.AllowedProjects,
		AllowedPromos:    req.AllowedPromos,
		Active:           req.Active,
	}
	if req.Role != nil {
		role, err := session.ParseRole(*req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "role must be admin, engineer, or sub")
			return
		}
		input.Role = &role
	}

	ctx := storegate.WithClientIP(r.Context(), clientIP(r))
	rec, err := h.engine.UpdateUser(ctx, r.PathValue("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, storegate.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "not_found", "user not found")
		case errors.Is(err, storegate.ErrInvalidUserInput):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(rec))
}

// handleDeleteUser deactivates rather than deletes: the record stays for
// audit history, the account just cannot log in anymore.
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	ctx := storegate.WithClientIP(r.Context(), clientIP(r))
	if err := h.engine.DeactivateUser(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, storegate.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
