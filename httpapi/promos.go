package httpapi

import (
	"errors"
	"net/http"
	"slices"

	storegate "github.com/arvindpj/storegate"
	"github.com/arvindpj/storegate/scope"
)

type promoPayload struct {
	Code         string `json:"code"`
	EngineerName string `json:"engineerName,omitempty"`
	Description  string `json:"description,omitempty"`
}

// handleGetPromo is the representative scoped read: a code outside the
// caller's visibility answers 403, a missing code 404 — never conflated.
func (h *Handler) handleGetPromo(w http.ResponseWriter, r *http.Request) {
	sess := h.engine.Introspect(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	promo, err := h.promos.GetPromo(r.Context(), r.PathValue("code"))
	if err != nil {
		if errors.Is(err, storegate.ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "promo not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	if err := scope.FromSession(sess).CheckPromo(promo.Code, promo.EngineerName); err != nil {
		writeError(w, http.StatusForbidden, "forbidden", "promo not visible to this account")
		return
	}

	writeJSON(w, http.StatusOK, promoPayload{
		Code:         promo.Code,
		EngineerName: promo.EngineerName,
		Description:  promo.Description,
	})
}

func (h *Handler) handleListPromos(w http.ResponseWriter, r *http.Request) {
	sess := h.engine.Introspect(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	promos, err := h.promos.ListPromos(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	access := scope.FromSession(sess)
	all, codes, byOwner := access.Promos()
	_, owners := access.Engineers()

	payload := make([]promoPayload, 0, len(promos))
	for _, promo := range promos {
		visible := all
		if !visible && byOwner {
			visible = slices.Contains(owners, promo.EngineerName)
		}
		if !visible && !byOwner {
			visible = slices.Contains(codes, promo.Code)
		}
		if !visible {
			continue
		}
		payload = append(payload, promoPayload{
			Code:         promo.Code,
			EngineerName: promo.EngineerName,
			Description:  promo.Description,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}
