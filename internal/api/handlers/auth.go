package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safetube/safetube-backend/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// VerifyPIN exchanges the parent PIN for a session token.
func (h *AuthHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PIN == "" {
		writeError(w, http.StatusBadRequest, "pin required")
		return
	}

	token, err := h.auth.VerifyPIN(r.Context(), req.PIN, clientIP(r))
	switch {
	case errors.Is(err, auth.ErrLockedOut):
		writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	case errors.Is(err, auth.ErrInvalidPIN):
		writeError(w, http.StatusUnauthorized, "incorrect pin")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "pin verification unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
