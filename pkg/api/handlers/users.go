package handlers

import (
	"encoding/json"
	"net/http"

	"synapse/pkg/auth"
	"synapse/pkg/logger"
	"synapse/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterUsers registers the account-lifecycle routes to the provided
// router. The router is expected to already require a verified session.
func RegisterUsers(r *mux.Router, svc *auth.Service) {
	h := &userHandlers{svc: svc}
	r.HandleFunc("/password", h.updatePassword).Methods(http.MethodPut)
	r.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	r.HandleFunc("/delete", h.deleteUser).Methods(http.MethodPost)
	r.HandleFunc("/restore", h.restoreUser).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
}

type userHandlers struct {
	svc *auth.Service
}

// sessionUserID resolves the acting user. A body-supplied userId wins
// so tooling can operate on other accounts; otherwise the session's.
func sessionUserID(r *http.Request, bodyID string) string {
	if bodyID != "" {
		return bodyID
	}
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		return s.UserID
	}
	return ""
}

// updatePassword handles PUT /api/users/password.
func (h *userHandlers) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string `json:"userId"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	id := sessionUserID(r, req.UserID)
	writeAuth(w, h.svc.UpdatePassword(r.Context(), id, req.CurrentPassword, req.NewPassword), http.StatusOK)
}

// updateProfile handles PUT /api/users/profile to change email and/or
// username.
func (h *userHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	id := sessionUserID(r, req.UserID)
	writeAuth(w, h.svc.UpdateProfile(r.Context(), id, req.Email, req.Username), http.StatusOK)
}

// deleteUser handles POST /api/users/delete. Default is a soft delete;
// permanent=true removes the row for good.
func (h *userHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		Permanent bool   `json:"permanent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	id := sessionUserID(r, req.UserID)
	resp := h.svc.Delete(r.Context(), id, req.Permanent)
	if resp.Success {
		logger.Info("user_deleted", "user", id, "permanent", req.Permanent)
	}
	writeAuth(w, resp, http.StatusOK)
}

// restoreUser handles POST /api/users/restore to undo a soft delete.
func (h *userHandlers) restoreUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	resp := h.svc.Restore(r.Context(), req.UserID)
	if resp.Success {
		logger.Info("user_restored", "user", req.UserID)
	}
	writeAuth(w, resp, http.StatusOK)
}

// stats handles GET /api/users/stats with aggregate account counts.
func (h *userHandlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "服务器内部错误")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, st)
}
