package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"synapse/pkg/auth"
	"synapse/pkg/logger"
	"synapse/pkg/models"

	"github.com/gorilla/mux"
)

// RegisterAuth registers the public authentication routes to the
// provided router.
func RegisterAuth(r *mux.Router, svc *auth.Service) {
	h := &authHandlers{svc: svc}
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/refresh", h.refresh).Methods(http.MethodPost)
	r.HandleFunc("/verify", h.verify).Methods(http.MethodPost)
}

type authHandlers struct {
	svc *auth.Service
}

// register handles POST /api/auth/register to create a new account.
// Returns 201 with the issued token pair, 409 on duplicate
// email/username, 400 on validation failures.
func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	resp := h.svc.Register(r.Context(), req)
	if resp.Success {
		logger.Info("user_registered", "user", resp.User.ID)
	}
	writeAuth(w, resp, http.StatusCreated)
}

// login handles POST /api/auth/login. Unknown email and wrong password
// both come back as the same generic 401.
func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	resp := h.svc.Login(r.Context(), req)
	if resp.Success {
		logger.Info("user_logged_in", "user", resp.User.ID)
	}
	writeAuth(w, resp, http.StatusOK)
}

// refresh handles POST /api/auth/refresh to rotate the token pair.
func (h *authHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	writeAuth(w, h.svc.Refresh(r.Context(), req.RefreshToken), http.StatusOK)
}

// verify handles POST /api/auth/verify. The access token may come in
// the body or as a Bearer header.
func (h *authHandlers) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Token == "" {
		if hv := r.Header.Get("Authorization"); strings.HasPrefix(hv, "Bearer ") {
			req.Token = strings.TrimPrefix(hv, "Bearer ")
		}
	}
	writeAuth(w, h.svc.Verify(r.Context(), req.Token), http.StatusOK)
}
