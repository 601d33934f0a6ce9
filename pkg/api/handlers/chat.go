package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"synapse/pkg/branch"
	"synapse/pkg/convo"
	"synapse/pkg/layout"
	"synapse/pkg/logger"
	"synapse/pkg/store"

	"github.com/gorilla/mux"
)

// RegisterChat registers the conversation routes: sending messages,
// forking branches, selecting the active branch and computing the
// canvas layout.
func RegisterChat(r *mux.Router, orch *convo.Orchestrator) {
	h := &chatHandlers{orch: orch}
	r.HandleFunc("/topics/{id}/messages", h.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/topics/{id}/branches", h.createBranch).Methods(http.MethodPost)
	r.HandleFunc("/topics/{id}/branches/{branchID}/select", h.selectBranch).Methods(http.MethodPut)
	r.HandleFunc("/topics/{id}/layout", h.getLayout).Methods(http.MethodGet)
}

type chatHandlers struct {
	orch *convo.Orchestrator
}

func chatError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
	case errors.Is(err, branch.ErrBranchNotFound):
		http.Error(w, `{"error":"branch not found"}`, http.StatusNotFound)
	default:
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
	}
}

// sendMessage handles POST /topics/{id}/messages. The reply is
// synchronous: the response carries the updated topic with both the
// user turn and the assistant turn appended.
func (h *chatHandlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if ownedTopic(w, r, id) == nil {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"message content is required"}`, http.StatusBadRequest)
		return
	}
	t, err := h.orch.SendMessage(r.Context(), id, req.Content)
	if err != nil {
		chatError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// createBranch handles POST /topics/{id}/branches. The branch is
// returned immediately; its follow-up completion runs in the
// background.
func (h *chatHandlers) createBranch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if ownedTopic(w, r, id) == nil {
		return
	}
	var req struct {
		SourceBranchID string `json:"sourceBranchId"`
		Name           string `json:"name"`
		UpToMessageID  string `json:"upToMessageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.SourceBranchID == "" {
		http.Error(w, `{"error":"sourceBranchId is required"}`, http.StatusBadRequest)
		return
	}
	t, nb, err := h.orch.CreateBranch(r.Context(), id, req.SourceBranchID, req.Name, req.UpToMessageID)
	if err != nil {
		chatError(w, err)
		return
	}
	logger.Info("branch_created", "topic", id, "branch", nb.ID, "source", req.SourceBranchID)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(struct {
		Topic  interface{} `json:"topic"`
		Branch interface{} `json:"branch"`
	}{Topic: t, Branch: nb})
}

// selectBranch handles PUT /topics/{id}/branches/{branchID}/select.
// Selecting an unknown branch is a 404, not a silent no-op.
func (h *chatHandlers) selectBranch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	if ownedTopic(w, r, vars["id"]) == nil {
		return
	}
	t, err := h.orch.SelectBranch(vars["id"], vars["branchID"])
	if err != nil {
		chatError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// getLayout handles GET /topics/{id}/layout?orientation=horizontal.
// Positions are computed from the current branch forest; the stored
// positions are left untouched unless apply=true.
func (h *chatHandlers) getLayout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t := ownedTopic(w, r, mux.Vars(r)["id"])
	if t == nil {
		return
	}
	o := layout.Horizontal
	switch r.URL.Query().Get("orientation") {
	case "", "horizontal":
	case "vertical":
		o = layout.Vertical
	default:
		http.Error(w, `{"error":"orientation must be horizontal or vertical"}`, http.StatusBadRequest)
		return
	}
	res := layout.Compute(t.Branches, o)
	if r.URL.Query().Get("apply") == "true" {
		nt := t.Clone()
		layout.Apply(nt.Branches, res)
		if err := store.SaveTopic(nt); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}
