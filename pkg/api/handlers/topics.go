package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"synapse/pkg/auth"
	"synapse/pkg/logger"
	"synapse/pkg/models"
	"synapse/pkg/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RegisterTopics registers the topic collection and single-resource
// routes. Callers see only their own topics.
func RegisterTopics(r *mux.Router) {
	r.HandleFunc("/topics", createTopic).Methods(http.MethodPost)
	r.HandleFunc("/topics", listTopics).Methods(http.MethodGet)
	r.HandleFunc("/topics/{id}", getTopic).Methods(http.MethodGet)
	r.HandleFunc("/topics/{id}", deleteTopic).Methods(http.MethodDelete)
}

// ownedTopic loads a topic and checks it belongs to the session user.
// A topic owned by someone else reads as missing.
func ownedTopic(w http.ResponseWriter, r *http.Request, id string) *models.Topic {
	t, err := store.GetTopic(id)
	if err != nil {
		if store.IsNotFound(err) {
			http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		} else {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		}
		return nil
	}
	if s, ok := auth.SessionFromContext(r.Context()); ok && t.Owner != "" && t.Owner != s.UserID {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return nil
	}
	return t
}

// createTopic handles POST /topics. A topic starts with no branches;
// the root branch appears on the first message.
func createTopic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var t models.Topic
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if t.Name == "" {
		http.Error(w, `{"error":"topic name is required"}`, http.StatusBadRequest)
		return
	}
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		t.Owner = s.UserID
	}
	if t.ID == "" {
		t.ID = "topic-" + uuid.NewString()
	}
	if t.CreatedTS == 0 {
		t.CreatedTS = time.Now().UTC().UnixNano()
	}
	if t.UpdatedTS == 0 {
		t.UpdatedTS = t.CreatedTS
	}
	t.Branches = []*models.BranchNode{}
	t.CurrentBranchID = ""

	if err := store.SaveTopic(&t); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	logger.Info("topic_created", "topic", t.ID, "owner", t.Owner)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

// listTopics handles GET /topics for the session user's topics.
func listTopics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	owner := ""
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		owner = s.UserID
	}

	all, err := store.ListTopics()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	out := make([]*models.Topic, 0, len(all))
	for _, t := range all {
		if owner != "" && t.Owner != "" && t.Owner != owner {
			continue
		}
		out = append(out, t)
	}
	_ = json.NewEncoder(w).Encode(struct {
		Topics []*models.Topic `json:"topics"`
	}{Topics: out})
}

// getTopic handles GET /topics/{id}. Returns 404 for missing or
// foreign topics.
func getTopic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t := ownedTopic(w, r, mux.Vars(r)["id"])
	if t == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(t)
}

// deleteTopic handles DELETE /topics/{id} and removes the whole branch
// forest with the topic.
func deleteTopic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if ownedTopic(w, r, id) == nil {
		return
	}
	if err := store.DeleteTopic(id); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	logger.Info("topic_deleted", "topic", id)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "deleted", "id": id})
}
