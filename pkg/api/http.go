// Package api assembles the HTTP surface: public auth routes, the
// session-guarded account and topic routes, and the health endpoints.
package api

import (
	"net/http"

	"synapse/pkg/api/handlers"
	"synapse/pkg/auth"
	"synapse/pkg/convo"
	"synapse/pkg/store"
	"synapse/pkg/telemetry"

	"github.com/gorilla/mux"
)

// NewRouter builds the full route tree.
//
//	POST /api/auth/{register,login,refresh,verify}   public
//	/api/users/...                                   bearer token
//	/v1/topics...                                    bearer token
func NewRouter(svc *auth.Service, orch *convo.Orchestrator) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthzHandler)
	r.HandleFunc("/readyz", readyzHandler)

	requireUser := auth.RequireUser(svc.Tokens())

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.Use(measured("auth"))
	handlers.RegisterAuth(authR, svc)

	usersR := r.PathPrefix("/api/users").Subrouter()
	usersR.Use(measured("users"), requireUser)
	handlers.RegisterUsers(usersR, svc)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(measured("topics"), requireUser)
	handlers.RegisterTopics(v1)
	handlers.RegisterChat(v1, orch)

	return r
}

// measured adapts the telemetry middleware to a fixed route label so
// per-resource IDs never become metric label values.
func measured(route string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return telemetry.Middleware(route, next)
	}
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// readyzHandler reports whether the topic store is open.
func readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
