// Package api exposes the HTTP surface of the curation daemon: message
// ingest, curated record reads, task workflow mutations, roster and
// document management.
package api

import (
	"encoding/json"
	"net/http"

	"curatord/pkg/archive"
	"curatord/pkg/collect"
	"curatord/pkg/engine"
	"curatord/pkg/seal"

	"github.com/gorilla/mux"
)

// API bundles the dependencies the handlers need.
type API struct {
	Engine *engine.Engine
	Queue  *collect.Queue
	Docs   *archive.Archive
	Sealer *seal.Sealer
}

func New(eng *engine.Engine, queue *collect.Queue, docs *archive.Archive, sealer *seal.Sealer) *API {
	return &API{Engine: eng, Queue: queue, Docs: docs, Sealer: sealer}
}

// Router returns the versioned router with all routes registered.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/ingest", a.ingest).Methods(http.MethodPost)

	v1.HandleFunc("/messages/recent", a.recentMessages).Methods(http.MethodGet)
	v1.HandleFunc("/messages/{ts}", a.messageByTS).Methods(http.MethodGet)

	v1.HandleFunc("/tasks", a.createTask).Methods(http.MethodPost)
	v1.HandleFunc("/tasks", a.listTasks).Methods(http.MethodGet)
	v1.HandleFunc("/tasks/{id}", a.getTask).Methods(http.MethodGet)
	v1.HandleFunc("/tasks/{id}/discussion", a.addDiscussion).Methods(http.MethodPost)
	v1.HandleFunc("/tasks/{id}/solution", a.proposeSolution).Methods(http.MethodPost)
	v1.HandleFunc("/tasks/{id}/approve", a.approveSolution).Methods(http.MethodPost)
	v1.HandleFunc("/tasks/{id}/complete", a.completeTask).Methods(http.MethodPost)

	v1.HandleFunc("/participants", a.listParticipants).Methods(http.MethodGet)
	v1.HandleFunc("/participants", a.addParticipant).Methods(http.MethodPost)
	v1.HandleFunc("/participants/{id}", a.removeParticipant).Methods(http.MethodDelete)

	v1.HandleFunc("/documents", a.listDocuments).Methods(http.MethodGet)
	v1.HandleFunc("/documents/{name}", a.getDocument).Methods(http.MethodGet)

	return r
}

// writeJSON writes the provided value as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr writes a JSON error response with the given status code.
func writeErr(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
