package api

import (
	"encoding/json"
	"net/http"

	"curatord/pkg/models"

	"github.com/gorilla/mux"
)

// listParticipants handles GET /v1/participants.
func (a *API) listParticipants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Participants []models.Participant `json:"participants"`
		Active       int                  `json:"active"`
	}{
		Participants: a.Engine.Tracker().Participants(),
		Active:       a.Engine.Tracker().ActiveCount(),
	})
}

// addParticipant handles POST /v1/participants.
func (a *API) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" {
		writeErr(w, http.StatusBadRequest, "id is required")
		return
	}
	if !a.Engine.RegisterParticipant(req.ID) {
		writeErr(w, http.StatusConflict, "participant already registered")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// removeParticipant handles DELETE /v1/participants/{id}. The last
// remaining participant cannot be removed.
func (a *API) removeParticipant(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !a.Engine.UnregisterParticipant(id) {
		writeErr(w, http.StatusConflict, "participant not removable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
