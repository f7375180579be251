package api

import (
	"net/http"
	"strconv"

	"curatord/pkg/models"
	"curatord/pkg/store"

	"github.com/gorilla/mux"
)

// defaultRecentLimit bounds GET /v1/messages/recent when no limit is
// given.
const defaultRecentLimit = 100

// recentMessages handles GET /v1/messages/recent?limit=<n>. Sealed
// message bodies are opened before they leave the process.
func (a *API) recentMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		n, err := strconv.Atoi(limStr)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	msgs, err := store.RecentMessages(limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range msgs {
		a.openMessage(&msgs[i])
	}
	writeJSON(w, http.StatusOK, struct {
		Messages []models.Message `json:"messages"`
	}{Messages: msgs})
}

// messageByTS handles GET /v1/messages/{ts} where ts is the message's
// nanosecond timestamp.
func (a *API) messageByTS(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(mux.Vars(r)["ts"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid timestamp")
		return
	}
	m, ok, err := store.MessageByTimestamp(ts)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeErr(w, http.StatusNotFound, "message not found")
		return
	}
	a.openMessage(&m)
	writeJSON(w, http.StatusOK, m)
}

func (a *API) openMessage(m *models.Message) {
	if m.Sealed && a.Sealer != nil {
		m.Text = a.Sealer.Open(m.Text)
		m.Sealed = false
	}
}
