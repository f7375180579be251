package api

import (
	"io"
	"net/http"

	"curatord/pkg/collect"
	"curatord/pkg/logger"

	"github.com/tidwall/sjson"
)

// maxIngestBody caps the raw ingest payload size.
const maxIngestBody = 4 << 20

// ingest handles POST /v1/ingest. The body is a JSON array of raw
// messages; malformed entries are skipped, messages that do not fit the
// queue are reported as dropped.
func (a *API) ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "read failed")
		return
	}
	batch := collect.ParseBatch(body)
	if batch == nil {
		writeErr(w, http.StatusBadRequest, "expected a json array of messages")
		return
	}
	accepted, dropped := 0, 0
	for _, m := range batch {
		if a.Queue.Offer(m) {
			accepted++
		} else {
			dropped++
		}
	}
	logger.Info("ingest_received", "accepted", accepted, "dropped", dropped)

	ack, _ := sjson.Set("", "accepted", accepted)
	ack, _ = sjson.Set(ack, "dropped", dropped)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(ack))
}
