package api

import (
	"net/http"

	"curatord/pkg/archive"
	"curatord/pkg/models"

	"github.com/gorilla/mux"
)

// listDocuments handles GET /v1/documents.
func (a *API) listDocuments(w http.ResponseWriter, r *http.Request) {
	metas, err := a.Docs.List()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Documents []models.DocumentMeta `json:"documents"`
	}{Documents: metas})
}

// getDocument handles GET /v1/documents/{name}. Pass ?preview=1 for the
// truncated form.
func (a *API) getDocument(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	content, ok, err := a.Docs.Load(name)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeErr(w, http.StatusNotFound, "document not found")
		return
	}
	if r.URL.Query().Get("preview") != "" {
		content = archive.Preview(content, archive.PreviewLength)
	}
	meta, _, _ := a.Docs.Meta(name)
	writeJSON(w, http.StatusOK, struct {
		Name    string `json:"name"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}{Name: name, Title: meta.Title, Content: content})
}
