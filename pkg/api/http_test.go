package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"curatord/pkg/archive"
	"curatord/pkg/collect"
	"curatord/pkg/engine"
	"curatord/pkg/models"
	"curatord/pkg/seal"
	"curatord/pkg/tasks"
)

type memMessages struct {
	msgs []models.Message
}

func (s *memMessages) AppendMessage(m models.Message) error {
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *memMessages) RecentMessages(limit int) ([]models.Message, error) {
	return s.msgs, nil
}

type memTasks struct {
	m map[string]models.Task
}

func (s *memTasks) GetTask(id string) (models.Task, error) {
	t, ok := s.m[id]
	if !ok {
		return models.Task{}, tasks.ErrTaskNotFound
	}
	return t, nil
}

func (s *memTasks) PutTask(t models.Task) error { s.m[t.ID] = t; return nil }

func (s *memTasks) AllTasks() ([]models.Task, error) {
	out := make([]models.Task, 0, len(s.m))
	for _, t := range s.m {
		out = append(out, t)
	}
	return out, nil
}

func (s *memTasks) TasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.m {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

type memIndex struct {
	m map[string]models.DocumentMeta
}

func (i *memIndex) SaveDocMeta(meta models.DocumentMeta) error { i.m[meta.Name] = meta; return nil }
func (i *memIndex) GetDocMeta(name string) (models.DocumentMeta, bool, error) {
	meta, ok := i.m[name]
	return meta, ok, nil
}
func (i *memIndex) DeleteDocMeta(name string) error { delete(i.m, name); return nil }
func (i *memIndex) ListDocMetas() ([]models.DocumentMeta, error) {
	out := make([]models.DocumentMeta, 0, len(i.m))
	for _, meta := range i.m {
		out = append(out, meta)
	}
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *API) {
	t.Helper()
	sealer := seal.New(nil, "")
	docs, err := archive.New(t.TempDir(), sealer, &memIndex{m: map[string]models.DocumentMeta{}})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	eng := engine.New(engine.Config{}, &memMessages{}, sealer, docs, nil,
		tasks.NewEngine(&memTasks{m: map[string]models.Task{}}))
	eng.RegisterParticipant("agent-1")
	a := New(eng, collect.NewQueue(16, 8), docs, sealer)
	return httptest.NewServer(a.Router()), a
}

func TestIngestEndpoint(t *testing.T) {
	srv, a := newTestServer(t)
	defer srv.Close()

	body := `[{"author":"user","text":"привет"},{"author":"AI","source":"agent-1","text":"ответ"}]`
	resp, err := http.Post(srv.URL+"/v1/ingest", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var ack struct {
		Accepted int `json:"accepted"`
		Dropped  int `json:"dropped"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Accepted != 2 || ack.Dropped != 0 {
		t.Fatalf("ack = %+v", ack)
	}
	if got := len(a.Queue.NextBatch()); got != 2 {
		t.Fatalf("queued = %d, want 2", got)
	}
}

func TestIngestRejectsNonArray(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/ingest", "application/json", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	body := `{"title":"уборка","description":"подмести зал","assigned_to":["a","b","c"]}`
	resp, err := http.Post(srv.URL+"/v1/tasks", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var created models.Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || created.Status != models.TaskPending {
		t.Fatalf("status=%d task=%+v", resp.StatusCode, created)
	}

	post := func(path, body string) *http.Response {
		r, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return r
	}

	r := post("/v1/tasks/"+created.ID+"/solution", `{"participant":"a","content":"готово"}`)
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("solution status = %d", r.StatusCode)
	}
	for _, p := range []string{"a", "b", "c"} {
		r = post("/v1/tasks/"+created.ID+"/approve", `{"participant":"`+p+`"}`)
		r.Body.Close()
		if r.StatusCode != http.StatusOK {
			t.Fatalf("approve %s status = %d", p, r.StatusCode)
		}
	}
	r = post("/v1/tasks/"+created.ID+"/complete", "")
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("complete status = %d", r.StatusCode)
	}

	gr, err := http.Get(srv.URL + "/v1/tasks/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer gr.Body.Close()
	var got models.Task
	if err := json.NewDecoder(gr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.TaskCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/tasks", "application/json",
		bytes.NewReader([]byte(`{"description":"без названия"}`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestParticipantEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/participants", "application/json",
		strings.NewReader(`{"id":"agent-2"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	// duplicate registration conflicts
	resp, _ = http.Post(srv.URL+"/v1/participants", "application/json",
		strings.NewReader(`{"id":"agent-2"}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d", resp.StatusCode)
	}

	gr, err := http.Get(srv.URL + "/v1/participants")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer gr.Body.Close()
	var list struct {
		Participants []models.Participant `json:"participants"`
	}
	if err := json.NewDecoder(gr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Participants) != 2 {
		t.Fatalf("participants = %v", list.Participants)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/participants/agent-2", nil)
	dr, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	dr.Body.Close()
	if dr.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", dr.StatusCode)
	}
}

func TestDocumentNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/documents/no_such.txt")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
