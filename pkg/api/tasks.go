package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"curatord/pkg/models"
	"curatord/pkg/tasks"

	"github.com/gorilla/mux"
)

// createTask handles POST /v1/tasks. Omitting assigned_to assigns the
// task to every currently active participant.
func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		AssignedTo  []string `json:"assigned_to"`
		Priority    string   `json:"priority"`
		Deadline    string   `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Title == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}
	assignees := req.AssignedTo
	if len(assignees) == 0 {
		assignees = a.Engine.Tracker().ActiveIDs()
	}
	priority := models.PriorityMedium
	switch models.TaskPriority(req.Priority) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		priority = models.TaskPriority(req.Priority)
	}
	t, err := a.Engine.Tasks().CreateTask(req.Title, req.Description, assignees, priority, req.Deadline)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// listTasks handles GET /v1/tasks?status=<status>.
func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.Task
		err error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		out, err = a.Engine.Tasks().TasksByStatus(models.TaskStatus(status))
	} else {
		out, err = a.Engine.Tasks().AllTasks()
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Tasks []models.Task `json:"tasks"`
	}{Tasks: out})
}

// getTask handles GET /v1/tasks/{id}.
func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	all, err := a.Engine.Tasks().AllTasks()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := mux.Vars(r)["id"]
	for _, t := range all {
		if t.ID == id {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "task not found")
}

// addDiscussion handles POST /v1/tasks/{id}/discussion.
func (a *API) addDiscussion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant string `json:"participant"`
		Content     string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Participant == "" || req.Content == "" {
		writeErr(w, http.StatusBadRequest, "participant and content are required")
		return
	}
	if err := a.Engine.Tasks().AddDiscussion(mux.Vars(r)["id"], req.Participant, req.Content); err != nil {
		a.taskErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// proposeSolution handles POST /v1/tasks/{id}/solution.
func (a *API) proposeSolution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant string `json:"participant"`
		Content     string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Participant == "" || req.Content == "" {
		writeErr(w, http.StatusBadRequest, "participant and content are required")
		return
	}
	if err := a.Engine.Tasks().ProposeSolution(mux.Vars(r)["id"], req.Participant, req.Content); err != nil {
		a.taskErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// approveSolution handles POST /v1/tasks/{id}/approve.
func (a *API) approveSolution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant string `json:"participant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Participant == "" {
		writeErr(w, http.StatusBadRequest, "participant is required")
		return
	}
	id := mux.Vars(r)["id"]
	if err := a.Engine.Tasks().ApproveSolution(id, req.Participant); err != nil {
		a.taskErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"pending_approvals": a.Engine.Tasks().PendingApprovals(id),
	})
}

// completeTask handles POST /v1/tasks/{id}/complete.
func (a *API) completeTask(w http.ResponseWriter, r *http.Request) {
	if err := a.Engine.Tasks().CompleteTask(mux.Vars(r)["id"]); err != nil {
		a.taskErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) taskErr(w http.ResponseWriter, err error) {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
