// Package tasks implements the task lifecycle and quorum-approval state
// machine. The Engine exclusively owns Task and Solution mutation; the
// TaskStore is the long-lived authority.
package tasks

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"curatord/pkg/logger"
	"curatord/pkg/models"
)

// ErrTaskNotFound is returned by stores when no task exists for an id.
// Engine mutations treat it as a silent no-op.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists tasks keyed by id.
type TaskStore interface {
	GetTask(id string) (models.Task, error)
	PutTask(t models.Task) error
	AllTasks() ([]models.Task, error)
	TasksByStatus(status models.TaskStatus) ([]models.Task, error)
}

// systemParticipant authors the synthetic discussion entries the engine
// appends on lifecycle transitions.
const systemParticipant = "system"

// RequiredApprovals returns the approval quorum for an assigned set of the
// given size: a two-thirds-plus-one supermajority, never below 2.
func RequiredApprovals(assignedSize int) int {
	req := assignedSize*2/3 + 1
	if req < 2 {
		req = 2
	}
	return req
}

// Engine advances tasks through their status state machine. Mutations are
// serialized with a single mutex; task churn is low enough that per-task
// locking is not worth it.
type Engine struct {
	mu    sync.Mutex
	store TaskStore
	now   func() time.Time
}

// NewEngine returns an engine over the given store.
func NewEngine(store TaskStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// SetClock overrides the engine clock; for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// CreateTask creates a PENDING task assigned to the given participants and
// appends an initial system discussion entry listing the assignees.
func (e *Engine) CreateTask(title, description string, assignedTo []string, priority models.TaskPriority, deadline string) (models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if priority == "" {
		priority = models.PriorityMedium
	}
	assigned := append([]string(nil), assignedTo...)
	sort.Strings(assigned)
	t := models.Task{
		ID:          genID(),
		Title:       title,
		Description: description,
		AssignedTo:  assigned,
		Status:      models.TaskPending,
		Priority:    priority,
		CreatedTS:   e.now().UTC().UnixNano(),
		Deadline:    deadline,
	}
	t.Discussion = append(t.Discussion, models.DiscussionEntry{
		Participant: systemParticipant,
		Message:     "task created; assigned to: " + strings.Join(assigned, ", "),
	})
	if err := e.store.PutTask(t); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	logger.Info("task_created", "id", t.ID, "title", title, "assignees", len(assigned))
	return t, nil
}

// AddDiscussion appends a discussion entry. A PENDING task advances to
// IN_PROGRESS. Unknown task ids are silently ignored.
func (e *Engine) AddDiscussion(taskID, participant, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addDiscussionLocked(taskID, participant, text)
}

func (e *Engine) addDiscussionLocked(taskID, participant, text string) error {
	t, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}
	t.Discussion = append(t.Discussion, models.DiscussionEntry{Participant: participant, Message: text})
	if t.Status == models.TaskPending {
		t.Status = models.TaskInProgress
	}
	return e.store.PutTask(t)
}

// ProposeSolution records a new solution version with a cleared approval
// set and moves the task to REVIEW. COMPLETED tasks cannot be re-entered.
func (e *Engine) ProposeSolution(taskID, participant, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}
	if t.Status == models.TaskCompleted {
		return nil
	}
	version := 1
	if t.Solution != nil {
		version = t.Solution.Version + 1
	}
	t.Solution = &models.Solution{
		Content: fmt.Sprintf("proposal from %s:\n%s", participant, content),
		Version: version,
	}
	t.Status = models.TaskReview
	if err := e.store.PutTask(t); err != nil {
		return err
	}
	logger.Info("solution_proposed", "task", taskID, "participant", participant, "version", version)
	return e.addDiscussionLocked(taskID, participant, fmt.Sprintf("solution proposed (version %d)", version))
}

// ApproveSolution adds the participant to the current solution's approval
// set (idempotent) and promotes the task to APPROVED once the quorum over
// the assigned set is met. Approvals from outside the assigned set are
// ignored, and a COMPLETED task stays COMPLETED.
func (e *Engine) ApproveSolution(taskID, participant string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}
	if t.Solution == nil || t.Status == models.TaskCompleted {
		return nil
	}
	if !t.IsAssignee(participant) {
		logger.Warn("approval_ignored", "task", taskID, "participant", participant)
		return nil
	}
	if !t.HasApproval(participant) {
		t.Solution.ApprovedBy = append(t.Solution.ApprovedBy, participant)
	}
	required := RequiredApprovals(len(t.AssignedTo))
	approved := len(t.Solution.ApprovedBy) >= required
	if approved {
		t.Status = models.TaskApproved
	} else {
		t.Status = models.TaskReview
	}
	if err := e.store.PutTask(t); err != nil {
		return err
	}
	logger.Info("solution_approval", "task", taskID, "participant", participant,
		"approvals", len(t.Solution.ApprovedBy), "required", required)
	if approved {
		return e.addDiscussionLocked(taskID, systemParticipant, "solution approved by majority")
	}
	return nil
}

// CompleteTask closes an APPROVED task. Any other state is a no-op.
func (e *Engine) CompleteTask(taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}
	if t.Status != models.TaskApproved {
		return nil
	}
	t.Status = models.TaskCompleted
	if err := e.store.PutTask(t); err != nil {
		return err
	}
	logger.Info("task_completed", "id", taskID)
	return e.addDiscussionLocked(taskID, systemParticipant, "task completed")
}

// PendingApprovals returns required minus granted approvals for the
// current solution; values <= 0 mean the quorum is satisfied.
func (e *Engine) PendingApprovals(taskID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.store.GetTask(taskID)
	if err != nil {
		return 0
	}
	granted := 0
	if t.Solution != nil {
		granted = len(t.Solution.ApprovedBy)
	}
	return RequiredApprovals(len(t.AssignedTo)) - granted
}

// NeedsImprovement reports whether the current solution is still short of
// its quorum.
func (e *Engine) NeedsImprovement(taskID string) bool {
	return e.PendingApprovals(taskID) > 0
}

// AllTasks returns every stored task.
func (e *Engine) AllTasks() ([]models.Task, error) {
	return e.store.AllTasks()
}

// TasksByStatus returns tasks currently in the given status.
func (e *Engine) TasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	return e.store.TasksByStatus(status)
}

func genID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
