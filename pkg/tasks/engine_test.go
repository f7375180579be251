package tasks

import (
	"testing"

	"curatord/pkg/models"
)

type memStore struct {
	m map[string]models.Task
}

func newMemStore() *memStore { return &memStore{m: map[string]models.Task{}} }

func (s *memStore) GetTask(id string) (models.Task, error) {
	t, ok := s.m[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (s *memStore) PutTask(t models.Task) error {
	s.m[t.ID] = t
	return nil
}

func (s *memStore) AllTasks() ([]models.Task, error) {
	out := make([]models.Task, 0, len(s.m))
	for _, t := range s.m {
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) TasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.m {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestRequiredApprovals(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
		{6, 5},
		{10, 7},
	}
	for _, c := range cases {
		if got := RequiredApprovals(c.n); got != c.want {
			t.Errorf("RequiredApprovals(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestCreateTaskStartsPending(t *testing.T) {
	e := NewEngine(newMemStore())
	task, err := e.CreateTask("fix roof", "the roof leaks", []string{"b", "a", "c"}, "", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != models.TaskPending {
		t.Fatalf("status = %s, want PENDING", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", task.Priority)
	}
	// assignees are stored sorted
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if task.AssignedTo[i] != id {
			t.Fatalf("assigned = %v, want %v", task.AssignedTo, want)
		}
	}
	if len(task.Discussion) != 1 || task.Discussion[0].Participant != "system" {
		t.Fatalf("expected an initial system discussion entry, got %v", task.Discussion)
	}
}

func TestDiscussionAdvancesPending(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b", "c"}, models.PriorityHigh, "")

	if err := e.AddDiscussion(task.ID, "a", "starting on this"); err != nil {
		t.Fatalf("AddDiscussion: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != models.TaskInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", got.Status)
	}

	// unknown task ids are ignored
	if err := e.AddDiscussion("nope", "a", "x"); err != nil {
		t.Fatalf("AddDiscussion unknown id: %v", err)
	}
}

func TestQuorumApproval(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b", "c"}, "", "")

	if err := e.ProposeSolution(task.ID, "a", "do it like this"); err != nil {
		t.Fatalf("ProposeSolution: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != models.TaskReview {
		t.Fatalf("status = %s, want REVIEW", got.Status)
	}
	if got.Solution.Version != 1 {
		t.Fatalf("version = %d, want 1", got.Solution.Version)
	}

	// quorum for 3 assignees is 3
	for i, p := range []string{"a", "b"} {
		if err := e.ApproveSolution(task.ID, p); err != nil {
			t.Fatalf("approve %d: %v", i, err)
		}
		got, _ = s.GetTask(task.ID)
		if got.Status != models.TaskReview {
			t.Fatalf("status after %d approvals = %s, want REVIEW", i+1, got.Status)
		}
	}
	if err := e.ApproveSolution(task.ID, "c"); err != nil {
		t.Fatalf("final approve: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Status != models.TaskApproved {
		t.Fatalf("status = %s, want APPROVED", got.Status)
	}

	// repeated approval does not double count
	if err := e.ApproveSolution(task.ID, "a"); err != nil {
		t.Fatalf("repeat approve: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if len(got.Solution.ApprovedBy) != 3 {
		t.Fatalf("approvals = %d, want 3", len(got.Solution.ApprovedBy))
	}
}

func TestReproposalResetsApprovals(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b", "c"}, "", "")

	_ = e.ProposeSolution(task.ID, "a", "v1")
	_ = e.ApproveSolution(task.ID, "a")
	_ = e.ApproveSolution(task.ID, "b")

	if err := e.ProposeSolution(task.ID, "b", "v2"); err != nil {
		t.Fatalf("re-propose: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Solution.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Solution.Version)
	}
	if len(got.Solution.ApprovedBy) != 0 {
		t.Fatalf("approvals not cleared: %v", got.Solution.ApprovedBy)
	}
	if got.Status != models.TaskReview {
		t.Fatalf("status = %s, want REVIEW", got.Status)
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b"}, "", "")

	// complete before approval is a no-op
	if err := e.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != models.TaskPending {
		t.Fatalf("status = %s, want PENDING", got.Status)
	}

	_ = e.ProposeSolution(task.ID, "a", "v1")
	_ = e.ApproveSolution(task.ID, "a")
	_ = e.ApproveSolution(task.ID, "b")
	if err := e.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Status != models.TaskCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}

	// a completed task cannot be re-entered
	if err := e.ProposeSolution(task.ID, "a", "v2"); err != nil {
		t.Fatalf("propose on completed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Status != models.TaskCompleted || got.Solution.Version != 1 {
		t.Fatalf("completed task mutated: status=%s version=%d", got.Status, got.Solution.Version)
	}

	// a late approval must not demote it either
	if err := e.ApproveSolution(task.ID, "b"); err != nil {
		t.Fatalf("approve on completed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Status != models.TaskCompleted {
		t.Fatalf("status after late approval = %s, want COMPLETED", got.Status)
	}
}

func TestApprovalRequiresAssignment(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b", "c"}, "", "")
	_ = e.ProposeSolution(task.ID, "a", "v1")

	// approvals from outside the assigned set never count
	for _, p := range []string{"x", "y", "z"} {
		if err := e.ApproveSolution(task.ID, p); err != nil {
			t.Fatalf("approve %s: %v", p, err)
		}
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != models.TaskReview {
		t.Fatalf("status = %s, want REVIEW", got.Status)
	}
	if len(got.Solution.ApprovedBy) != 0 {
		t.Fatalf("approvals = %v, want none", got.Solution.ApprovedBy)
	}

	// assignees still reach quorum as before
	for _, p := range []string{"a", "b", "c"} {
		_ = e.ApproveSolution(task.ID, p)
	}
	got, _ = s.GetTask(task.ID)
	if got.Status != models.TaskApproved {
		t.Fatalf("status = %s, want APPROVED", got.Status)
	}
}

func TestPendingApprovals(t *testing.T) {
	s := newMemStore()
	e := NewEngine(s)
	task, _ := e.CreateTask("t", "d", []string{"a", "b", "c"}, "", "")

	_ = e.ProposeSolution(task.ID, "a", "v1")
	if got := e.PendingApprovals(task.ID); got != 3 {
		t.Fatalf("PendingApprovals = %d, want 3", got)
	}
	_ = e.ApproveSolution(task.ID, "a")
	if got := e.PendingApprovals(task.ID); got != 2 {
		t.Fatalf("PendingApprovals = %d, want 2", got)
	}
}
