package models

// TaskStatus is the lifecycle state of a task. COMPLETED is terminal.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskApproved   TaskStatus = "APPROVED"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// TaskPriority orders tasks for display; it has no scheduling semantics.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// DiscussionEntry is one line of a task's ordered discussion log.
type DiscussionEntry struct {
	Participant string `json:"participant"`
	Message     string `json:"message"`
}

// Solution is a versioned proposal for a task. A new proposal always
// increments Version and clears ApprovedBy; approvals count only against
// the current version.
type Solution struct {
	Content    string   `json:"content"`
	Version    int      `json:"version"`
	ApprovedBy []string `json:"approved_by,omitempty"`
}

// Task is a multi-party work item advanced through a quorum-gated status
// state machine. Tasks are never deleted.
type Task struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssignedTo  []string          `json:"assigned_to"`
	Status      TaskStatus        `json:"status"`
	Priority    TaskPriority      `json:"priority"`
	CreatedTS   int64             `json:"created_ts"`
	Deadline    string            `json:"deadline,omitempty"`
	Discussion  []DiscussionEntry `json:"discussion,omitempty"`
	Solution    *Solution         `json:"solution,omitempty"`
}

// IsAssignee reports whether the participant is in the task's assigned
// set.
func (t *Task) IsAssignee(participant string) bool {
	for _, id := range t.AssignedTo {
		if id == participant {
			return true
		}
	}
	return false
}

// HasApproval reports whether the current solution already carries an
// approval from the given participant.
func (t *Task) HasApproval(participant string) bool {
	if t.Solution == nil {
		return false
	}
	for _, p := range t.Solution.ApprovedBy {
		if p == participant {
			return true
		}
	}
	return false
}
