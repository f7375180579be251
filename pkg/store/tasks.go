package store

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"curatord/pkg/models"
	"curatord/pkg/tasks"
)

// TaskStore adapts the pebble store to the tasks.TaskStore interface.
type TaskStore struct{}

var _ tasks.TaskStore = TaskStore{}

// GetTask returns the task for an id or tasks.ErrTaskNotFound.
func (TaskStore) GetTask(id string) (models.Task, error) {
	if db == nil {
		return models.Task{}, notOpened()
	}
	v, closer, err := db.Get([]byte("task:" + id))
	if err == pebble.ErrNotFound {
		return models.Task{}, tasks.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	defer closer.Close()
	var t models.Task
	if err := json.Unmarshal(v, &t); err != nil {
		return models.Task{}, fmt.Errorf("invalid task record: %w", err)
	}
	return t, nil
}

// PutTask upserts a task record.
func (TaskStore) PutTask(t models.Task) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return db.Set([]byte("task:"+t.ID), data, pebble.Sync)
}

// AllTasks returns every task record in key order.
func (TaskStore) AllTasks() ([]models.Task, error) {
	return listTasks(func(models.Task) bool { return true })
}

// TasksByStatus returns tasks currently in the given status.
func (TaskStore) TasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	return listTasks(func(t models.Task) bool { return t.Status == status })
}

func listTasks(keep func(models.Task) bool) ([]models.Task, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("task:"),
		UpperBound: []byte("task;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Task
	for iter.First(); iter.Valid(); iter.Next() {
		var t models.Task
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return nil, fmt.Errorf("invalid task record: %w", err)
		}
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, iter.Error()
}
