package store

import "curatord/pkg/models"

// Messages adapts the package-level message accessors to the
// engine.MessageStore interface.
type Messages struct{}

func (Messages) AppendMessage(m models.Message) error { return AppendMessage(m) }

func (Messages) RecentMessages(limit int) ([]models.Message, error) {
	return RecentMessages(limit)
}
