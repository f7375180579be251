// Package command parses user chat messages into tagged command variants
// before dispatch. The grammar is a small declarative table of trigger
// phrases and labeled fields rather than ad hoc string splitting at the
// call sites.
package command

import (
	"strings"

	"curatord/pkg/classify"
)

// Command is a parsed user command. Exactly one concrete type applies.
type Command interface{ isCommand() }

// CreateTask asks the task engine to open a new task.
type CreateTask struct {
	Title       string
	Description string
}

// ShowDocument asks for the full text of an archived document.
type ShowDocument struct {
	Name string
}

// CreateDocument archives the given content under a title.
type CreateDocument struct {
	Title   string
	Content string
}

func (CreateTask) isCommand()     {}
func (ShowDocument) isCommand()   {}
func (CreateDocument) isCommand() {}

// field labels accepted in either language, matched case-insensitively.
var (
	titleLabels       = []string{"название:", "title:"}
	descriptionLabels = []string{"описание:", "description:"}
)

const (
	showDocPrefix   = "/document"
	createDocPrefix = "/create_document"
)

// Parse recognizes a command in text. Returns false when the text is not
// a command or its required fields are missing.
func Parse(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, createDocPrefix):
		title := extractField(trimmed, titleLabels)
		content := extractTail(trimmed, titleLabels)
		if title == "" || content == "" {
			return nil, false
		}
		return CreateDocument{Title: title, Content: content}, true
	case strings.HasPrefix(trimmed, showDocPrefix):
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			return nil, false
		}
		return ShowDocument{Name: fields[1]}, true
	case classify.IsTaskCommand(trimmed):
		title := extractField(trimmed, titleLabels)
		description := extractField(trimmed, descriptionLabels)
		if title == "" || description == "" {
			return nil, false
		}
		return CreateTask{Title: title, Description: description}, true
	}
	return nil, false
}

// extractField returns the first line following any of the given labels.
func extractField(text string, labels []string) string {
	lower := strings.ToLower(text)
	for _, label := range labels {
		idx := strings.LastIndex(lower, label)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(label):]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		if v := strings.TrimSpace(rest); v != "" {
			return v
		}
	}
	return ""
}

// extractTail returns everything past the first line break after any of
// the given labels; used for multi-line document content.
func extractTail(text string, labels []string) string {
	lower := strings.ToLower(text)
	for _, label := range labels {
		idx := strings.LastIndex(lower, label)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(label):]
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return ""
		}
		if v := strings.TrimSpace(rest[nl+1:]); v != "" {
			return v
		}
	}
	return ""
}
