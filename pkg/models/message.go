package models

// Author identifies who produced a message.
type Author string

const (
	AuthorUser   Author = "user"
	AuthorAgent  Author = "agent"
	AuthorSystem Author = "system"
)

// Message is a single chat message collected from a participant source.
// Once admitted the only mutation is replacing Text with its sealed form
// before persistence; Sealed records that the stored text is ciphertext.
type Message struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Author Author `json:"author"`
	Text   string `json:"text"`
	// TS is the collection timestamp (ns).
	TS     int64 `json:"ts"`
	Sealed bool  `json:"sealed,omitempty"`
}
