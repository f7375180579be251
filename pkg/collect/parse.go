package collect

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"curatord/pkg/models"
)

// ParseBatch decodes a JSON array of raw messages as posted by capture
// clients. Parsing is tolerant: entries without text are skipped, unknown
// author strings map to "user", a missing timestamp gets the current
// time. Returns nil for payloads that are not a JSON array.
func ParseBatch(payload []byte) []models.Message {
	parsed := gjson.ParseBytes(payload)
	if !parsed.IsArray() {
		return nil
	}
	items := parsed.Array()
	out := make([]models.Message, 0, len(items))
	for _, item := range items {
		text := item.Get("text").String()
		if text == "" {
			continue
		}
		m := models.Message{
			ID:     item.Get("id").String(),
			Source: item.Get("source").String(),
			Author: parseAuthor(item.Get("author").String()),
			Text:   text,
			TS:     item.Get("ts").Int(),
		}
		if m.ID == "" {
			m.ID = genID()
		}
		if m.TS == 0 {
			m.TS = time.Now().UTC().UnixNano()
		}
		out = append(out, m)
	}
	return out
}

func parseAuthor(s string) models.Author {
	switch models.Author(s) {
	case models.AuthorAgent, models.AuthorSystem:
		return models.Author(s)
	}
	// capture clients historically used "AI" for agents
	if s == "AI" || s == "ai" || s == "assistant" {
		return models.AuthorAgent
	}
	return models.AuthorUser
}

func genID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("m%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
