package collect

import (
	"fmt"
	"testing"

	"curatord/pkg/models"
)

func TestQueueOfferAndBatch(t *testing.T) {
	q := NewQueue(8, 4)
	for i := 0; i < 3; i++ {
		if !q.Offer(models.Message{ID: fmt.Sprintf("m%d", i), Text: "x"}) {
			t.Fatalf("Offer %d rejected", i)
		}
	}
	batch := q.NextBatch()
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
	if batch[0].TS == 0 {
		t.Fatal("Offer did not stamp a timestamp")
	}
	if got := q.NextBatch(); len(got) != 0 {
		t.Fatalf("second batch len = %d, want 0", len(got))
	}
}

func TestQueueBatchSizeBound(t *testing.T) {
	q := NewQueue(16, 4)
	for i := 0; i < 10; i++ {
		q.Offer(models.Message{ID: fmt.Sprintf("m%d", i), Text: "x"})
	}
	if got := len(q.NextBatch()); got != 4 {
		t.Fatalf("batch len = %d, want 4", got)
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2, 4)
	q.Offer(models.Message{ID: "a", Text: "x"})
	q.Offer(models.Message{ID: "b", Text: "x"})
	if q.Offer(models.Message{ID: "c", Text: "x"}) {
		t.Fatal("Offer accepted past capacity")
	}
	if q.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", q.Dropped())
	}
}

func TestParseBatch(t *testing.T) {
	payload := []byte(`[
		{"id":"m1","source":"agent-1","author":"AI","text":"привет","ts":42},
		{"author":"user","text":"ответ"},
		{"author":"user","text":""}
	]`)
	msgs := ParseBatch(payload)
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2 (empty text skipped)", len(msgs))
	}
	if msgs[0].Author != models.AuthorAgent {
		t.Fatalf("author = %s, want agent", msgs[0].Author)
	}
	if msgs[0].TS != 42 || msgs[0].ID != "m1" || msgs[0].Source != "agent-1" {
		t.Fatalf("first message = %+v", msgs[0])
	}
	if msgs[1].ID == "" || msgs[1].TS == 0 {
		t.Fatal("missing id/ts not defaulted")
	}
}

func TestParseBatchRejectsNonArray(t *testing.T) {
	if got := ParseBatch([]byte(`{"text":"x"}`)); got != nil {
		t.Fatalf("object payload returned %v", got)
	}
	if got := ParseBatch([]byte(`not json`)); got != nil {
		t.Fatalf("garbage payload returned %v", got)
	}
	if got := ParseBatch([]byte(`[]`)); got == nil || len(got) != 0 {
		t.Fatalf("empty array returned %v", got)
	}
}

func TestParseBatchUnknownAuthor(t *testing.T) {
	msgs := ParseBatch([]byte(`[{"author":"somebody","text":"x"}]`))
	if len(msgs) != 1 || msgs[0].Author != models.AuthorUser {
		t.Fatalf("unknown author mapped to %v", msgs)
	}
}
