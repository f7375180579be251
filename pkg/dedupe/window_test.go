package dedupe

import (
	"fmt"
	"testing"
)

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("Привет, брат!")
	b := Fingerprint("привет брат")
	if a != b {
		t.Fatalf("normalization-equivalent texts differ: %q vs %q", a, b)
	}
	if a == Fingerprint("совсем другое") {
		t.Fatal("distinct texts collided")
	}
}

func TestFingerprintChunks(t *testing.T) {
	// "abcde" sums to 97+98+99+100+101 = 495, "f" to 102
	if got := Fingerprint("abcdef"); got != "495-102" {
		t.Fatalf("Fingerprint(abcdef) = %q, want 495-102", got)
	}
	if got := Fingerprint(""); got != "" {
		t.Fatalf("Fingerprint(empty) = %q, want empty", got)
	}
}

func TestWindowRejectsDuplicates(t *testing.T) {
	w := NewWindow(3)
	if !w.CheckAndRecord("первое сообщение") {
		t.Fatal("first occurrence rejected")
	}
	if w.CheckAndRecord("первое сообщение") {
		t.Fatal("immediate duplicate accepted")
	}
	if w.CheckAndRecord("Первое сообщение!") {
		t.Fatal("normalization-equivalent duplicate accepted")
	}
	if w.Len() != 1 {
		t.Fatalf("Len = %d, want 1", w.Len())
	}
}

func TestWindowEviction(t *testing.T) {
	w := NewWindow(3) // capacity 6
	if !w.CheckAndRecord("оригинал") {
		t.Fatal("first occurrence rejected")
	}
	// six distinct messages push the original out
	for i := 0; i < 6; i++ {
		if !w.CheckAndRecord(fmt.Sprintf("сообщение номер %d", i)) {
			t.Fatalf("distinct message %d rejected", i)
		}
	}
	if w.Len() != 6 {
		t.Fatalf("Len = %d, want 6", w.Len())
	}
	if !w.CheckAndRecord("оригинал") {
		t.Fatal("evicted fingerprint still rejected")
	}
}
