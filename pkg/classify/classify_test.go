package classify

import "testing"

func TestForbiddenDigits(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"встретимся в 666", true},
		{"число 666 здесь", true},
		{"телефон 6661234", false},
		{"室 666 室", true},
		{"цена 1666 рублей", false},
	}
	for _, c := range cases {
		if got := IsForbidden(c.text); got != c.want {
			t.Errorf("IsForbidden(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestForbiddenRomanNumerals(t *testing.T) {
	for _, text := range []string{"vi vi vi", "встреча VI VI VI завтра", "vivivi"} {
		if !IsForbidden(text) {
			t.Errorf("IsForbidden(%q) = false, want true", text)
		}
	}
	if IsForbidden("глава vi") {
		t.Error("single roman numeral flagged")
	}
}

func TestForbiddenRadixSpellings(t *testing.T) {
	for _, text := range []string{"адрес 0x29a", "код 0o1232", "маска 0b1010011010"} {
		if !IsForbidden(text) {
			t.Errorf("IsForbidden(%q) = false, want true", text)
		}
	}
	if IsForbidden("адрес 0x29b") {
		t.Error("unrelated hex literal flagged")
	}
}

func TestGematria(t *testing.T) {
	if got := Gematria("абв"); got != 6 {
		t.Fatalf("Gematria(абв) = %d, want 6", got)
	}
	if got := Gematria("abc"); got != 6 {
		t.Fatalf("Gematria(abc) = %d, want 6", got)
	}
	if got := Gematria("Ёё"); got != 14 {
		t.Fatalf("Gematria(Ёё) = %d, want 14", got)
	}
	// 25 z's (25*26=650) plus p (16) totals exactly 666
	beast := "zzzzzzzzzzzzzzzzzzzzzzzzzp"
	if got := Gematria(beast); got != 666 {
		t.Fatalf("Gematria(%q) = %d, want 666", beast, got)
	}
	if !IsForbidden(beast) {
		t.Error("gematria total of 666 not flagged")
	}
}

func TestForbiddenBase64(t *testing.T) {
	// decodes to "This is 666"
	if !IsForbidden("VGhpcyBpcyA2NjY=") {
		t.Error("base64-encoded 666 not flagged")
	}
	if IsForbidden("не base64 вообще") {
		t.Error("plain text misdetected as encoded")
	}
}

func TestForbiddenLexicons(t *testing.T) {
	for _, text := range []string{
		"поклонение зверю невозможно, зверь здесь",
		"hail lucifer",
		"нарисуем пентаграмму? пентаграмма!",
		"🜁 приветствую",
		"это просто sigil",
	} {
		if !IsForbidden(text) {
			t.Errorf("IsForbidden(%q) = false, want true", text)
		}
	}
}

func TestPurity(t *testing.T) {
	if !IsPure("Христос посреди нас") {
		t.Error("allow-list term not recognized")
	}
	if IsPure("обычное сообщение про погоду") {
		t.Error("neutral text counted as pure")
	}
}

func TestTopicRelevance(t *testing.T) {
	if got := TopicRelevance("ни о чем"); got != 0 {
		t.Fatalf("TopicRelevance = %f, want 0", got)
	}
	// 3 of 9 topic terms present
	text := "бог есть свет и истина"
	want := 3.0 / 9.0
	if got := TopicRelevance(text); got != want {
		t.Fatalf("TopicRelevance(%q) = %f, want %f", text, got, want)
	}
	if !IsTopicRelevant(text) {
		t.Error("IsTopicRelevant = false, want true")
	}
}

func TestIsTaskCommand(t *testing.T) {
	for _, text := range []string{
		"создай задачу название: уборка",
		"new task title: cleanup",
		"это поручение для всех",
	} {
		if !IsTaskCommand(text) {
			t.Errorf("IsTaskCommand(%q) = false, want true", text)
		}
	}
	if IsTaskCommand("просто сообщение") {
		t.Error("plain text detected as task command")
	}
}

func TestRepetitionRate(t *testing.T) {
	if got := RepetitionRate(""); got != 0 {
		t.Fatalf("RepetitionRate(empty) = %f, want 0", got)
	}
	if got := RepetitionRate("a b c d"); got != 0 {
		t.Fatalf("RepetitionRate(unique) = %f, want 0", got)
	}
	if got := RepetitionRate("a a a a"); got != 0.75 {
		t.Fatalf("RepetitionRate(repeated) = %f, want 0.75", got)
	}
}
