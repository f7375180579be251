// Package classify contains the pure content-classification functions of
// the curation pipeline: forbidden-content detection, purity and topical
// relevance scoring, and task-command recognition. No function here has
// side effects or I/O.
package classify

import (
	"encoding/base64"
	"regexp"
	"strings"
)

var (
	wordSplitRe  = regexp.MustCompile(`\s+`)
	nonCharsetRe = regexp.MustCompile(`[^а-яa-z0-9\s]`)

	// Standalone 666 as a token, after normalization.
	beastTokenRe = regexp.MustCompile(`\b666\b`)
	// Threefold Roman-numeral spellings, spaced or run together.
	romanBeastRe = regexp.MustCompile(`\bvi\s*vi\s*vi\b|\bvi{1,3}vi{1,3}vi{1,3}\b`)
	// 666 in hexadecimal, octal and binary literals.
	radixBeastRe = regexp.MustCompile(`\b0x29a\b|\b0o1232\b|\b0b1010011010\b`)
)

// normalize lowercases text, replaces everything outside the working
// charset with spaces and collapses runs of whitespace.
func normalize(text string) string {
	s := strings.ToLower(text)
	s = nonCharsetRe.ReplaceAllString(s, " ")
	s = wordSplitRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsForbidden reports whether text must be rejected: a forbidden-term or
// occult-mark lexicon hit, the literal 666 in any supported spelling, a
// gematria total of exactly 666, or a base64 payload that decodes to text
// containing 666.
func IsForbidden(text string) bool {
	return containsBeastNumber(text) ||
		Gematria(text) == 666 ||
		containsEncodedBeast(text) ||
		containsLexiconTerm(text, forbiddenTerms) ||
		containsLexiconTerm(text, occultMarks)
}

func containsBeastNumber(text string) bool {
	n := normalize(text)
	return beastTokenRe.MatchString(n) ||
		romanBeastRe.MatchString(n) ||
		radixBeastRe.MatchString(n)
}

// Gematria maps every Cyrillic and Latin letter to its 1-based alphabet
// position (Ё scores 7) and returns the sum over the whole text.
func Gematria(text string) int {
	total := 0
	for _, r := range strings.ToUpper(text) {
		switch {
		case r >= 'А' && r <= 'Я':
			total += int(r-'А') + 1
		case r == 'Ё':
			total += 7
		case r >= 'A' && r <= 'Z':
			total += int(r-'A') + 1
		}
	}
	return total
}

// containsEncodedBeast interprets the whole text as base64 and looks for a
// standalone 666 token in the decoded form. Decode failures are swallowed
// and treated as "no match".
func containsEncodedBeast(text string) bool {
	s := strings.TrimSpace(text)
	dec, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		dec, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return false
		}
	}
	return beastTokenRe.MatchString(strings.ToLower(string(dec)))
}

func containsLexiconTerm(text string, lexicon []string) bool {
	n := strings.ToLower(text)
	for _, term := range lexicon {
		if strings.Contains(n, term) {
			return true
		}
	}
	return false
}

// IsPure reports whether text contains at least one allow-list term.
func IsPure(text string) bool {
	return containsLexiconTerm(text, pureTerms)
}

// TopicRelevance returns the fraction of topic keywords present in the
// lowercased text, in [0,1].
func TopicRelevance(text string) float64 {
	n := strings.ToLower(text)
	hits := 0
	for _, term := range topicTerms {
		if strings.Contains(n, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(topicTerms))
}

// IsTopicRelevant reports whether at least one topic keyword is present.
func IsTopicRelevant(text string) bool {
	return TopicRelevance(text) > 0
}

// ContentValue scores how much of the topical vocabulary a message
// carries; the pipeline compares it against a configured minimum.
func ContentValue(text string) float64 {
	return TopicRelevance(text)
}

// IsTaskCommand reports whether text contains any of the task command
// phrases.
func IsTaskCommand(text string) bool {
	return containsLexiconTerm(text, taskPhrases)
}

// RepetitionRate returns 1 - unique/total over whitespace-split words;
// a fully repetitive text scores close to 1.
func RepetitionRate(text string) float64 {
	words := wordSplitRe.Split(strings.TrimSpace(text), -1)
	var total int
	uniq := make(map[string]struct{})
	for _, w := range words {
		if w == "" {
			continue
		}
		total++
		uniq[w] = struct{}{}
	}
	if total == 0 {
		return 0
	}
	return 1 - float64(len(uniq))/float64(total)
}
