package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ClozeBlank replaces each deletion when a cloze front is shown
const ClozeBlank = "_____"

var clozeMarker = regexp.MustCompile(`\{\{(.+?)\}\}`)

// ClozePrompt renders every {{...}} deletion marker in text as a blank
func ClozePrompt(text string) string {
	return clozeMarker.ReplaceAllString(text, ClozeBlank)
}

// ClozeAnswers returns the hidden texts in marker order
func ClozeAnswers(text string) []string {
	matches := clozeMarker.FindAllStringSubmatch(text, -1)
	answers := make([]string, 0, len(matches))
	for _, m := range matches {
		answers = append(answers, m[1])
	}
	return answers
}

// IsCloze reports whether text contains at least one deletion marker
func IsCloze(text string) bool {
	return clozeMarker.MatchString(text)
}

// MakeCloze wraps the first case-insensitive whole-word occurrence of word in
// sentence with a deletion marker, keeping the sentence's original casing.
func MakeCloze(sentence, word string) (string, error) {
	sentence = strings.TrimSpace(sentence)
	word = strings.TrimSpace(word)
	if sentence == "" {
		return "", NewValidationError("sentence", "sentence cannot be empty")
	}
	if word == "" {
		return "", NewValidationError("word", "word cannot be empty")
	}

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	for offset := 0; offset < len(sentence); {
		loc := pattern.FindStringIndex(sentence[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		if wholeWord(sentence, start, end) {
			return sentence[:start] + "{{" + sentence[start:end] + "}}" + sentence[end:], nil
		}
		_, size := utf8.DecodeRuneInString(sentence[start:])
		offset = start + size
	}

	return "", NewValidationError("word", "word does not occur in sentence")
}

// wholeWord reports whether sentence[start:end] is not glued to letters or
// digits on either side. Edges of the match that are not word runes need no boundary.
func wholeWord(sentence string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(sentence[start:end])
	if isWordRune(first) && start > 0 {
		before, _ := utf8.DecodeLastRuneInString(sentence[:start])
		if isWordRune(before) {
			return false
		}
	}

	last, _ := utf8.DecodeLastRuneInString(sentence[start:end])
	if isWordRune(last) && end < len(sentence) {
		after, _ := utf8.DecodeRuneInString(sentence[end:])
		if isWordRune(after) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
