// Package dialogue implements the compilation pipeline: dialogue
// detection, speaker attribution, and the chapter compiler that
// combines them. Ported from
// original_source/audiobooker/casting/dialogue.py.
package dialogue

import (
	"regexp"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/language"
)

// Span is one alternating narration/dialogue run produced by Detect.
type Span struct {
	Content    string
	IsDialogue bool
	Start, End int
}

// quoteRegex compiles the "open literal, longest run of non-close
// characters, close literal" pattern for one quote pair, with "." made
// to match newlines so multi-paragraph quotes are still captured.
func quoteRegex(pair language.QuotePair) *regexp.Regexp {
	open := regexp.QuoteMeta(pair.Open)
	close_ := regexp.QuoteMeta(pair.Close)
	return regexp.MustCompile(`(?s)` + open + `([^` + close_ + `]+)` + close_)
}

type rawMatch struct {
	start, end int
	content    string
}

// Detect splits text into alternating narration/dialogue spans per
// SPEC_FULL.md §4.B. Overlap between quote pairs is resolved by
// discarding any candidate whose start falls inside a previously
// accepted span, iterating pairs in profile order (double, smart, then
// optionally single).
func Detect(text string, profile *language.Profile, includeSingleQuotes bool) []Span {
	var accepted []rawMatch

	acceptFrom := func(pairs []language.QuotePair) {
		for _, pair := range pairs {
			re := quoteRegex(pair)
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				start, end := loc[0], loc[1]
				contentStart, contentEnd := loc[2], loc[3]
				if overlaps(accepted, start) {
					continue
				}
				accepted = append(accepted, rawMatch{start: start, end: end, content: text[contentStart:contentEnd]})
			}
		}
	}

	acceptFrom(profile.DialogueQuotes)
	acceptFrom(profile.SmartQuotes)
	if includeSingleQuotes {
		acceptFrom(profile.SingleQuotes)
	}

	sortMatches(accepted)

	var spans []Span
	pos := 0
	for _, m := range accepted {
		if m.start > pos {
			narration := strings.TrimSpace(text[pos:m.start])
			if narration != "" {
				spans = append(spans, Span{Content: narration, IsDialogue: false, Start: pos, End: m.start})
			}
		}
		spans = append(spans, Span{Content: m.content, IsDialogue: true, Start: m.start, End: m.end})
		pos = m.end
	}
	if pos < len(text) {
		remaining := strings.TrimSpace(text[pos:])
		if remaining != "" {
			spans = append(spans, Span{Content: remaining, IsDialogue: false, Start: pos, End: len(text)})
		}
	}
	return spans
}

func overlaps(accepted []rawMatch, start int) bool {
	for _, a := range accepted {
		if a.start <= start && start < a.end {
			return true
		}
	}
	return false
}

func sortMatches(matches []rawMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].start > matches[j].start; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}
