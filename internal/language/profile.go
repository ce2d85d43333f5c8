// Package language bundles the language-specific rules the compilation
// pipeline is parameterized over: quote pairs, speech verbs, emotion
// hints, the speaker blacklist, and chapter/scene-break patterns. Ported
// from original_source/audiobooker/language/{profile,en}.py.
package language

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// QuotePair is an (open, close) literal pair recognized by the dialogue
// segmenter.
type QuotePair struct {
	Open, Close string
}

// Profile is an immutable bundle of language-specific rules. Every field
// is set once at construction and never mutated; regex tables are
// memoized eagerly in New rather than lazily, since profiles are
// immutable for their whole lifetime (SPEC_FULL.md §9).
type Profile struct {
	Code string
	Name string

	DialogueQuotes []QuotePair
	SmartQuotes    []QuotePair
	SingleQuotes   []QuotePair

	SpeakerVerbs     map[string]struct{}
	EmotionHints     map[string]string
	SpeakerBlacklist map[string]struct{}
	ValidNamePattern string

	ChapterPatterns    []string
	SceneBreakPatterns []string

	validName        *regexp.Regexp
	saidPatterns     []*regexp.Regexp
	emotionVerbRegex *regexp.Regexp
	compiledChapters []*regexp.Regexp
	compiledScenes   []*regexp.Regexp
}

// New builds a Profile and eagerly compiles its regex tables.
func New(code, name string, dialogueQuotes, smartQuotes, singleQuotes []QuotePair,
	speakerVerbs []string, emotionHints map[string]string, blacklist []string,
	validNamePattern string, chapterPatterns, sceneBreakPatterns []string) *Profile {

	p := &Profile{
		Code:               code,
		Name:               name,
		DialogueQuotes:     dialogueQuotes,
		SmartQuotes:        smartQuotes,
		SingleQuotes:       singleQuotes,
		SpeakerVerbs:       toSet(speakerVerbs),
		EmotionHints:       cloneMap(emotionHints),
		SpeakerBlacklist:   toSet(blacklist),
		ValidNamePattern:   validNamePattern,
		ChapterPatterns:    append([]string(nil), chapterPatterns...),
		SceneBreakPatterns: append([]string(nil), sceneBreakPatterns...),
	}

	p.validName = regexp.MustCompile(p.ValidNamePattern)
	p.saidPatterns = p.buildSaidPatterns()
	p.emotionVerbRegex = p.buildEmotionVerbPattern()
	for _, pat := range p.ChapterPatterns {
		p.compiledChapters = append(p.compiledChapters, regexp.MustCompile(pat))
	}
	for _, pat := range p.SceneBreakPatterns {
		p.compiledScenes = append(p.compiledScenes, regexp.MustCompile(pat))
	}
	return p
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NormalizeName returns the canonical lookup key for a speaker name:
// casefold then strip surrounding whitespace.
func (p *Profile) NormalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// IsValidName reports whether s looks like a plausible speaker name.
func (p *Profile) IsValidName(s string) bool {
	return p.validName.MatchString(s)
}

// IsBlacklisted reports whether the casefolded word is a pronoun/adverb
// that must never be accepted as a speaker name.
func (p *Profile) IsBlacklisted(word string) bool {
	_, ok := p.SpeakerBlacklist[strings.ToLower(word)]
	return ok
}

// SaidPatterns returns the compiled verb-before-name and name-before-verb
// patterns built from the profile's speech-verb set.
func (p *Profile) SaidPatterns() []*regexp.Regexp {
	return p.saidPatterns
}

// EmotionVerbPattern returns the compiled pattern matching verbs that
// both appear in speaker_verbs and carry an emotion hint, or nil if the
// profile has none.
func (p *Profile) EmotionVerbPattern() *regexp.Regexp {
	return p.emotionVerbRegex
}

// CompiledChapterPatterns returns the chapter-heading patterns in profile
// order, compiled once at construction.
func (p *Profile) CompiledChapterPatterns() []*regexp.Regexp {
	return p.compiledChapters
}

// CompiledSceneBreakPatterns returns the scene-break patterns.
func (p *Profile) CompiledSceneBreakPatterns() []*regexp.Regexp {
	return p.compiledScenes
}

func (p *Profile) buildSaidPatterns() []*regexp.Regexp {
	if len(p.SpeakerVerbs) == 0 {
		return nil
	}
	verbs := make([]string, 0, len(p.SpeakerVerbs))
	for v := range p.SpeakerVerbs {
		verbs = append(verbs, regexp.QuoteMeta(v))
	}
	sort.Strings(verbs)
	alt := strings.Join(verbs, "|")

	// "said Alice" — verb then name. Only the verb alternation is made
	// case-insensitive; the name capture must stay [A-Z][a-z]+ so a
	// lowercase word is never mistaken for a candidate name.
	verbThenName := regexp.MustCompile(
		fmt.Sprintf(`(?:(?i:%s))\s+([A-Z][a-z]+)(?:\s|[,.!?]|$)`, alt),
	)
	// "Alice said" — name then verb.
	nameThenVerb := regexp.MustCompile(
		fmt.Sprintf(`([A-Z][a-z]+)\s+(?:(?i:%s))`, alt),
	)
	return []*regexp.Regexp{verbThenName, nameThenVerb}
}

func (p *Profile) buildEmotionVerbPattern() *regexp.Regexp {
	var keys []string
	for k := range p.EmotionHints {
		if _, ok := p.SpeakerVerbs[k]; ok {
			keys = append(keys, regexp.QuoteMeta(k))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\b`, strings.Join(keys, "|")))
}

// ErrUnsupportedLanguage is returned by Get for an unregistered code.
type ErrUnsupportedLanguage struct {
	Code      string
	Available []string
}

func (e *ErrUnsupportedLanguage) Error() string {
	avail := "none"
	if len(e.Available) > 0 {
		avail = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("unsupported language: %q (available: %s)", e.Code, avail)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Profile{}
)

// Register adds a profile to the process-wide registry, keyed by code.
func Register(p *Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Code] = p
}

// Get looks up a profile by ISO code, defaulting to English. English is
// registered as the bootstrap profile by this package's init.
func Get(code string) (*Profile, error) {
	if code == "" {
		code = "en"
	}
	registryMu.RLock()
	p, ok := registry[code]
	if ok {
		registryMu.RUnlock()
		return p, nil
	}
	available := make([]string, 0, len(registry))
	for c := range registry {
		available = append(available, c)
	}
	registryMu.RUnlock()
	sort.Strings(available)
	return nil, &ErrUnsupportedLanguage{Code: code, Available: available}
}

// Available returns the codes of every registered profile.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
