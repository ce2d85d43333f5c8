// Package nlp implements the two optional pass-through refiners named in
// SPEC_FULL.md §4.L: EmotionInferencer (rule+lexicon emotion labeling) and
// SpeakerResolver (NLP-backed improvement of "unknown" speaker
// attributions). Grounded on original_source/audiobooker/nlp/{emotion.py,
// speaker_resolver.py,booknlp_adapter.py}.
package nlp

import (
	"regexp"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// EmotionMode controls whether and how EmotionInferencer runs.
type EmotionMode string

const (
	EmotionOff  EmotionMode = "off"
	EmotionRule EmotionMode = "rule"
	EmotionAuto EmotionMode = "auto"
)

// EmotionResult is the outcome of one inference attempt.
type EmotionResult struct {
	Label      string
	Confidence float64
	Source     string // "verb" | "lexicon" | "punctuation" | "explicit" | "none"
}

type lexiconEntry struct {
	pattern    *regexp.Regexp
	confidence float64
}

// emotionLexicon is the small, curated, high-precision lexicon ported
// verbatim from the original's _EMOTION_LEXICON.
var emotionLexicon = map[string][]lexiconEntry{
	"angry": {
		{regexp.MustCompile(`(?i)\b(?:furious|enraged|livid|seething|infuriated)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(?:angry|mad|outraged|irate|incensed)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(?:annoyed|irritated|frustrated)\b`), 0.7},
	},
	"sad": {
		{regexp.MustCompile(`(?i)\b(?:sobbing|weeping|grieving|mourning|heartbroken)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(?:crying|tears|sorrowful|miserable|devastated)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(?:sad|unhappy|gloomy|melancholy)\b`), 0.75},
	},
	"happy": {
		{regexp.MustCompile(`(?i)\b(?:ecstatic|overjoyed|elated|jubilant|thrilled)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(?:delighted|joyful|excited|gleeful|beaming)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(?:happy|pleased|cheerful|glad|smiling)\b`), 0.75},
	},
	"fearful": {
		{regexp.MustCompile(`(?i)\b(?:terrified|petrified|horrified|panic)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(?:frightened|scared|afraid|alarmed|trembling)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(?:nervous|anxious|worried|uneasy)\b`), 0.7},
	},
	"whisper": {
		{regexp.MustCompile(`(?i)\b(?:whispered|hissed|murmured|breathed)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(?:softly|quietly|hushed|under\s+(?:his|her|their)\s+breath)\b`), 0.8},
	},
	"excited": {
		{regexp.MustCompile(`(?i)\b(?:can't\s+wait|incredible|amazing|fantastic|wonderful)\b`), 0.8},
		{regexp.MustCompile(`(?i)\b(?:eager|enthusiastic|pumped|exhilarated)\b`), 0.85},
	},
}

var (
	multiExclaim = regexp.MustCompile(`!{2,}`)
	ellipsis     = regexp.MustCompile(`\.\.\.|\x{2026}`)
)

func punctuationEmotion(text string) *EmotionResult {
	if multiExclaim.MatchString(text) {
		return &EmotionResult{Label: "excited", Confidence: 0.6, Source: "punctuation"}
	}
	words := strings.Fields(text)
	capsWords := 0
	for _, w := range words {
		if len(w) > 1 && w == strings.ToUpper(w) && strings.ToUpper(w) != strings.ToLower(w) {
			capsWords++
		}
	}
	if capsWords >= 4 {
		return &EmotionResult{Label: "angry", Confidence: 0.6, Source: "punctuation"}
	}
	if ellipsis.MatchString(text) {
		return &EmotionResult{Label: "sad", Confidence: 0.4, Source: "punctuation"}
	}
	return nil
}

// EmotionInferencer applies conservative rule+lexicon emotion labeling.
// Mode off is a no-op; rule/auto both run the same local inference (the
// "auto" distinction belongs to SpeakerResolver, which has an actual
// external backend to fall back from — EmotionInferencer has none).
type EmotionInferencer struct {
	Mode      EmotionMode
	Threshold float64
	Profile   *language.Profile
}

// NewEmotionInferencer validates mode and returns an inferencer.
func NewEmotionInferencer(mode EmotionMode, threshold float64, profile *language.Profile) (*EmotionInferencer, error) {
	switch mode {
	case EmotionOff, EmotionRule, EmotionAuto:
	default:
		return nil, &InvalidModeError{Field: "emotion_mode", Value: string(mode)}
	}
	return &EmotionInferencer{Mode: mode, Threshold: threshold, Profile: profile}, nil
}

// Infer returns the inferred emotion for one utterance. existingEmotion,
// if non-empty, is preserved verbatim at full confidence.
func (e *EmotionInferencer) Infer(utteranceText, context, existingEmotion string) EmotionResult {
	if e.Mode == EmotionOff {
		return EmotionResult{Label: "neutral", Source: "none"}
	}
	if existingEmotion != "" {
		return EmotionResult{Label: existingEmotion, Confidence: 1.0, Source: "explicit"}
	}

	combined := strings.TrimSpace(context + " " + utteranceText)

	verbResult := e.checkVerbHints(combined)
	if verbResult != nil && verbResult.Confidence >= e.Threshold {
		return *verbResult
	}

	lexResult := e.checkLexicon(combined)
	if lexResult != nil && lexResult.Confidence >= e.Threshold {
		return *lexResult
	}

	punctResult := punctuationEmotion(utteranceText)
	if punctResult != nil && punctResult.Confidence >= e.Threshold {
		return *punctResult
	}

	best := firstNonNil(verbResult, lexResult, punctResult)
	if best != nil && best.Confidence > 0 {
		return EmotionResult{Label: "neutral", Confidence: best.Confidence, Source: best.Source}
	}
	return EmotionResult{Label: "neutral", Source: "none"}
}

func firstNonNil(candidates ...*EmotionResult) *EmotionResult {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func (e *EmotionInferencer) checkVerbHints(text string) *EmotionResult {
	pattern := e.Profile.EmotionVerbPattern()
	if pattern == nil {
		return nil
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	verb := strings.ToLower(m[1])
	emotion, ok := e.Profile.EmotionHints[verb]
	if !ok {
		return nil
	}
	return &EmotionResult{Label: emotion, Confidence: 0.85, Source: "verb"}
}

func (e *EmotionInferencer) checkLexicon(text string) *EmotionResult {
	var best *EmotionResult
	for emotion, entries := range emotionLexicon {
		for _, entry := range entries {
			if entry.pattern.MatchString(text) {
				if best == nil || entry.confidence > best.Confidence {
					best = &EmotionResult{Label: emotion, Confidence: entry.confidence, Source: "lexicon"}
				}
			}
		}
	}
	return best
}

// ApplyToUtterances runs inference over utterances lacking an emotion,
// in place, using chapterText as shared context. Returns the count of
// utterances that received a label.
func (e *EmotionInferencer) ApplyToUtterances(utterances []types.Utterance, chapterText string) int {
	applied := 0
	for i := range utterances {
		if utterances[i].Emotion != "" {
			continue
		}
		result := e.Infer(utterances[i].Text, chapterText, "")
		if result.Label != "neutral" && result.Confidence >= e.Threshold {
			utterances[i].Emotion = result.Label
			applied++
		}
	}
	return applied
}

// InvalidModeError signals an unrecognized mode string for either
// EmotionInferencer or SpeakerResolver.
type InvalidModeError struct {
	Field, Value string
}

func (e *InvalidModeError) Error() string {
	return "invalid " + e.Field + ": " + e.Value + " (must be off|rule|auto, or on|off|auto for speaker resolution)"
}
