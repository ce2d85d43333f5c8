package nlp

import (
	"testing"

	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

func enProfile(t *testing.T) *language.Profile {
	t.Helper()
	profile, err := language.Get("en")
	if err != nil {
		t.Fatal(err)
	}
	return profile
}

func newInferencer(t *testing.T, mode EmotionMode, threshold float64) *EmotionInferencer {
	t.Helper()
	inf, err := NewEmotionInferencer(mode, threshold, enProfile(t))
	if err != nil {
		t.Fatal(err)
	}
	return inf
}

func TestNewEmotionInferencerRejectsBadMode(t *testing.T) {
	if _, err := NewEmotionInferencer("loud", 0.75, enProfile(t)); err == nil {
		t.Fatal("expected invalid-mode error")
	}
}

func TestInferOffModeIsNoOp(t *testing.T) {
	inf := newInferencer(t, EmotionOff, 0.75)
	result := inf.Infer("I am FURIOUS!!", "", "")
	if result.Label != "neutral" || result.Source != "none" {
		t.Fatalf("off mode must not infer: %+v", result)
	}
}

func TestInferPreservesExplicitEmotion(t *testing.T) {
	inf := newInferencer(t, EmotionRule, 0.75)
	result := inf.Infer("Fine.", "she sobbed miserably", "wistful")
	if result.Label != "wistful" || result.Source != "explicit" || result.Confidence != 1.0 {
		t.Fatalf("explicit emotion must be preserved verbatim: %+v", result)
	}
}

func TestInferVerbHint(t *testing.T) {
	inf := newInferencer(t, EmotionRule, 0.75)
	result := inf.Infer("Be quiet.", `"Be quiet." she whispered`, "")
	if result.Label != "whisper" || result.Source != "verb" {
		t.Fatalf("expected whisper via verb hint: %+v", result)
	}
}

func TestInferLexicon(t *testing.T) {
	inf := newInferencer(t, EmotionRule, 0.75)
	result := inf.Infer("Leave me alone.", "He was furious at the interruption.", "")
	if result.Label != "angry" || result.Source != "lexicon" {
		t.Fatalf("expected angry via lexicon: %+v", result)
	}
	if result.Confidence < 0.75 {
		t.Fatalf("furious is a high-confidence cue: %+v", result)
	}
}

func TestInferPunctuationBelowDefaultThreshold(t *testing.T) {
	// Punctuation cues cap at 0.6 confidence, below the default 0.75
	// threshold, so they only apply when the threshold is lowered.
	high := newInferencer(t, EmotionRule, 0.75)
	if result := high.Infer("No way!!", "", ""); result.Label != "neutral" {
		t.Fatalf("punctuation cue must not clear the 0.75 threshold: %+v", result)
	}

	low := newInferencer(t, EmotionRule, 0.5)
	result := low.Infer("No way!!", "", "")
	if result.Label != "excited" || result.Source != "punctuation" {
		t.Fatalf("expected excited via punctuation at low threshold: %+v", result)
	}
}

func TestApplyToUtterances(t *testing.T) {
	inf := newInferencer(t, EmotionRule, 0.75)
	utterances := []types.Utterance{
		{Speaker: "Alice", Text: "I am absolutely furious with you.", Kind: types.KindDialogue},
		{Speaker: "Bob", Text: "Hello.", Kind: types.KindDialogue, Emotion: "cheerful"},
		{Speaker: "narrator", Text: "Nothing emotional here.", Kind: types.KindNarration},
	}

	applied := inf.ApplyToUtterances(utterances, "")

	if applied != 1 {
		t.Fatalf("expected exactly one label applied, got %d: %+v", applied, utterances)
	}
	if utterances[0].Emotion != "angry" {
		t.Fatalf("expected angry on first utterance: %+v", utterances[0])
	}
	if utterances[1].Emotion != "cheerful" {
		t.Fatalf("pre-existing emotion must never be overridden: %+v", utterances[1])
	}
	if utterances[2].Emotion != "" {
		t.Fatalf("neutral narration must stay unlabeled: %+v", utterances[2])
	}
}
