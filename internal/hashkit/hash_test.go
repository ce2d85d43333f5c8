package hashkit

import (
	"testing"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

func TestTextHashStableAndSensitive(t *testing.T) {
	a := &types.Chapter{Index: 0, Title: "One", RawText: "The cat sat."}
	b := &types.Chapter{Index: 7, Title: "Different", RawText: "The cat sat."}
	c := &types.Chapter{Index: 0, Title: "One", RawText: "The cat sat!"}

	if TextHash(a) != TextHash(b) {
		t.Fatalf("hash should ignore index/title, got %s != %s", TextHash(a), TextHash(b))
	}
	if TextHash(a) == TextHash(c) {
		t.Fatalf("hash should change when raw text changes")
	}
}

func TestCastingHashIgnoresDescriptionAndLineCount(t *testing.T) {
	base := &types.CastingTable{
		FallbackVoiceID: "af_heart",
		Characters: map[string]types.Character{
			"alice": {Name: "Alice", VoiceID: "af_bella", DefaultEmotion: "happy", Description: "the protagonist", LineCount: 3},
		},
	}
	changed := &types.CastingTable{
		FallbackVoiceID: "af_heart",
		Characters: map[string]types.Character{
			"alice": {Name: "Alice", VoiceID: "af_bella", DefaultEmotion: "happy", Description: "rewritten bio", LineCount: 99},
		},
	}

	h1, err := CastingHash(base)
	if err != nil {
		t.Fatalf("CastingHash: %v", err)
	}
	h2, err := CastingHash(changed)
	if err != nil {
		t.Fatalf("CastingHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("casting hash should ignore description/line_count, got %s != %s", h1, h2)
	}
}

func TestCastingHashChangesOnVoiceOrEmotion(t *testing.T) {
	base := &types.CastingTable{
		FallbackVoiceID: "af_heart",
		Characters: map[string]types.Character{
			"alice": {Name: "Alice", VoiceID: "af_bella", DefaultEmotion: "happy"},
		},
	}
	diffVoice := &types.CastingTable{
		FallbackVoiceID: "af_heart",
		Characters: map[string]types.Character{
			"alice": {Name: "Alice", VoiceID: "af_sarah", DefaultEmotion: "happy"},
		},
	}
	diffEmotion := &types.CastingTable{
		FallbackVoiceID: "af_heart",
		Characters: map[string]types.Character{
			"alice": {Name: "Alice", VoiceID: "af_bella", DefaultEmotion: "sad"},
		},
	}

	base_, _ := CastingHash(base)
	v, _ := CastingHash(diffVoice)
	e, _ := CastingHash(diffEmotion)
	if base_ == v {
		t.Fatalf("casting hash should change when voice changes")
	}
	if base_ == e {
		t.Fatalf("casting hash should change when emotion changes")
	}
}

func TestRenderParamsHashIgnoresAssemblyOnlyFields(t *testing.T) {
	a := &types.ProjectConfig{SampleRate: 24000, NarratorPauseMs: 600, DialoguePauseMs: 400, ChapterPauseMs: 2000, OutputFormat: "m4b"}
	b := &types.ProjectConfig{SampleRate: 24000, NarratorPauseMs: 600, DialoguePauseMs: 400, ChapterPauseMs: 5000, OutputFormat: "wav"}

	h1, err := RenderParamsHash(a)
	if err != nil {
		t.Fatalf("RenderParamsHash: %v", err)
	}
	h2, err := RenderParamsHash(b)
	if err != nil {
		t.Fatalf("RenderParamsHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("render params hash should ignore chapter_pause_ms/output_format, got %s != %s", h1, h2)
	}
}

func TestRenderParamsHashChangesOnSampleRate(t *testing.T) {
	a := &types.ProjectConfig{SampleRate: 24000, NarratorPauseMs: 600, DialoguePauseMs: 400}
	b := &types.ProjectConfig{SampleRate: 22050, NarratorPauseMs: 600, DialoguePauseMs: 400}

	h1, _ := RenderParamsHash(a)
	h2, _ := RenderParamsHash(b)
	if h1 == h2 {
		t.Fatalf("render params hash should change when sample_rate changes")
	}
}
