// Package types holds the plain data records shared across the
// compilation, caching, and review subsystems. Types carry json tags for
// the on-disk project schema; behavior lives in the internal packages
// that operate on these values.
package types

import (
	"os"
	"time"
)

// UtteranceKind distinguishes narration from dialogue at the on-disk
// boundary; the core pipeline treats it as an opaque tag.
type UtteranceKind string

const (
	KindNarration UtteranceKind = "narration"
	KindDialogue  UtteranceKind = "dialogue"
)

// Utterance is the atomic synthesis unit produced by the chapter compiler.
type Utterance struct {
	Speaker      string        `json:"speaker"`
	Text         string        `json:"text"`
	Kind         UtteranceKind `json:"type"`
	Emotion      string        `json:"emotion,omitempty"`
	ChapterIndex int           `json:"chapter_index"`
	LineIndex    int           `json:"line_index"`
}

// Chapter is a titled section of the source with its compiled script.
type Chapter struct {
	Index           int         `json:"index"`
	Title           string      `json:"title"`
	RawText         string      `json:"raw_text"`
	Utterances      []Utterance `json:"utterances"`
	SourceFile      string      `json:"source_file,omitempty"`
	AudioPath       string      `json:"audio_path,omitempty"`
	DurationSeconds float64     `json:"duration_seconds,omitempty"`
}

// IsCompiled reports whether the chapter has a non-empty utterance list.
func (c *Chapter) IsCompiled() bool {
	return len(c.Utterances) > 0
}

// IsRendered reports whether the chapter has an audio path set and the
// file is still present on disk, so a deleted or moved cache never
// reports a chapter as rendered.
func (c *Chapter) IsRendered() bool {
	if c.AudioPath == "" {
		return false
	}
	_, err := os.Stat(c.AudioPath)
	return err == nil
}

// Character is a casting-table entry: a named speaker and its voice.
type Character struct {
	Name           string `json:"name"`
	VoiceID        string `json:"voice_id"`
	DefaultEmotion string `json:"default_emotion,omitempty"`
	Description    string `json:"description,omitempty"`
	LineCount      int    `json:"line_count"`
}

// UnknownCharacterBehavior controls how the casting table resolves a
// speaker name it has never seen cast.
type UnknownCharacterBehavior string

const (
	UnknownNarrator UnknownCharacterBehavior = "narrator"
	UnknownSkip     UnknownCharacterBehavior = "skip"
	UnknownAsk      UnknownCharacterBehavior = "ask"
)

// CastingTable maps normalized speaker names to cast Characters.
type CastingTable struct {
	Characters               map[string]Character     `json:"characters"`
	DefaultNarrator          string                   `json:"default_narrator"`
	FallbackVoiceID          string                   `json:"fallback_voice_id"`
	UnknownCharacterBehavior UnknownCharacterBehavior `json:"unknown_character_behavior,omitempty"`
}

// ProjectConfig holds the audio-neutral and audio-affecting knobs that
// flow into compilation, caching, and rendering.
type ProjectConfig struct {
	ChapterPauseMs             int     `json:"chapter_pause_ms"`
	NarratorPauseMs            int     `json:"narrator_pause_ms"`
	DialoguePauseMs            int     `json:"dialogue_pause_ms"`
	SampleRate                 int     `json:"sample_rate"`
	OutputFormat               string  `json:"output_format"`
	FallbackVoiceID            string  `json:"fallback_voice_id"`
	ValidateVoicesOnRender     bool    `json:"validate_voices_on_render"`
	EstimatedWPM               int     `json:"estimated_wpm"`
	MinChapterWords            int     `json:"min_chapter_words"`
	KeepTitledShortChapters    bool    `json:"keep_titled_short_chapters"`
	LanguageCode               string  `json:"language_code"`
	BooknlpMode                string  `json:"booknlp_mode"`
	EmotionMode                string  `json:"emotion_mode"`
	EmotionConfidenceThreshold float64 `json:"emotion_confidence_threshold"`
}

// DefaultProjectConfig returns the defaults ported from
// original_source/audiobooker/models.py::ProjectConfig.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		ChapterPauseMs:             2000,
		NarratorPauseMs:            600,
		DialoguePauseMs:            400,
		SampleRate:                 24000,
		OutputFormat:               "m4b",
		FallbackVoiceID:            "af_heart",
		ValidateVoicesOnRender:     true,
		EstimatedWPM:               150,
		MinChapterWords:            50,
		KeepTitledShortChapters:    true,
		LanguageCode:               "en",
		BooknlpMode:                "auto",
		EmotionMode:                "rule",
		EmotionConfidenceThreshold: 0.75,
	}
}

// CurrentSchemaVersion is the highest project-file schema version this
// implementation writes and accepts.
const CurrentSchemaVersion = 1

// ProjectDocument is the aggregate root persisted as the project file.
type ProjectDocument struct {
	SchemaVersion int           `json:"schema_version"`
	Title         string        `json:"title"`
	Author        string        `json:"author,omitempty"`
	SourcePath    string        `json:"source_path,omitempty"`
	ProjectPath   string        `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	ModifiedAt    time.Time     `json:"modified_at"`
	OutputPath    string        `json:"output_path,omitempty"`
	Chapters      []Chapter     `json:"chapters"`
	Casting       CastingTable  `json:"casting"`
	Config        ProjectConfig `json:"config"`
}

// TotalWords sums word counts across every chapter's raw text.
func (p *ProjectDocument) TotalWords() int {
	total := 0
	for _, c := range p.Chapters {
		total += len(splitWords(c.RawText))
	}
	return total
}

// EstimatedDurationMinutes estimates narration time from total word count
// and the configured reading speed.
func (p *ProjectDocument) EstimatedDurationMinutes() float64 {
	wpm := p.Config.EstimatedWPM
	if wpm <= 0 {
		wpm = DefaultProjectConfig().EstimatedWPM
	}
	return float64(p.TotalWords()) / float64(wpm)
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
