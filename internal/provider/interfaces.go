// Package provider holds the pluggable LLM and TTS backend clients the
// NLP refiners and the synthesizer build on: capability interfaces, an
// OpenAI-compatible implementation of each, offline stubs, and a
// config-driven registry that constructs them.
package provider

import (
	"context"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// LLMProvider is the language-model capability the speaker resolver
// consults: given a stretch of chapter prose, attribute each quoted
// line of dialogue to a speaker.
type LLMProvider interface {
	Name() string

	// Segment analyzes chapter prose and returns the dialogue segments
	// it could attribute, reusing KnownSpeakers identifiers wherever
	// they fit.
	Segment(ctx context.Context, req SegmentRequest) (*SegmentResponse, error)

	Close() error
}

// SegmentRequest carries the prose to attribute plus the context that
// sharpens attribution: surrounding paragraphs and the speakers the
// casting table already knows about.
type SegmentRequest struct {
	Text          string
	ContextBefore []string
	ContextAfter  []string
	Language      string
	KnownSpeakers []string
}

// SegmentResponse holds the attributed segments in source order.
type SegmentResponse struct {
	Segments []Segment
}

// Segment is one attributed run of text: who speaks it, in what
// language, and an optional free-form voice/tone description.
type Segment struct {
	Text             string
	Person           string
	Language         string
	VoiceDescription string
}

// TTSProvider is the text-to-speech capability a synthesizer delegates
// per-utterance calls to, plus the voice-catalog listing the voice
// registry refreshes from.
type TTSProvider interface {
	Name() string

	// Synthesize converts one utterance of text to audio bytes in the
	// requested voice.
	Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error)

	// ListVoices enumerates the backend's voice catalog.
	ListVoices(ctx context.Context) ([]types.Voice, error)

	Close() error
}

// TTSRequest is one utterance to synthesize. VoiceDescription, when
// set, carries the utterance's emotion label as delivery guidance for
// backends that accept it.
type TTSRequest struct {
	Text             string
	VoiceID          string
	Language         string
	VoiceDescription string
}

// TTSResponse is the synthesized audio for one utterance.
type TTSResponse struct {
	AudioData []byte
	Format    string
}
