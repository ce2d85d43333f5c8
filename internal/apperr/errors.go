// Package apperr defines the structured error kinds callers branch on,
// converting the source project's exception-based control flow (see
// SPEC_FULL.md §9) into result-typed Go errors.
package apperr

import (
	"fmt"
	"strings"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// BadInput covers missing files, unsupported formats/languages, and
// malformed project documents.
type BadInput struct {
	Message string
}

func (e *BadInput) Error() string { return "bad input: " + e.Message }

// SchemaTooNew is raised when a project file's schema_version
// exceeds what this implementation supports.
type SchemaTooNew struct {
	Found, Supported int
}

func (e *SchemaTooNew) Error() string {
	return fmt.Sprintf("schema version %d is newer than supported version %d", e.Found, e.Supported)
}

// VoiceNotFound is raised before any synthesis begins when one or more
// voice IDs referenced by the casting table are absent from the registry.
type VoiceNotFound struct {
	Missing        []string
	AvailableCount int
}

func (e *VoiceNotFound) Error() string {
	return fmt.Sprintf("voice(s) not found: %s (%d voices available)",
		strings.Join(e.Missing, ", "), e.AvailableCount)
}

// CompilationError signals an inconsistent language profile (no speech
// verbs and no fallback pattern); this should be rare.
type CompilationError struct {
	Message string
}

func (e *CompilationError) Error() string { return "compilation error: " + e.Message }

// SynthesizerFailure wraps an error from the synthesizer capability with
// enough context to locate the offending utterance.
type SynthesizerFailure struct {
	ChapterIndex   int
	UtteranceIndex int
	Speaker        string
	VoiceID        string
	TextPreview    string
	Underlying     error
}

func (e *SynthesizerFailure) Error() string {
	return fmt.Sprintf("synthesis failed on chapter %d utterance %d (speaker %q, voice %q): %v",
		e.ChapterIndex, e.UtteranceIndex, e.Speaker, e.VoiceID, e.Underlying)
}

func (e *SynthesizerFailure) Unwrap() error { return e.Underlying }

// AssemblyFailure carries the assembler's last stderr lines.
type AssemblyFailure struct {
	StderrTail string
	Underlying error
}

func (e *AssemblyFailure) Error() string {
	return fmt.Sprintf("assembly failed: %v\n%s", e.Underlying, e.StderrTail)
}

func (e *AssemblyFailure) Unwrap() error { return e.Underlying }

// CacheCorrupt signals the manifest could not be read; recovery is to
// treat the cache as empty.
type CacheCorrupt struct {
	Path       string
	Underlying error
}

func (e *CacheCorrupt) Error() string {
	return fmt.Sprintf("cache manifest at %s is unreadable: %v", e.Path, e.Underlying)
}

func (e *CacheCorrupt) Unwrap() error { return e.Underlying }

// RenderError is the aggregate error raised when a non-partial render
// fails; it carries the RenderSummary needed to print per-chapter status.
type RenderError struct {
	Summary types.RenderSummary
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %d/%d chapters failed", e.Summary.Failed, e.Summary.Total)
}
