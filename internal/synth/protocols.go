// Package synth defines the Synthesizer and Assembler capability
// contracts named as external collaborators in SPEC_FULL.md §6, plus
// the concrete implementations the render orchestrator is wired to by
// default. Grounded on original_source/audiobooker/renderer/protocols.py
// (TTSEngine/FFmpegRunner protocols) and renderer/output.py/ffmpeg_runner.py
// (the real FFmpeg-backed assembly implementation).
package synth

import "context"

// ProgressFunc reports synthesis progress as (current, total) units;
// implementations may pass utterances, characters, or another granularity
// appropriate to the backend. A nil ProgressFunc means no reporting.
type ProgressFunc func(current, total int)

// SynthesisResult is what a Synthesizer returns for one chapter render.
type SynthesisResult struct {
	AudioPath       string
	DurationSeconds float64
	Warnings        []string
}

// Synthesizer renders a compiled chapter script to a single audio file.
// script is the "[Sn:speaker] (emotion) text" per-line format produced by
// dialogue.UtterancesToScript; voices maps each speaker key used in the
// script to a voice ID. Implementations own output_path's file format.
type Synthesizer interface {
	Synthesize(ctx context.Context, script string, voices map[string]string, outputPath string, progress ProgressFunc) (SynthesisResult, error)
}

// ChapterAudio is one entry in the ordered list an Assembler stitches
// together: a rendered chapter's audio path, display title, and duration.
type ChapterAudio struct {
	Path            string
	Title           string
	DurationSeconds float64
}

// AssemblyResult is what an Assembler returns for a whole-book assembly.
type AssemblyResult struct {
	OutputPath        string
	ChaptersEmbedded  bool
	ChapterError      string
}

// Assembler stitches an ordered list of chapter audio files into a single
// output with chapter markers, title, and author metadata where the
// underlying tool supports it.
type Assembler interface {
	Assemble(ctx context.Context, chapters []ChapterAudio, outputPath, title, author string, chapterPauseMs int) (AssemblyResult, error)
}
