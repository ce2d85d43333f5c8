package synth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/apperr"
)

// StubSynthesizer writes a placeholder WAV-shaped file instead of calling a
// real TTS backend, grounded on internal/provider/stubs.go::StubTTSProvider.
// Duration is estimated from word count at a fixed reading rate so
// downstream chapter-metadata/assembly code has a plausible value to work
// with in tests and dry runs.
type StubSynthesizer struct {
	WordsPerMinute int
}

// NewStubSynthesizer returns a StubSynthesizer at the default reading rate.
func NewStubSynthesizer() *StubSynthesizer {
	return &StubSynthesizer{WordsPerMinute: 150}
}

func (s *StubSynthesizer) Synthesize(ctx context.Context, script string, voices map[string]string, outputPath string, progress ProgressFunc) (SynthesisResult, error) {
	lines := strings.Split(script, "\n")
	total := len(lines)
	wordCount := len(strings.Fields(script))
	wpm := s.WordsPerMinute
	if wpm <= 0 {
		wpm = 150
	}
	duration := float64(wordCount) / float64(wpm) * 60.0

	for i := range lines {
		if progress != nil {
			progress(i+1, total)
		}
	}

	content := fmt.Sprintf("STUB_AUDIO lines=%d words=%d voices=%d\n", total, wordCount, len(voices))
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return SynthesisResult{}, &apperr.SynthesizerFailure{Underlying: err}
	}

	return SynthesisResult{AudioPath: outputPath, DurationSeconds: duration}, nil
}

// ConcatAssembler assembles chapter files by plain byte concatenation with
// no pauses or embedded chapter markers. It requires no external tool and
// exists for offline testing and environments without ffmpeg, matching the
// "chapters_embedded=false" degraded path the real assembler can also
// return.
type ConcatAssembler struct{}

func (ConcatAssembler) Assemble(ctx context.Context, chapters []ChapterAudio, outputPath, title, author string, chapterPauseMs int) (AssemblyResult, error) {
	if len(chapters) == 0 {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: fmt.Errorf("no chapter audio to assemble")}
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
	}
	defer out.Close()

	for _, ch := range chapters {
		data, err := os.ReadFile(ch.Path)
		if err != nil {
			return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
		}
		if _, err := out.Write(data); err != nil {
			return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
		}
	}

	return AssemblyResult{
		OutputPath:       outputPath,
		ChaptersEmbedded: false,
		ChapterError:     "chapter markers require the ffmpeg assembler",
	}, nil
}
