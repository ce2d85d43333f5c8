package synth

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/apperr"
)

// RunResult is the outcome of one external command invocation, mirroring
// original_source/audiobooker/renderer/protocols.py::RunResult so the
// runner can be swapped out in tests without shelling out.
type RunResult struct {
	ReturnCode int
	Stdout     string
	Stderr     string
}

// CommandRunner executes an external command and captures its output.
// FFmpegAssembler depends on this instead of calling os/exec directly so
// tests can substitute a fake runner, matching the original's
// RealFFmpegRunner/FFmpegRunner protocol split.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) RunResult
}

// ExecRunner runs commands via os/exec. It is the production default.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) RunResult {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return RunResult{ReturnCode: -1, Stderr: name + " not found on PATH: " + err.Error()}
		}
	}
	return RunResult{
		ReturnCode: cmd.ProcessState.ExitCode(),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
}

// FFmpegAssembler assembles chapter audio into a single M4B/M4A output
// with embedded chapter markers, grounded on
// original_source/audiobooker/renderer/output.py::assemble_m4b. The Go
// DSP/waveform work itself stays out of scope (Non-goal); this package
// only shells out to ffmpeg/ffprobe the way the original does.
type FFmpegAssembler struct {
	Runner CommandRunner
}

// NewFFmpegAssembler returns an assembler backed by the real ffmpeg/ffprobe
// binaries on PATH.
func NewFFmpegAssembler() *FFmpegAssembler {
	return &FFmpegAssembler{Runner: ExecRunner{}}
}

// Available reports whether ffmpeg responds on PATH.
func (a *FFmpegAssembler) Available(ctx context.Context) bool {
	r := a.Runner.Run(ctx, "ffmpeg", "-version")
	return r.ReturnCode == 0
}

func (a *FFmpegAssembler) audioDuration(ctx context.Context, path string) float64 {
	r := a.Runner.Run(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	d, err := strconv.ParseFloat(strings.TrimSpace(r.Stdout), 64)
	if err != nil {
		return 0
	}
	return d
}

func chapterMetadata(chapters []ChapterAudio, title, author string, chapterPauseMs int, durationsOf func(string) float64) string {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	b.WriteString("title=" + title + "\n")
	if author != "" {
		b.WriteString("artist=" + author + "\n")
	}

	currentMs := 0
	for _, ch := range chapters {
		duration := ch.DurationSeconds
		if duration <= 0 {
			duration = durationsOf(ch.Path)
		}
		durationMs := int(duration * 1000)

		b.WriteString("[CHAPTER]\n")
		b.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\n", currentMs)
		fmt.Fprintf(&b, "END=%d\n", currentMs+durationMs)
		b.WriteString("title=" + ch.Title + "\n\n")

		currentMs += durationMs + chapterPauseMs
	}
	return b.String()
}

// Assemble concatenates chapter audio with silence between chapters,
// converts to AAC, and embeds chapter markers. If marker embedding fails,
// it falls back to returning the markerless AAC output, matching the
// original's degrade-gracefully behavior.
func (a *FFmpegAssembler) Assemble(ctx context.Context, chapters []ChapterAudio, outputPath, title, author string, chapterPauseMs int) (AssemblyResult, error) {
	if !a.Available(ctx) {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: fmt.Errorf("ffmpeg not available on PATH")}
	}
	if len(chapters) == 0 {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: fmt.Errorf("no chapter audio to assemble")}
	}

	tmpDir, err := os.MkdirTemp("", "audiobooker_assembly_")
	if err != nil {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
	}
	defer os.RemoveAll(tmpDir)

	concatListPath := filepath.Join(tmpDir, "concat.txt")
	var listBuf strings.Builder
	for i, ch := range chapters {
		abs, err := filepath.Abs(ch.Path)
		if err != nil {
			abs = ch.Path
		}
		fmt.Fprintf(&listBuf, "file '%s'\n", abs)
		if i < len(chapters)-1 && chapterPauseMs > 0 {
			silencePath := filepath.Join(tmpDir, fmt.Sprintf("silence_%d.wav", i))
			r := a.Runner.Run(ctx, "ffmpeg", "-y",
				"-f", "lavfi",
				"-i", fmt.Sprintf("anullsrc=r=24000:cl=mono:d=%.3f", float64(chapterPauseMs)/1000.0),
				silencePath,
			)
			if r.ReturnCode == 0 {
				fmt.Fprintf(&listBuf, "file '%s'\n", silencePath)
			}
		}
	}
	if err := os.WriteFile(concatListPath, []byte(listBuf.String()), 0o644); err != nil {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
	}

	concatWav := filepath.Join(tmpDir, "concat.wav")
	r := a.Runner.Run(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0",
		"-i", concatListPath,
		"-c", "copy",
		concatWav,
	)
	if r.ReturnCode != 0 {
		return AssemblyResult{}, &apperr.AssemblyFailure{StderrTail: tail(r.Stderr, 20), Underlying: fmt.Errorf("ffmpeg concat failed")}
	}

	metadataContent := chapterMetadata(chapters, title, author, chapterPauseMs, func(p string) float64 { return a.audioDuration(ctx, p) })
	metadataPath := filepath.Join(tmpDir, "metadata.txt")
	if err := os.WriteFile(metadataPath, []byte(metadataContent), 0o644); err != nil {
		return AssemblyResult{}, &apperr.AssemblyFailure{Underlying: err}
	}

	aacPath := filepath.Join(tmpDir, "audio.m4a")
	r = a.Runner.Run(ctx, "ffmpeg", "-y",
		"-i", concatWav,
		"-c:a", "aac", "-b:a", "128k", "-ar", "24000",
		aacPath,
	)
	if r.ReturnCode != 0 {
		return AssemblyResult{}, &apperr.AssemblyFailure{StderrTail: tail(r.Stderr, 20), Underlying: fmt.Errorf("ffmpeg AAC conversion failed")}
	}

	r = a.Runner.Run(ctx, "ffmpeg", "-y",
		"-i", aacPath,
		"-i", metadataPath,
		"-map", "0:a", "-map_metadata", "1",
		"-c", "copy",
		outputPath,
	)
	if r.ReturnCode != 0 {
		stderrTail := tail(r.Stderr, 20)
		if copyErr := copyFile(aacPath, outputPath); copyErr != nil {
			return AssemblyResult{}, &apperr.AssemblyFailure{StderrTail: stderrTail, Underlying: copyErr}
		}
		return AssemblyResult{
			OutputPath:       outputPath,
			ChaptersEmbedded: false,
			ChapterError:     stderrTail,
		}, nil
	}

	return AssemblyResult{OutputPath: outputPath, ChaptersEmbedded: true}, nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
