package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/casting"
	"github.com/unalkalkan/audiobooker/internal/dialogue"
	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/internal/synth"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// countingSynth wraps a StubSynthesizer and counts invocations, optionally
// failing for a configured set of chapter indexes (recovered from the
// output path's "chapter_%04d" suffix).
type countingSynth struct {
	*synth.StubSynthesizer
	calls  int
	failOn map[int]bool
}

func (s *countingSynth) Synthesize(ctx context.Context, script string, voices map[string]string, outputPath string, progress synth.ProgressFunc) (synth.SynthesisResult, error) {
	s.calls++
	var idx int
	fmt.Sscanf(filepath.Base(outputPath), "chapter_%04d", &idx)
	if s.failOn[idx] {
		return synth.SynthesisResult{}, fmt.Errorf("synthesis exploded on chapter %d", idx)
	}
	return s.StubSynthesizer.Synthesize(ctx, script, voices, outputPath, progress)
}

func newTestProject(t *testing.T, dir string, nChapters int) *types.ProjectDocument {
	t.Helper()
	profile, err := language.Get("en")
	if err != nil {
		t.Fatal(err)
	}
	table := casting.New()
	casting.Cast(table, profile, "narrator", "af_heart", "calm", "")
	casting.Cast(table, profile, "Alice", "af_bella", "", "")

	doc := &types.ProjectDocument{
		Title:       "Test Book",
		Author:      "Test Author",
		ProjectPath: filepath.Join(dir, "book.audiobooker"),
		Casting:     *table,
		Config:      types.DefaultProjectConfig(),
	}
	for i := 0; i < nChapters; i++ {
		ch := types.Chapter{
			Index:   i,
			Title:   fmt.Sprintf("Chapter %d", i+1),
			RawText: fmt.Sprintf(`"Hello there," said Alice. Chapter %d narration text.`, i+1),
		}
		if err := dialogue.CompileChapter(&ch, &doc.Casting, profile, false); err != nil {
			t.Fatal(err)
		}
		doc.Chapters = append(doc.Chapters, ch)
	}
	return doc
}

func TestRenderIdempotentOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	doc := newTestProject(t, dir, 3)
	s := &countingSynth{StubSynthesizer: synth.NewStubSynthesizer(), failOn: map[int]bool{}}
	assembler := synth.ConcatAssembler{}
	out := filepath.Join(dir, "book.m4b")

	summary, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if summary.Rendered != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected first summary: %+v", summary)
	}
	firstCalls := s.calls

	summary2, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if summary2.SkippedCached != 3 || summary2.Rendered != 0 {
		t.Fatalf("expected all-cached second summary, got %+v", summary2)
	}
	if s.calls != firstCalls {
		t.Fatalf("expected zero additional synthesizer calls, got %d new calls", s.calls-firstCalls)
	}
	if summary2.OutputPath != out {
		t.Fatalf("expected same output path, got %s", summary2.OutputPath)
	}
}

func TestRenderCacheSpecificityInvalidatesOnlyEditedChapter(t *testing.T) {
	dir := t.TempDir()
	doc := newTestProject(t, dir, 3)
	s := &countingSynth{StubSynthesizer: synth.NewStubSynthesizer(), failOn: map[int]bool{}}
	assembler := synth.ConcatAssembler{}
	out := filepath.Join(dir, "book.m4b")

	if _, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil); err != nil {
		t.Fatalf("first render: %v", err)
	}
	firstCalls := s.calls

	profile, _ := language.Get("en")
	doc.Chapters[1].RawText = `"A different line," said Alice. Edited.`
	if err := dialogue.CompileChapter(&doc.Chapters[1], &doc.Casting, profile, false); err != nil {
		t.Fatal(err)
	}

	summary, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if summary.Rendered != 1 || summary.SkippedCached != 2 {
		t.Fatalf("expected exactly one re-render, got %+v", summary)
	}
	if s.calls != firstCalls+1 {
		t.Fatalf("expected exactly one new synthesizer call, got %d", s.calls-firstCalls)
	}
}

func TestRenderFromChapterSkipsWithoutTouchingState(t *testing.T) {
	dir := t.TempDir()
	doc := newTestProject(t, dir, 3)
	s := &countingSynth{StubSynthesizer: synth.NewStubSynthesizer(), failOn: map[int]bool{}}
	assembler := synth.ConcatAssembler{}
	out := filepath.Join(dir, "book.m4b")

	if _, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil); err != nil {
		t.Fatalf("first render: %v", err)
	}
	firstCalls := s.calls

	manifestPath := cache.ManifestPath(cache.Root(dir))
	before, err := cache.Load(manifestPath)
	if err != nil || before == nil {
		t.Fatalf("load manifest after first render: %v", err)
	}
	entryBefore, ok := cache.GetEntry(before, 0)
	if !ok {
		t.Fatal("expected a manifest entry for chapter 0")
	}

	from := 1
	var messages []string
	summary, err := Render(context.Background(), doc, out,
		Options{Resume: false, FromChapter: &from}, s, assembler, nil,
		func(current, total int, status string) {
			messages = append(messages, status)
		})
	if err != nil {
		t.Fatalf("from-chapter render: %v", err)
	}

	if summary.Rendered != 2 || summary.Failed != 0 {
		t.Fatalf("expected chapters 1-2 re-rendered, got %+v", summary)
	}
	if s.calls != firstCalls+2 {
		t.Fatalf("expected 2 synthesizer calls for chapters 1-2, got %d", s.calls-firstCalls)
	}

	if len(messages) < 3 {
		t.Fatalf("expected progress for every chapter, got %v", messages)
	}
	if messages[0] != "Skipped: Chapter 1" {
		t.Fatalf("expected a skip status for chapter 0, got %q", messages[0])
	}
	for _, msg := range messages[1:3] {
		if !strings.HasPrefix(msg, "Rendering: ") {
			t.Fatalf("expected rendering status for chapters 1-2, got %v", messages)
		}
	}

	after, err := cache.Load(manifestPath)
	if err != nil || after == nil {
		t.Fatalf("load manifest after from-chapter render: %v", err)
	}
	entryAfter, ok := cache.GetEntry(after, 0)
	if !ok {
		t.Fatal("chapter 0's manifest entry should survive a from-chapter render")
	}
	if entryAfter != entryBefore {
		t.Fatalf("chapter 0's entry must be untouched: before=%+v after=%+v", entryBefore, entryAfter)
	}
	if _, statErr := os.Stat(entryAfter.WavPath); statErr != nil {
		t.Fatalf("chapter 0 audio should remain on disk: %v", statErr)
	}
}

func TestRenderFailureContainmentAndResume(t *testing.T) {
	dir := t.TempDir()
	doc := newTestProject(t, dir, 3)
	s := &countingSynth{StubSynthesizer: synth.NewStubSynthesizer(), failOn: map[int]bool{2: true}}
	assembler := synth.ConcatAssembler{}
	out := filepath.Join(dir, "book.m4b")

	_, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil)
	if err == nil {
		t.Fatal("expected a RenderError on chapter 2 failure")
	}

	if _, statErr := os.Stat(doc.Chapters[0].AudioPath); statErr != nil {
		t.Fatalf("chapter 0 audio should exist: %v", statErr)
	}
	if _, statErr := os.Stat(doc.Chapters[1].AudioPath); statErr != nil {
		t.Fatalf("chapter 1 audio should exist: %v", statErr)
	}
	if doc.Chapters[2].AudioPath != "" {
		if _, statErr := os.Stat(doc.Chapters[2].AudioPath); statErr == nil {
			t.Fatal("chapter 2 should not have a committed audio file")
		}
	}

	s.failOn = map[int]bool{}
	summary, err := Render(context.Background(), doc, out, Options{Resume: true}, s, assembler, nil, nil)
	if err != nil {
		t.Fatalf("expected the retried render to succeed: %v", err)
	}
	if summary.Rendered != 1 || summary.SkippedCached != 2 {
		t.Fatalf("expected exactly one chapter re-rendered on retry, got %+v", summary)
	}
	if summary.OutputPath == "" {
		t.Fatal("expected an assembled output path after the retry")
	}
}
