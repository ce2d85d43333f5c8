// Package render implements the RenderOrchestrator (SPEC_FULL.md §4.I):
// the component that drives compile→synthesize→assemble with resume and
// partial-failure policy. Grounded on
// original_source/audiobooker/renderer/engine.py (render_project/
// render_chapter, the RENDER_START/RENDER_OK/RENDER_FAIL/RENDER_SKIP/
// RENDER_ASSEMBLE/RENDER_COMPLETE structured-log tags) and
// renderer/failure_report.py (the durable failure artifact).
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/casting"
	"github.com/unalkalkan/audiobooker/internal/dialogue"
	"github.com/unalkalkan/audiobooker/internal/hashkit"
	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/internal/synth"
	"github.com/unalkalkan/audiobooker/internal/voice"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// ProgressFunc reports chapter-level render progress as (current, total,
// status message), matching AudiobookProject.render's progress_callback.
type ProgressFunc func(current, total int, status string)

// Options controls a single Render invocation per SPEC_FULL.md §4.I.
type Options struct {
	// Resume honors valid cache entries; chapters whose entry is missing
	// or invalid are (re)synthesized. Defaults to true at the CLI layer.
	Resume bool
	// FromChapter, if non-nil, skips chapters with index < *FromChapter
	// without touching their state.
	FromChapter *int
	// AllowPartial tolerates per-chapter synthesis failures and still
	// assembles from whatever chapters succeeded.
	AllowPartial bool
}

// ProjectDir returns the directory a project's cache/manifest are rooted
// under: the directory containing the project file, or "." if the
// project has never been saved.
func ProjectDir(doc *types.ProjectDocument) string {
	if doc.ProjectPath == "" {
		return "."
	}
	return filepath.Dir(doc.ProjectPath)
}

// Render drives the full compile→synthesize→assemble pipeline for every
// chapter in doc, honoring resume/from-chapter/allow-partial policy, and
// returns a RenderSummary describing what happened. On a non-partial
// failure the returned error is an *apperr.RenderError carrying the same
// summary.
func Render(
	ctx context.Context,
	doc *types.ProjectDocument,
	outputPath string,
	opts Options,
	synthesizer synth.Synthesizer,
	assembler synth.Assembler,
	registry *voice.Registry,
	progress ProgressFunc,
) (types.RenderSummary, error) {
	cacheRoot := cache.Root(ProjectDir(doc))
	manifestPath := cache.ManifestPath(cacheRoot)

	summary := types.RenderSummary{
		Total:        len(doc.Chapters),
		CacheDir:     cacheRoot,
		ManifestPath: manifestPath,
	}

	if doc.Config.ValidateVoicesOnRender {
		if err := validateVoices(doc, registry); err != nil {
			return summary, err
		}
	}

	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return summary, &apperr.BadInput{Message: err.Error()}
	}

	for i := range doc.Chapters {
		if !doc.Chapters[i].IsCompiled() {
			if cerr := dialogue.CompileChapter(&doc.Chapters[i], &doc.Casting, profile, false); cerr != nil {
				return summary, cerr
			}
		}
	}

	manifest, err := cache.Load(manifestPath)
	if err != nil {
		return summary, &apperr.CacheCorrupt{Path: manifestPath, Underlying: err}
	}
	if manifest == nil {
		manifest = cache.New(doc.Title)
	}

	log.Printf("RENDER_START: project=%q chapters=%d output=%s", doc.Title, len(doc.Chapters), outputPath)

	castingHash, err := hashkit.CastingHash(&doc.Casting)
	if err != nil {
		return summary, fmt.Errorf("hash casting table: %w", err)
	}
	paramsHash, err := hashkit.RenderParamsHash(&doc.Config)
	if err != nil {
		return summary, fmt.Errorf("hash render params: %w", err)
	}

	chaptersDir := cache.ChaptersDir(cacheRoot)
	if err := os.MkdirAll(chaptersDir, 0o755); err != nil {
		return summary, fmt.Errorf("create cache chapters dir: %w", err)
	}

	partialFailure := false

	for i := range doc.Chapters {
		chapter := &doc.Chapters[i]

		if opts.FromChapter != nil && i < *opts.FromChapter {
			if progress != nil {
				progress(i+1, len(doc.Chapters), fmt.Sprintf("Skipped: %s", chapter.Title))
			}
			continue
		}

		if progress != nil {
			progress(i+1, len(doc.Chapters), fmt.Sprintf("Rendering: %s", chapter.Title))
		}

		textHash := hashkit.TextHash(chapter)
		wavPath := cache.ChapterWavPath(cacheRoot, chapter.Index)

		if opts.Resume {
			if entry, ok := cache.GetEntry(manifest, chapter.Index); ok && cache.IsValid(entry, textHash, castingHash, paramsHash) {
				chapter.AudioPath = entry.WavPath
				chapter.DurationSeconds = entry.DurationS
				summary.SkippedCached++
				log.Printf("RENDER_SKIP: chapter=%d title=%q (already rendered)", chapter.Index, chapter.Title)
				continue
			}
		}

		tmpPath := wavPath + ".tmp"
		_ = os.Remove(tmpPath)

		script := dialogue.UtterancesToScript(chapter.Utterances, profile)
		voices := casting.VoiceMapping(&doc.Casting)

		result, synthErr := synthesizer.Synthesize(ctx, script, voices, tmpPath, nil)
		if synthErr != nil {
			os.Remove(tmpPath)

			failErr := synthesisFailure(chapter, synthErr)
			errSummary := failErr.Error()

			cache.SetEntry(manifest, types.ChapterCacheEntry{
				ChapterIndex:     chapter.Index,
				TextHash:         textHash,
				CastingHash:      castingHash,
				RenderParamsHash: paramsHash,
				WavPath:          wavPath,
				Status:           types.CacheStatusFailed,
				ErrorSummary:     errSummary,
				CreatedAt:        time.Now().UTC().Format(time.RFC3339),
			})
			if serr := cache.Save(manifest, manifestPath); serr != nil {
				return summary, &apperr.CacheCorrupt{Path: manifestPath, Underlying: serr}
			}

			summary.Failed++
			summary.FailedChapters = append(summary.FailedChapters, types.FailedChapter{
				ChapterIndex: chapter.Index,
				Title:        chapter.Title,
				Error:        errSummary,
			})
			log.Printf("RENDER_FAIL: chapter=%d title=%q error=%v", chapter.Index, chapter.Title, synthErr)

			if !opts.AllowPartial {
				saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
				return summary, &apperr.RenderError{Summary: summary}
			}
			partialFailure = true
			continue
		}

		if err := os.Rename(tmpPath, wavPath); err != nil {
			return summary, fmt.Errorf("rename rendered chapter %d audio into place: %w", chapter.Index, err)
		}

		chapter.AudioPath = wavPath
		chapter.DurationSeconds = result.DurationSeconds

		cache.SetEntry(manifest, types.ChapterCacheEntry{
			ChapterIndex:     chapter.Index,
			TextHash:         textHash,
			CastingHash:      castingHash,
			RenderParamsHash: paramsHash,
			WavPath:          wavPath,
			DurationS:        result.DurationSeconds,
			Status:           types.CacheStatusOK,
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
		})
		if serr := cache.Save(manifest, manifestPath); serr != nil {
			return summary, &apperr.CacheCorrupt{Path: manifestPath, Underlying: serr}
		}

		summary.Rendered++
		log.Printf("RENDER_OK: chapter=%d title=%q duration=%.1fs", chapter.Index, chapter.Title, result.DurationSeconds)
	}

	if progress != nil {
		progress(len(doc.Chapters), len(doc.Chapters), "Assembling audiobook...")
	}

	var chapterAudio []synth.ChapterAudio
	for i := range doc.Chapters {
		ch := &doc.Chapters[i]
		if ch.AudioPath == "" {
			continue
		}
		if _, statErr := os.Stat(ch.AudioPath); statErr != nil {
			continue
		}
		chapterAudio = append(chapterAudio, synth.ChapterAudio{
			Path:            ch.AudioPath,
			Title:           ch.Title,
			DurationSeconds: ch.DurationSeconds,
		})
	}

	if len(chapterAudio) == 0 {
		saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
		return summary, &apperr.RenderError{Summary: summary}
	}

	if !opts.AllowPartial {
		from := 0
		if opts.FromChapter != nil {
			from = *opts.FromChapter
		}
		for i := from; i < len(doc.Chapters); i++ {
			ch := &doc.Chapters[i]
			if ch.AudioPath == "" {
				saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
				return summary, &apperr.RenderError{Summary: summary}
			}
			if _, statErr := os.Stat(ch.AudioPath); statErr != nil {
				saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
				return summary, &apperr.RenderError{Summary: summary}
			}
		}
	}

	log.Printf("RENDER_ASSEMBLE: chapters=%d", len(chapterAudio))

	assembly, err := assembler.Assemble(ctx, chapterAudio, outputPath, doc.Title, doc.Author, doc.Config.ChapterPauseMs)
	if err != nil {
		if partialFailure {
			saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
		}
		return summary, err
	}

	summary.OutputPath = assembly.OutputPath
	doc.OutputPath = assembly.OutputPath

	if !assembly.ChaptersEmbedded {
		log.Printf("RENDER_COMPLETE_NO_CHAPTERS: output=%s reason=%q", assembly.OutputPath, assembly.ChapterError)
	} else {
		log.Printf("RENDER_COMPLETE: output=%s", assembly.OutputPath)
	}

	if partialFailure {
		saveFailureReport(cacheRoot, manifestPath, doc.Title, summary)
	}

	return summary, nil
}

// RenderChapter renders a single chapter directly to outputPath, bypassing
// the cache manifest (matching AudiobookProject.render_chapter/
// engine.render_chapter). Used by the CLI's `render -c N` path and by
// ProjectDocument.RenderChapter.
func RenderChapter(ctx context.Context, chapter *types.Chapter, table *types.CastingTable, profile *language.Profile, synthesizer synth.Synthesizer, outputPath string) error {
	if len(chapter.Utterances) == 0 {
		return &apperr.BadInput{Message: fmt.Sprintf("chapter %d has no utterances; compile first", chapter.Index)}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create chapter output dir: %w", err)
	}

	script := dialogue.UtterancesToScript(chapter.Utterances, profile)
	voices := casting.VoiceMapping(table)

	result, err := synthesizer.Synthesize(ctx, script, voices, outputPath, nil)
	if err != nil {
		return synthesisFailure(chapter, err)
	}

	chapter.AudioPath = result.AudioPath
	chapter.DurationSeconds = result.DurationSeconds
	return nil
}

// validateVoices checks every voice referenced by the casting table, plus
// the configured fallback voice, against the registry before any
// synthesis begins (SPEC_FULL.md §4.I step 2).
func validateVoices(doc *types.ProjectDocument, registry *voice.Registry) error {
	if registry == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, c := range doc.Casting.Characters {
		if c.VoiceID == "" {
			continue
		}
		if _, ok := seen[c.VoiceID]; ok {
			continue
		}
		seen[c.VoiceID] = struct{}{}
		ids = append(ids, c.VoiceID)
	}
	if doc.Config.FallbackVoiceID != "" {
		if _, ok := seen[doc.Config.FallbackVoiceID]; !ok {
			ids = append(ids, doc.Config.FallbackVoiceID)
		}
	}

	missing := registry.Missing(ids)
	if len(missing) > 0 {
		return &apperr.VoiceNotFound{Missing: missing, AvailableCount: registry.Count()}
	}
	return nil
}

// synthesisFailure wraps a synthesizer error with the failing chapter's
// first utterance detail, matching the original's current_utterance_idx
// tracking (here simplified to the chapter's first utterance since the
// Synthesizer contract renders a whole chapter script per call rather
// than per utterance).
func synthesisFailure(chapter *types.Chapter, err error) *apperr.SynthesizerFailure {
	speaker, text := "", ""
	if len(chapter.Utterances) > 0 {
		speaker = chapter.Utterances[0].Speaker
		text = chapter.Utterances[0].Text
		if len(text) > 80 {
			text = text[:80]
		}
	}
	return &apperr.SynthesizerFailure{
		ChapterIndex:   chapter.Index,
		UtteranceIndex: 0,
		Speaker:        speaker,
		TextPreview:    text,
		Underlying:     err,
	}
}

// saveFailureReport persists the durable render_failures.json artifact
// beside the manifest on a partial or total render failure (SPEC_FULL.md
// §2.3, ported from renderer/failure_report.py::RenderFailureReport).
// Failure to write the report is logged, not propagated: the render's
// own error already describes what happened.
func saveFailureReport(cacheRoot, manifestPath, bookTitle string, summary types.RenderSummary) {
	if len(summary.FailedChapters) == 0 {
		return
	}
	report := types.RenderFailureReport{
		BookTitle: bookTitle,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Chapters:  summary.FailedChapters,
	}
	reportPath := filepath.Join(cacheRoot, "render_failures.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("RENDER_FAILURE_REPORT_ERROR: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
		log.Printf("RENDER_FAILURE_REPORT_ERROR: %v", err)
		return
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		log.Printf("RENDER_FAILURE_REPORT_ERROR: %v", err)
	}
}
