// Package project implements ProjectDocument lifecycle operations: the
// factories that turn a source document into a project, load/save of the
// .audiobooker file, casting, compilation, rendering, and the review
// round-trip, all as thin orchestration over internal/parser,
// internal/dialogue, internal/casting, internal/render, and
// internal/review. Grounded on
// original_source/audiobooker/project.py::AudiobookProject.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/casting"
	"github.com/unalkalkan/audiobooker/internal/dialogue"
	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/internal/parser"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/internal/review"
	"github.com/unalkalkan/audiobooker/internal/synth"
	"github.com/unalkalkan/audiobooker/internal/voice"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// ProgressFunc reports (current, total, label) during compile or render.
type ProgressFunc func(current, total int, label string)

// castNarrator applies the default narrator casting every factory
// applies to a freshly created project.
func castNarrator(doc *types.ProjectDocument, profile *language.Profile) {
	casting.Cast(&doc.Casting, profile, "narrator", "af_heart", "calm", "Default narrator")
}

func newDocument(title, author, sourcePath string, chapters []types.Chapter, config types.ProjectConfig) *types.ProjectDocument {
	now := time.Now().UTC()
	doc := &types.ProjectDocument{
		SchemaVersion: types.CurrentSchemaVersion,
		Title:         title,
		Author:        author,
		SourcePath:    sourcePath,
		CreatedAt:     now,
		ModifiedAt:    now,
		Chapters:      chapters,
		Casting:       *casting.New(),
		Config:        config,
	}
	doc.Casting.FallbackVoiceID = config.FallbackVoiceID
	return doc
}

// FromEpub reads an EPUB file and returns a new project with a narrator
// already cast. Grounded on AudiobookProject.from_epub.
func FromEpub(ctx context.Context, path string) (*types.ProjectDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.BadInput{Message: fmt.Sprintf("EPUB not found: %s", path)}
	}

	config := types.DefaultProjectConfig()
	reader := parser.NewEpubReader(config.MinChapterWords, config.KeepTitledShortChapters)

	chapters, metadata, err := reader.Read(ctx, data)
	if err != nil {
		return nil, err
	}

	title := metadata["title"]
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := newDocument(title, metadata["author"], path, chapters, config)
	profile, perr := language.Get(config.LanguageCode)
	if perr != nil {
		return nil, &apperr.BadInput{Message: perr.Error()}
	}
	castNarrator(doc, profile)
	return doc, nil
}

// FromText reads a plain-text or Markdown file and returns a new project
// with a narrator already cast. Grounded on AudiobookProject.from_text.
func FromText(ctx context.Context, path string) (*types.ProjectDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.BadInput{Message: fmt.Sprintf("text file not found: %s", path)}
	}

	config := types.DefaultProjectConfig()
	profile, perr := language.Get(config.LanguageCode)
	if perr != nil {
		return nil, &apperr.BadInput{Message: perr.Error()}
	}

	reader := parser.NewTextReader(profile)
	chapters, metadata, err := reader.Read(ctx, data)
	if err != nil {
		return nil, err
	}

	title := metadata["title"]
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := newDocument(title, metadata["author"], path, chapters, config)
	castNarrator(doc, profile)
	return doc, nil
}

// FromString builds a new project directly from a raw text body, with no
// backing source file. Grounded on AudiobookProject.from_string.
func FromString(text, title, author, lang string) (*types.ProjectDocument, error) {
	if lang == "" {
		lang = "en"
	}
	config := types.DefaultProjectConfig()
	config.LanguageCode = lang

	profile, err := language.Get(lang)
	if err != nil {
		return nil, &apperr.BadInput{Message: err.Error()}
	}

	reader := parser.NewTextReader(profile)
	chapters, metadata, err := reader.Read(context.Background(), []byte(text))
	if err != nil {
		return nil, err
	}

	if metaTitle := metadata["title"]; metaTitle != "" {
		title = metaTitle
	}
	if metaAuthor := metadata["author"]; metaAuthor != "" {
		author = metaAuthor
	}
	if title == "" {
		title = "Untitled"
	}

	doc := newDocument(title, author, "", chapters, config)
	castNarrator(doc, profile)
	return doc, nil
}

// ChapterInput is a pre-split (title, raw_text) pair, the input shape of
// FromChapters.
type ChapterInput struct {
	Title   string
	RawText string
}

// FromChapters builds a new project directly from pre-split chapters,
// skipping document parsing entirely. Grounded on
// AudiobookProject.from_chapters.
func FromChapters(chapters []ChapterInput, title, author, lang string) (*types.ProjectDocument, error) {
	if lang == "" {
		lang = "en"
	}
	if title == "" {
		title = "Untitled"
	}
	config := types.DefaultProjectConfig()
	config.LanguageCode = lang

	profile, err := language.Get(lang)
	if err != nil {
		return nil, &apperr.BadInput{Message: err.Error()}
	}

	chapterObjects := make([]types.Chapter, 0, len(chapters))
	for i, c := range chapters {
		chapterObjects = append(chapterObjects, types.Chapter{
			Index:   i,
			Title:   c.Title,
			RawText: c.RawText,
		})
	}

	doc := newDocument(title, author, "", chapterObjects, config)
	castNarrator(doc, profile)
	return doc, nil
}

// projectFile is the on-disk JSON shape of a .audiobooker project file.
// ProjectPath is deliberately excluded (json:"-" on ProjectDocument)
// since it is a property of where the file lives, not its content.
type projectFile struct {
	SchemaVersion int                 `json:"schema_version"`
	Title         string              `json:"title"`
	Author        string              `json:"author,omitempty"`
	SourcePath    string              `json:"source_path,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ModifiedAt    time.Time           `json:"modified_at"`
	OutputPath    string              `json:"output_path,omitempty"`
	Chapters      []types.Chapter     `json:"chapters"`
	Casting       types.CastingTable  `json:"casting"`
	Config        types.ProjectConfig `json:"config"`
}

// Load reads a project file from disk. A schema_version higher than this
// build understands is a hard error (apperr.SchemaTooNew); anything at or
// below the current version loads, with missing fields taking their zero
// value. Grounded on AudiobookProject.load.
func Load(path string) (*types.ProjectDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apperr.BadInput{Message: fmt.Sprintf("project file not found: %s", path)}
		}
		return nil, err
	}

	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, &apperr.BadInput{Message: fmt.Sprintf("project file %s is not valid JSON: %v", path, err)}
	}

	if pf.SchemaVersion == 0 {
		pf.SchemaVersion = 1
	}
	if pf.SchemaVersion > types.CurrentSchemaVersion {
		return nil, &apperr.SchemaTooNew{Found: pf.SchemaVersion, Supported: types.CurrentSchemaVersion}
	}

	doc := &types.ProjectDocument{
		SchemaVersion: pf.SchemaVersion,
		Title:         pf.Title,
		Author:        pf.Author,
		SourcePath:    pf.SourcePath,
		ProjectPath:   path,
		CreatedAt:     pf.CreatedAt,
		ModifiedAt:    pf.ModifiedAt,
		OutputPath:    pf.OutputPath,
		Chapters:      pf.Chapters,
		Casting:       pf.Casting,
		Config:        pf.Config,
	}
	if doc.Casting.Characters == nil {
		doc.Casting = *casting.New()
	}
	if doc.Config == (types.ProjectConfig{}) {
		doc.Config = types.DefaultProjectConfig()
	}
	return doc, nil
}

// Save writes doc to path as indented JSON, atomically (write to a .tmp
// sibling, then rename over the target). If path is empty, Save reuses
// doc.ProjectPath, falling back to the source path with its extension
// replaced by ".audiobooker", or to "<title>.audiobooker" in the current
// directory when there is no source path. Grounded on
// AudiobookProject.save.
func Save(doc *types.ProjectDocument, path string) (string, error) {
	if path == "" {
		path = doc.ProjectPath
	}
	if path == "" {
		if doc.SourcePath != "" {
			path = strings.TrimSuffix(doc.SourcePath, filepath.Ext(doc.SourcePath)) + ".audiobooker"
		} else {
			path = doc.Title + ".audiobooker"
		}
	}

	doc.ProjectPath = path
	doc.ModifiedAt = time.Now().UTC()
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = types.CurrentSchemaVersion
	}

	pf := projectFile{
		SchemaVersion: doc.SchemaVersion,
		Title:         doc.Title,
		Author:        doc.Author,
		SourcePath:    doc.SourcePath,
		CreatedAt:     doc.CreatedAt,
		ModifiedAt:    doc.ModifiedAt,
		OutputPath:    doc.OutputPath,
		Chapters:      doc.Chapters,
		Casting:       doc.Casting,
		Config:        doc.Config,
	}

	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal project document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && filepath.Dir(path) != "." {
		return "", fmt.Errorf("create project directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write project file: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if rmErr := os.Remove(path); rmErr != nil {
			return "", fmt.Errorf("replace existing project file: %w", rmErr)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename project file into place: %w", err)
	}
	return path, nil
}

// Cast assigns a voice to a character, delegating to internal/casting.
func Cast(doc *types.ProjectDocument, name, voiceID, emotion, description string) (types.Character, error) {
	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return types.Character{}, &apperr.BadInput{Message: err.Error()}
	}
	return casting.Cast(&doc.Casting, profile, name, voiceID, emotion, description), nil
}

// ListCharacters returns every cast character's display name, sorted.
func ListCharacters(doc *types.ProjectDocument) []string {
	return casting.ListCharacters(&doc.Casting)
}

// GetDetectedSpeakers returns the set of speaker names found across every
// compiled chapter's utterances. Grounded on
// AudiobookProject.get_detected_speakers.
func GetDetectedSpeakers(doc *types.ProjectDocument) []string {
	seen := map[string]bool{}
	for _, ch := range doc.Chapters {
		for _, u := range ch.Utterances {
			seen[u.Speaker] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GetUncastSpeakers returns the normalized keys of detected speakers that
// have no casting-table entry. Grounded on
// AudiobookProject.get_uncast_speakers.
func GetUncastSpeakers(doc *types.ProjectDocument) ([]string, error) {
	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return nil, &apperr.BadInput{Message: err.Error()}
	}

	var uncast []string
	seen := map[string]bool{}
	for _, speaker := range GetDetectedSpeakers(doc) {
		key := profile.NormalizeName(speaker)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := doc.Casting.Characters[key]; !ok {
			uncast = append(uncast, key)
		}
	}
	sort.Strings(uncast)
	return uncast, nil
}

// Compile runs dialogue compilation over every chapter in place,
// reporting progress as each chapter finishes. Grounded on
// AudiobookProject.compile.
func Compile(doc *types.ProjectDocument, progress ProgressFunc) error {
	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return &apperr.BadInput{Message: err.Error()}
	}

	for i := range doc.Chapters {
		if progress != nil {
			progress(i+1, len(doc.Chapters), doc.Chapters[i].Title)
		}
		if err := dialogue.CompileChapter(&doc.Chapters[i], &doc.Casting, profile, false); err != nil {
			return err
		}
	}
	doc.ModifiedAt = time.Now().UTC()
	return nil
}

// CompileChapter compiles a single chapter by index. Grounded on
// AudiobookProject.compile_chapter.
func CompileChapter(doc *types.ProjectDocument, chapterIndex int) error {
	if chapterIndex < 0 || chapterIndex >= len(doc.Chapters) {
		return &apperr.BadInput{Message: fmt.Sprintf("chapter index %d out of range", chapterIndex)}
	}
	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return &apperr.BadInput{Message: err.Error()}
	}
	return dialogue.CompileChapter(&doc.Chapters[chapterIndex], &doc.Casting, profile, false)
}

// Render compiles any uncompiled chapters, then drives the full
// render pipeline via internal/render. Grounded on
// AudiobookProject.render.
func Render(
	ctx context.Context,
	doc *types.ProjectDocument,
	outputPath string,
	opts render.Options,
	synthesizer synth.Synthesizer,
	assembler synth.Assembler,
	registry *voice.Registry,
	progress render.ProgressFunc,
) (types.RenderSummary, error) {
	if outputPath == "" {
		outputPath = doc.Title + "." + doc.Config.OutputFormat
	}

	uncompiled := false
	for i := range doc.Chapters {
		if !doc.Chapters[i].IsCompiled() {
			uncompiled = true
			break
		}
	}
	if uncompiled {
		if err := Compile(doc, nil); err != nil {
			return types.RenderSummary{}, err
		}
	}

	summary, err := render.Render(ctx, doc, outputPath, opts, synthesizer, assembler, registry, progress)
	doc.ModifiedAt = time.Now().UTC()
	return summary, err
}

// RenderChapter renders a single chapter directly to outputPath,
// bypassing the cache. Compiles the chapter first if needed. Grounded on
// AudiobookProject.render_chapter.
func RenderChapter(ctx context.Context, doc *types.ProjectDocument, chapterIndex int, outputPath string, synthesizer synth.Synthesizer) error {
	if chapterIndex < 0 || chapterIndex >= len(doc.Chapters) {
		return &apperr.BadInput{Message: fmt.Sprintf("chapter index %d out of range", chapterIndex)}
	}
	chapter := &doc.Chapters[chapterIndex]

	profile, err := language.Get(doc.Config.LanguageCode)
	if err != nil {
		return &apperr.BadInput{Message: err.Error()}
	}

	if !chapter.IsCompiled() {
		if err := CompileChapter(doc, chapterIndex); err != nil {
			return err
		}
	}

	if outputPath == "" {
		dir := OutputDir(doc)
		outputPath = filepath.Join(dir, fmt.Sprintf("chapter_%03d.wav", chapterIndex))
	}

	return render.RenderChapter(ctx, chapter, &doc.Casting, profile, synthesizer, outputPath)
}

// OutputDir returns the directory rendered per-chapter artifacts are
// written under when no explicit output path is given: "<stem>_audio"
// beside the source file, or "<title>_audio" with no source file.
// Grounded on AudiobookProject._ensure_output_dir.
func OutputDir(doc *types.ProjectDocument) string {
	if doc.SourcePath != "" {
		dir := filepath.Dir(doc.SourcePath)
		stem := strings.TrimSuffix(filepath.Base(doc.SourcePath), filepath.Ext(doc.SourcePath))
		return filepath.Join(dir, stem+"_audio")
	}
	return doc.Title + "_audio"
}

// ExportForReview compiles any uncompiled chapters, then renders the
// review round-trip text for doc. Grounded on
// AudiobookProject.export_for_review.
func ExportForReview(doc *types.ProjectDocument) (string, error) {
	for i := range doc.Chapters {
		if !doc.Chapters[i].IsCompiled() {
			if err := Compile(doc, nil); err != nil {
				return "", err
			}
			break
		}
	}
	return review.ExportForReview(doc), nil
}

// ImportReviewed applies a reviewed script's content to doc in place.
// Grounded on AudiobookProject.import_reviewed.
func ImportReviewed(doc *types.ProjectDocument, content string) review.ImportStats {
	stats := review.ImportReviewed(doc, content)
	doc.ModifiedAt = time.Now().UTC()
	return stats
}

// PreviewChapter renders a single chapter's review-format text. Grounded
// on AudiobookProject.preview_review_format.
func PreviewChapter(doc *types.ProjectDocument, chapterIndex int) (string, error) {
	if chapterIndex < 0 || chapterIndex >= len(doc.Chapters) {
		return "", &apperr.BadInput{Message: fmt.Sprintf("chapter index %d out of range", chapterIndex)}
	}
	return review.PreviewChapter(&doc.Chapters[chapterIndex]), nil
}

// Info summarizes a project's current state, matching the fields of
// AudiobookProject.info().
type Info struct {
	Title                    string   `json:"title"`
	Author                   string   `json:"author,omitempty"`
	Source                   string   `json:"source,omitempty"`
	Chapters                 int      `json:"chapters"`
	TotalWords               int      `json:"total_words"`
	EstimatedDurationMinutes float64  `json:"estimated_duration_minutes"`
	CharactersCast           int      `json:"characters_cast"`
	UncastSpeakers           []string `json:"uncast_speakers"`
	Compiled                 bool     `json:"compiled"`
	Rendered                 bool     `json:"rendered"`
	Output                   string   `json:"output,omitempty"`
}

// GetInfo builds the Info summary for doc.
func GetInfo(doc *types.ProjectDocument) (Info, error) {
	uncast, err := GetUncastSpeakers(doc)
	if err != nil {
		return Info{}, err
	}

	compiled := true
	rendered := true
	for i := range doc.Chapters {
		if !doc.Chapters[i].IsCompiled() {
			compiled = false
		}
		if !doc.Chapters[i].IsRendered() {
			rendered = false
		}
	}
	if len(doc.Chapters) == 0 {
		compiled = false
		rendered = false
	}

	return Info{
		Title:                    doc.Title,
		Author:                   doc.Author,
		Source:                   doc.SourcePath,
		Chapters:                 len(doc.Chapters),
		TotalWords:               doc.TotalWords(),
		EstimatedDurationMinutes: round1(doc.EstimatedDurationMinutes()),
		CharactersCast:           len(doc.Casting.Characters),
		UncastSpeakers:           uncast,
		Compiled:                 compiled,
		Rendered:                 rendered,
		Output:                   doc.OutputPath,
	}, nil
}

// TotalDurationSeconds sums the rendered duration of every chapter that
// has one, matching AudiobookProject.total_duration_seconds.
func TotalDurationSeconds(doc *types.ProjectDocument) float64 {
	total := 0.0
	for _, ch := range doc.Chapters {
		total += ch.DurationSeconds
	}
	return total
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
