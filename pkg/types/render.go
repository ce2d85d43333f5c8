package types

// FailedChapter records why a chapter did not make it into the manifest
// with status=ok during a render.
type FailedChapter struct {
	ChapterIndex int    `json:"chapter_index"`
	Title        string `json:"title"`
	Error        string `json:"error"`
}

// RenderSummary is returned by RenderOrchestrator.Render (success or as
// the payload of a RenderError).
type RenderSummary struct {
	Rendered      int             `json:"rendered"`
	SkippedCached int             `json:"skipped_cached"`
	Failed        int             `json:"failed"`
	Total         int             `json:"total"`
	CacheDir      string          `json:"cache_dir"`
	ManifestPath  string          `json:"manifest_path"`
	OutputPath    string          `json:"output_path,omitempty"`
	FailedChapters []FailedChapter `json:"failed_chapters,omitempty"`
}

// RenderFailureReport is the durable failure artifact persisted beside
// the manifest when a render fails or is partial (SPEC_FULL.md §2.3).
type RenderFailureReport struct {
	BookTitle string          `json:"book_title"`
	CreatedAt string          `json:"created_at"`
	Chapters  []FailedChapter `json:"chapters"`
}
