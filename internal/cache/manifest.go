// Package cache implements the persistent render cache: the manifest
// that records per-chapter WAV status across resumed render runs, and
// the on-disk layout under a project's .audiobooker/cache directory.
// Ported from original_source/audiobooker/renderer/cache_manifest.py.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// ManifestFilename is the fixed name of the render manifest within its
// manifests directory; a future incompatible schema bump would ship
// under a new filename rather than overwrite this one.
const ManifestFilename = "render_v1.json"

// New returns an empty manifest for the given book title.
func New(bookTitle string) *types.CacheManifest {
	return &types.CacheManifest{
		Version:   types.ManifestCurrentVersion,
		BookTitle: bookTitle,
		Chapters:  map[string]types.ChapterCacheEntry{},
	}
}

func entryKey(chapterIndex int) string {
	return strconv.Itoa(chapterIndex)
}

// GetEntry finds a chapter's cache entry, if any.
func GetEntry(m *types.CacheManifest, chapterIndex int) (types.ChapterCacheEntry, bool) {
	e, ok := m.Chapters[entryKey(chapterIndex)]
	return e, ok
}

// SetEntry inserts or replaces a chapter's cache entry.
func SetEntry(m *types.CacheManifest, entry types.ChapterCacheEntry) {
	if m.Chapters == nil {
		m.Chapters = map[string]types.ChapterCacheEntry{}
	}
	m.Chapters[entryKey(entry.ChapterIndex)] = entry
}

// IsValid reports whether entry still covers the given hashes and its
// WAV file is present on disk. A cache entry that predates a text,
// casting, or render-param change is stale even though the WAV file
// itself is untouched; a cache entry whose WAV was deleted out-of-band
// is invalid even with matching hashes.
func IsValid(entry types.ChapterCacheEntry, textHash, castingHash, renderParamsHash string) bool {
	if entry.Status != types.CacheStatusOK {
		return false
	}
	if entry.TextHash != textHash || entry.CastingHash != castingHash || entry.RenderParamsHash != renderParamsHash {
		return false
	}
	if _, err := os.Stat(entry.WavPath); err != nil {
		return false
	}
	return true
}

// OkChapters returns the entries with status "ok".
func OkChapters(m *types.CacheManifest) []types.ChapterCacheEntry {
	var out []types.ChapterCacheEntry
	for _, e := range m.Chapters {
		if e.Status == types.CacheStatusOK {
			out = append(out, e)
		}
	}
	return out
}

// FailedChapters returns the entries with status "failed".
func FailedChapters(m *types.CacheManifest) []types.ChapterCacheEntry {
	var out []types.ChapterCacheEntry
	for _, e := range m.Chapters {
		if e.Status == types.CacheStatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Root returns <projectDir>/.audiobooker/cache.
func Root(projectDir string) string {
	return filepath.Join(projectDir, ".audiobooker", "cache")
}

// ChaptersDir returns cacheRoot/chapters, where rendered chapter WAVs live.
func ChaptersDir(cacheRoot string) string {
	return filepath.Join(cacheRoot, "chapters")
}

// ManifestsDir returns cacheRoot/manifests, where the manifest JSON lives.
func ManifestsDir(cacheRoot string) string {
	return filepath.Join(cacheRoot, "manifests")
}

// ChapterWavPath returns the cache-local WAV path for a chapter index.
func ChapterWavPath(cacheRoot string, chapterIndex int) string {
	return filepath.Join(ChaptersDir(cacheRoot), fmt.Sprintf("chapter_%04d.wav", chapterIndex))
}

// ManifestPath returns the path of the manifest file under cacheRoot.
func ManifestPath(cacheRoot string) string {
	return filepath.Join(ManifestsDir(cacheRoot), ManifestFilename)
}

// Load reads the manifest at manifestPath. A missing file returns
// (nil, nil): there is simply no cache yet. A manifest whose version
// exceeds what this build understands, or that fails to parse, is
// treated as absent rather than fatal — the render starts cold rather
// than failing outright, matching the original implementation's
// tolerant resume behavior.
func Load(manifestPath string) (*types.CacheManifest, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var m types.CacheManifest
	if jsonErr := json.Unmarshal(data, &m); jsonErr != nil {
		return nil, nil
	}
	if m.Version > types.ManifestCurrentVersion {
		return nil, nil
	}
	if m.Chapters == nil {
		m.Chapters = map[string]types.ChapterCacheEntry{}
	}
	return &m, nil
}

// Save atomically writes the manifest: marshal, write to a .tmp
// sibling, then rename over the target. The explicit remove before
// rename keeps this safe on platforms where renaming over an existing
// file is an error rather than a replace.
func Save(m *types.CacheManifest, manifestPath string) error {
	m.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return &apperr.CacheCorrupt{Path: manifestPath, Underlying: err}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &apperr.CacheCorrupt{Path: manifestPath, Underlying: err}
	}

	tmpPath := manifestPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return &apperr.CacheCorrupt{Path: manifestPath, Underlying: err}
	}
	if _, statErr := os.Stat(manifestPath); statErr == nil {
		if rmErr := os.Remove(manifestPath); rmErr != nil {
			return &apperr.CacheCorrupt{Path: manifestPath, Underlying: rmErr}
		}
	}
	if err := os.Rename(tmpPath, manifestPath); err != nil {
		return &apperr.CacheCorrupt{Path: manifestPath, Underlying: err}
	}
	return nil
}
