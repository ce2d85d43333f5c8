// Package archive implements the project archive push/pull feature
// (SPEC_FULL.md §2.2/§2.3): syncing a project's file plus its render
// cache (manifest and chapter WAVs) to and from a configured
// internal/storage.Adapter, for backup or hand-off between machines.
// Grounded on TwelveReader's internal/book/repository.go
// (Repository/StorageRepository path-layout idiom over a storage.Adapter)
// repointed at a ProjectDocument's own files instead of a Book's.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/internal/storage"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// remoteRoot returns the storage-key prefix a project syncs under:
// "projects/<slug>".
func remoteRoot(slug string) string {
	return path.Join("projects", slug)
}

// Slug turns a project title into a storage-key-safe path segment.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// PushSummary reports what Push uploaded.
type PushSummary struct {
	ProjectFileKey string
	ManifestKey    string
	ChapterWavKeys []string
}

// Push uploads a project's file, render manifest, and every cached
// chapter WAV it finds on disk to adapter under projects/<slug>/. Missing
// optional pieces (no manifest yet, chapters not yet rendered) are
// skipped rather than treated as errors.
func Push(ctx context.Context, adapter storage.Adapter, doc *types.ProjectDocument, projectFilePath string) (PushSummary, error) {
	slug := Slug(doc.Title)
	root := remoteRoot(slug)
	summary := PushSummary{}

	projectData, err := os.ReadFile(projectFilePath)
	if err != nil {
		return summary, fmt.Errorf("read project file for push: %w", err)
	}
	projectKey := path.Join(root, "project.audiobooker")
	if err := adapter.Put(ctx, projectKey, bytes.NewReader(projectData)); err != nil {
		return summary, fmt.Errorf("push project file: %w", err)
	}
	summary.ProjectFileKey = projectKey

	cacheRoot := cache.Root(render.ProjectDir(doc))
	manifestPath := cache.ManifestPath(cacheRoot)
	if manifestData, err := os.ReadFile(manifestPath); err == nil {
		manifestKey := path.Join(root, "cache", cache.ManifestFilename)
		if err := adapter.Put(ctx, manifestKey, bytes.NewReader(manifestData)); err != nil {
			return summary, fmt.Errorf("push render manifest: %w", err)
		}
		summary.ManifestKey = manifestKey
	} else if !os.IsNotExist(err) {
		return summary, fmt.Errorf("read render manifest for push: %w", err)
	}

	for i := range doc.Chapters {
		wavPath := cache.ChapterWavPath(cacheRoot, doc.Chapters[i].Index)
		data, err := os.ReadFile(wavPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return summary, fmt.Errorf("read chapter %d audio for push: %w", doc.Chapters[i].Index, err)
		}
		key := path.Join(root, "cache", "chapters", filepath.Base(wavPath))
		if err := adapter.Put(ctx, key, bytes.NewReader(data)); err != nil {
			return summary, fmt.Errorf("push chapter %d audio: %w", doc.Chapters[i].Index, err)
		}
		summary.ChapterWavKeys = append(summary.ChapterWavKeys, key)
	}

	return summary, nil
}

// PullSummary reports what Pull downloaded.
type PullSummary struct {
	ProjectFilePath string
	ManifestPulled  bool
	ChapterWavCount int
}

// Pull downloads a previously pushed project's file, render manifest, and
// cached chapter WAVs from adapter into localProjectDir, writing the
// project file at localProjectDir/project.audiobooker and the cache under
// the same .audiobooker/cache layout internal/cache expects locally.
func Pull(ctx context.Context, adapter storage.Adapter, slug, localProjectDir string) (PullSummary, error) {
	root := remoteRoot(slug)
	summary := PullSummary{}

	if err := os.MkdirAll(localProjectDir, 0o755); err != nil {
		return summary, fmt.Errorf("create local project directory: %w", err)
	}

	projectKey := path.Join(root, "project.audiobooker")
	if err := downloadTo(ctx, adapter, projectKey, filepath.Join(localProjectDir, "project.audiobooker")); err != nil {
		return summary, fmt.Errorf("pull project file: %w", err)
	}
	summary.ProjectFilePath = filepath.Join(localProjectDir, "project.audiobooker")

	cacheRoot := cache.Root(localProjectDir)
	manifestKey := path.Join(root, "cache", cache.ManifestFilename)
	if exists, err := adapter.Exists(ctx, manifestKey); err == nil && exists {
		if err := downloadTo(ctx, adapter, manifestKey, cache.ManifestPath(cacheRoot)); err != nil {
			return summary, fmt.Errorf("pull render manifest: %w", err)
		}
		summary.ManifestPulled = true
	}

	chapterPrefix := path.Join(root, "cache", "chapters") + "/"
	keys, err := adapter.List(ctx, chapterPrefix)
	if err != nil {
		return summary, fmt.Errorf("list remote chapter audio: %w", err)
	}
	if err := os.MkdirAll(cache.ChaptersDir(cacheRoot), 0o755); err != nil {
		return summary, fmt.Errorf("create local cache chapters directory: %w", err)
	}
	for _, key := range keys {
		dest := filepath.Join(cache.ChaptersDir(cacheRoot), filepath.Base(key))
		if err := downloadTo(ctx, adapter, key, dest); err != nil {
			return summary, fmt.Errorf("pull chapter audio %s: %w", key, err)
		}
		summary.ChapterWavCount++
	}

	return summary, nil
}

func downloadTo(ctx context.Context, adapter storage.Adapter, key, destPath string) error {
	reader, err := adapter.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}
