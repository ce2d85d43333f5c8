package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/internal/storage"
	"github.com/unalkalkan/audiobooker/internal/synth"
)

func TestSlugSanitizesTitle(t *testing.T) {
	cases := map[string]string{
		"My Great Book!":  "my-great-book",
		"  leading space": "leading-space",
		"":                 "untitled",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPushThenPullRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	doc, err := project.FromString("\"Hi,\" said Alice. A quiet scene.", "Archive Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	projectPath := filepath.Join(srcDir, "book.audiobooker")
	doc.ProjectPath = projectPath

	summary, err := render.Render(context.Background(), doc, filepath.Join(srcDir, "book.m4b"), render.Options{Resume: true}, synth.NewStubSynthesizer(), synth.ConcatAssembler{}, nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if summary.Rendered == 0 {
		t.Fatal("expected at least one rendered chapter before archiving")
	}
	if _, err := project.Save(doc, projectPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	storeDir := t.TempDir()
	adapter, err := storage.NewLocalAdapter(storeDir)
	if err != nil {
		t.Fatalf("NewLocalAdapter: %v", err)
	}

	pushSummary, err := Push(context.Background(), adapter, doc, projectPath)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if pushSummary.ManifestKey == "" {
		t.Fatal("expected a manifest to be pushed")
	}
	if len(pushSummary.ChapterWavKeys) == 0 {
		t.Fatal("expected at least one chapter WAV to be pushed")
	}

	destDir := t.TempDir()
	pullSummary, err := Pull(context.Background(), adapter, Slug(doc.Title), destDir)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if !pullSummary.ManifestPulled {
		t.Fatal("expected the manifest to be pulled")
	}
	if pullSummary.ChapterWavCount != len(pushSummary.ChapterWavKeys) {
		t.Fatalf("expected %d chapter WAVs pulled, got %d", len(pushSummary.ChapterWavKeys), pullSummary.ChapterWavCount)
	}

	if _, err := os.Stat(pullSummary.ProjectFilePath); err != nil {
		t.Fatalf("expected pulled project file to exist: %v", err)
	}
	pulledCacheRoot := cache.Root(destDir)
	if _, err := os.Stat(cache.ManifestPath(pulledCacheRoot)); err != nil {
		t.Fatalf("expected pulled manifest to exist: %v", err)
	}
}
