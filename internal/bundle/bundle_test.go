package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/internal/synth"
)

func TestBuildIncludesManifestTOCAndRenderedChapters(t *testing.T) {
	dir := t.TempDir()
	doc, err := project.FromString("\"Hi,\" said Alice. A quiet scene.", "Bundle Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	doc.ProjectPath = filepath.Join(dir, "book.audiobooker")

	out := filepath.Join(dir, "book.m4b")
	if _, err := render.Render(context.Background(), doc, out, render.Options{Resume: true}, synth.NewStubSynthesizer(), synth.ConcatAssembler{}, nil, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	reader, err := Build(context.Background(), doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read zip bytes: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"manifest.json", "toc.json", "project.json"} {
		if !names[want] {
			t.Errorf("expected zip entry %q, got entries %v", want, names)
		}
	}

	sawChapterAudio := false
	for name := range names {
		if filepath.Ext(name) == ".wav" {
			sawChapterAudio = true
		}
	}
	if !sawChapterAudio {
		t.Error("expected at least one rendered chapter WAV in the bundle")
	}
}
