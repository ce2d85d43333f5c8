package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/internal/synth"
)

const sampleBook = `Chapter 1: The Beginning

"Hello there," said Alice. It was a quiet morning in the village.

Chapter 2: The Middle

"We must leave now," said Alice. The narration continued on.
`

func TestFromStringCastsNarratorAndSplitsChapters(t *testing.T) {
	doc, err := FromString(sampleBook, "My Book", "Jane Author", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(doc.Chapters))
	}
	if _, ok := doc.Casting.Characters["narrator"]; !ok {
		t.Fatal("expected narrator to be auto-cast")
	}
	if doc.Casting.Characters["narrator"].VoiceID != "af_heart" {
		t.Fatalf("expected default narrator voice af_heart, got %q", doc.Casting.Characters["narrator"].VoiceID)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc, err := FromString(sampleBook, "My Book", "Jane Author", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if _, err := Cast(doc, "Alice", "af_bella", "warm", "the protagonist"); err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if err := Compile(doc, nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	path := filepath.Join(dir, "book.audiobooker")
	savedPath, err := Save(doc, path)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if savedPath != path {
		t.Fatalf("expected saved path %s, got %s", path, savedPath)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Title != doc.Title {
		t.Fatalf("expected title %q, got %q", doc.Title, loaded.Title)
	}
	if len(loaded.Chapters) != len(doc.Chapters) {
		t.Fatalf("expected %d chapters, got %d", len(doc.Chapters), len(loaded.Chapters))
	}
	if loaded.Chapters[0].Utterances == nil {
		t.Fatal("expected compiled utterances to survive the round trip")
	}
	if _, ok := loaded.Casting.Characters["alice"]; !ok {
		t.Fatal("expected Alice's casting to survive the round trip")
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newer.audiobooker")
	content := `{"schema_version": 99, "title": "Future Book", "chapters": []}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a project with a newer schema version")
	}
}

func TestLoadMissingFileIsBadInput(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.audiobooker")); err == nil {
		t.Fatal("expected an error loading a nonexistent project file")
	}
}

func TestGetUncastSpeakersReflectsDetectedButUncastNames(t *testing.T) {
	doc, err := FromString(sampleBook, "My Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if err := Compile(doc, nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	uncast, err := GetUncastSpeakers(doc)
	if err != nil {
		t.Fatalf("GetUncastSpeakers: %v", err)
	}
	found := false
	for _, s := range uncast {
		if s == "alice" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected alice among uncast speakers, got %v", uncast)
	}

	if _, err := Cast(doc, "Alice", "af_bella", "", ""); err != nil {
		t.Fatalf("Cast: %v", err)
	}
	uncastAfter, err := GetUncastSpeakers(doc)
	if err != nil {
		t.Fatalf("GetUncastSpeakers: %v", err)
	}
	for _, s := range uncastAfter {
		if s == "alice" {
			t.Fatal("expected alice to no longer be uncast after casting")
		}
	}
}

func TestRenderCompilesUncompiledChaptersThenAssembles(t *testing.T) {
	dir := t.TempDir()
	doc, err := FromString(sampleBook, "My Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	doc.ProjectPath = filepath.Join(dir, "book.audiobooker")
	if _, err := Cast(doc, "Alice", "af_bella", "", ""); err != nil {
		t.Fatalf("Cast: %v", err)
	}

	out := filepath.Join(dir, "book.m4b")
	summary, err := Render(context.Background(), doc, out, render.Options{Resume: true}, synth.NewStubSynthesizer(), synth.ConcatAssembler{}, nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if summary.Rendered != len(doc.Chapters) {
		t.Fatalf("expected all %d chapters rendered, got %d", len(doc.Chapters), summary.Rendered)
	}
	if summary.OutputPath != out {
		t.Fatalf("expected output path %s, got %s", out, summary.OutputPath)
	}
	for i := range doc.Chapters {
		if !doc.Chapters[i].IsCompiled() {
			t.Fatalf("chapter %d should have been auto-compiled", i)
		}
	}

	info, err := GetInfo(doc)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if !info.Rendered {
		t.Fatal("expected rendered=true while chapter audio exists")
	}

	// Deleting the cached audio must flip rendered back to false even
	// though audio_path is still set on every chapter.
	if err := os.RemoveAll(filepath.Join(dir, ".audiobooker")); err != nil {
		t.Fatalf("remove cache: %v", err)
	}
	info2, err := GetInfo(doc)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info2.Rendered {
		t.Fatal("expected rendered=false after the cached audio was deleted")
	}
}

func TestExportAndImportReviewRoundTrip(t *testing.T) {
	doc, err := FromString(sampleBook, "My Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if _, err := Cast(doc, "Alice", "af_bella", "", ""); err != nil {
		t.Fatalf("Cast: %v", err)
	}

	exported, err := ExportForReview(doc)
	if err != nil {
		t.Fatalf("ExportForReview: %v", err)
	}
	if exported == "" {
		t.Fatal("expected non-empty review export")
	}

	stats := ImportReviewed(doc, exported)
	if stats.ChaptersUpdated != len(doc.Chapters) {
		t.Fatalf("expected %d chapters updated, got %d", len(doc.Chapters), stats.ChaptersUpdated)
	}
}

func TestGetInfoReflectsState(t *testing.T) {
	doc, err := FromString(sampleBook, "My Book", "", "en")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}

	info, err := GetInfo(doc)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Compiled {
		t.Fatal("expected compiled=false before compilation")
	}
	if info.Chapters != len(doc.Chapters) {
		t.Fatalf("expected chapters=%d, got %d", len(doc.Chapters), info.Chapters)
	}

	if err := Compile(doc, nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	info2, err := GetInfo(doc)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if !info2.Compiled {
		t.Fatal("expected compiled=true after compilation")
	}
}
