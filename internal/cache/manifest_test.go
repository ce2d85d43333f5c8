package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifestPath := ManifestPath(Root(dir))

	m := New("Test Book")
	SetEntry(m, types.ChapterCacheEntry{
		ChapterIndex:     0,
		TextHash:         "abc",
		CastingHash:      "def",
		RenderParamsHash: "ghi",
		WavPath:          filepath.Join(dir, "chapter_0000.wav"),
		Status:           types.CacheStatusOK,
	})

	if err := Save(m, manifestPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a manifest, got nil")
	}
	entry, ok := GetEntry(loaded, 0)
	if !ok {
		t.Fatal("expected chapter 0 entry to round-trip")
	}
	if entry.TextHash != "abc" {
		t.Fatalf("text hash did not round-trip: got %q", entry.TextHash)
	}
}

func TestLoadMissingReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(filepath.Join(dir, "nope.json"))
	if err != nil {
		t.Fatalf("expected no error for missing manifest, got %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil manifest for missing file, got %+v", m)
	}
}

func TestLoadCorruptReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected corrupt manifest to be tolerated, got error %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil manifest for corrupt file, got %+v", m)
	}
}

func TestLoadFutureVersionReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "future.json")
	future := `{"version": 999, "book_title": "x", "chapters": {}}`
	if err := os.WriteFile(path, []byte(future), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected future-versioned manifest to be tolerated, got error %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil manifest for future schema version, got %+v", m)
	}
}

func TestIsValidChecksHashesAndWavPresence(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "chapter_0000.wav")
	if err := os.WriteFile(wavPath, []byte("fake-audio"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	entry := types.ChapterCacheEntry{
		Status:           types.CacheStatusOK,
		TextHash:         "t",
		CastingHash:      "c",
		RenderParamsHash: "r",
		WavPath:          wavPath,
	}

	if !IsValid(entry, "t", "c", "r") {
		t.Fatal("expected matching entry with existing WAV to be valid")
	}
	if IsValid(entry, "different", "c", "r") {
		t.Fatal("expected mismatched text hash to invalidate entry")
	}

	missingWav := entry
	missingWav.WavPath = filepath.Join(dir, "does-not-exist.wav")
	if IsValid(missingWav, "t", "c", "r") {
		t.Fatal("expected missing WAV file to invalidate entry")
	}

	failed := entry
	failed.Status = types.CacheStatusFailed
	if IsValid(failed, "t", "c", "r") {
		t.Fatal("expected non-ok status to invalidate entry")
	}
}
