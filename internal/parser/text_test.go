package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/language"
)

func TestTextReaderSplitsOnChapterHeadings(t *testing.T) {
	doc := "---\ntitle: My Book\nauthor: Jane Doe\n---\n" +
		"Chapter 1: The Start\nOnce upon a time there was a fox.\n\n" +
		"Chapter 2: The Middle\nThe fox went on an adventure.\n"

	r := NewTextReader(language.English)
	chapters, meta, err := r.Read(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if meta["title"] != "My Book" || meta["author"] != "Jane Doe" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d: %+v", len(chapters), chapters)
	}
	if !strings.Contains(chapters[0].Title, "The Start") {
		t.Fatalf("unexpected first title: %q", chapters[0].Title)
	}
	if !strings.Contains(chapters[1].RawText, "adventure") {
		t.Fatalf("unexpected second content: %q", chapters[1].RawText)
	}
}

func TestTextReaderSingleChapterWhenNoHeadingsDetected(t *testing.T) {
	doc := "Just a short story with no chapter markings at all, across a few lines.\nAnd a second line."
	r := NewTextReader(language.English)
	chapters, _, err := r.Read(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Title != "Chapter 1" {
		t.Fatalf("expected a single fallback chapter, got %+v", chapters)
	}
}

func TestTextReaderRejectsEmptyDocument(t *testing.T) {
	r := NewTextReader(language.English)
	if _, _, err := r.Read(context.Background(), []byte("")); err == nil {
		t.Fatal("expected an error for an empty document")
	}
}

func TestFactoryResolvesRegisteredFormats(t *testing.T) {
	f := NewFactory(language.English, 50, true)
	if _, err := f.GetReader("TXT"); err != nil {
		t.Fatalf("expected txt reader, got error: %v", err)
	}
	if _, err := f.GetReader(".epub"); err != nil {
		t.Fatalf("expected epub reader, got error: %v", err)
	}
	if _, err := f.GetReader("pdf"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}
