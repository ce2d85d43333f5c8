// Package parser converts source documents (plain text/Markdown, EPUB)
// into chapters ready for dialogue compilation. Grounded on
// original_source/audiobooker/parser/{text.py,epub.py}, generalized from
// TwelveReader's internal/parser Parser/Factory split.
package parser

import (
	"context"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// DocumentReader extracts chapters and front-matter metadata from a raw
// document. Implementations never touch casting or synthesis; their only
// job is text in, chapters out.
type DocumentReader interface {
	// Read extracts chapters and any front-matter/EPUB metadata found in
	// the document.
	Read(ctx context.Context, data []byte) ([]types.Chapter, map[string]string, error)

	// SupportedFormats returns the file extensions this reader handles,
	// without the leading dot (e.g. "txt", "epub").
	SupportedFormats() []string
}

// Factory resolves a DocumentReader by format name.
type Factory interface {
	GetReader(format string) (DocumentReader, error)
}
