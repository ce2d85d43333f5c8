package parser

import (
	"fmt"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/language"
)

// DefaultFactory resolves readers for supported formats.
type DefaultFactory struct {
	readers map[string]DocumentReader
}

// NewFactory creates a factory with the TextReader and EpubReader
// registered, driven by profile and the EPUB short-chapter thresholds.
func NewFactory(profile *language.Profile, minChapterWords int, keepTitledShortChapters bool) Factory {
	f := &DefaultFactory{readers: make(map[string]DocumentReader)}
	f.register(NewTextReader(profile))
	f.register(NewEpubReader(minChapterWords, keepTitledShortChapters))
	return f
}

func (f *DefaultFactory) register(r DocumentReader) {
	for _, format := range r.SupportedFormats() {
		f.readers[strings.ToLower(format)] = r
	}
}

// GetReader returns the reader registered for format.
func (f *DefaultFactory) GetReader(format string) (DocumentReader, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	r, ok := f.readers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return r, nil
}
