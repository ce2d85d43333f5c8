package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// TextReader parses plain text and Markdown into chapters using the
// language profile's chapter-heading patterns, generalizing
// TwelveReader's internal/parser/txt.go from a fixed pattern list to a
// profile-driven one. Grounded on
// original_source/audiobooker/parser/text.py.
type TextReader struct {
	Profile *language.Profile
}

// NewTextReader returns a TextReader driven by profile.
func NewTextReader(profile *language.Profile) *TextReader {
	return &TextReader{Profile: profile}
}

// Read extracts front matter and chapters from raw text content.
func (r *TextReader) Read(ctx context.Context, data []byte) ([]types.Chapter, map[string]string, error) {
	text := string(data)
	metadata, body := extractFrontMatter(text)
	if strings.TrimSpace(body) == "" {
		return nil, metadata, fmt.Errorf("no content found in text document")
	}

	sections := splitIntoChapters(body, r.Profile)

	chapters := make([]types.Chapter, 0, len(sections))
	for i, s := range sections {
		chapters = append(chapters, types.Chapter{
			Index:   i,
			Title:   s.title,
			RawText: s.content,
		})
	}
	if len(chapters) == 0 {
		return nil, metadata, fmt.Errorf("no content found in text document")
	}
	return chapters, metadata, nil
}

func (r *TextReader) SupportedFormats() []string { return []string{"txt", "md", "markdown"} }

// extractFrontMatter strips a leading "---\n...\n---\n" block and parses
// it as a flat key:value map, matching the original's
// extract_frontmatter (a simple line-based parse, not full YAML).
func extractFrontMatter(text string) (map[string]string, string) {
	metadata := map[string]string{}
	if !strings.HasPrefix(text, "---") {
		return metadata, text
	}
	rest := text[3:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		// tolerate a frontmatter block at end-of-file with no trailing newline
		if strings.HasSuffix(rest, "\n---") {
			idx = len(rest) - len("\n---")
		} else {
			return metadata, text
		}
	}
	frontmatter := rest[:idx]
	remaining := rest[idx+len("\n---\n"):]

	for _, line := range strings.Split(frontmatter, "\n") {
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		metadata[key] = value
	}
	return metadata, remaining
}

type chapterSection struct {
	title   string
	content string
}

// splitIntoChapters scans the first 200 non-empty lines to find the
// profile's best-matching chapter pattern (ties break toward the earlier
// pattern, i.e. profile order), then splits the whole body on it. With no
// pattern match it returns the whole body as a single "Chapter 1".
func splitIntoChapters(text string, profile *language.Profile) []chapterSection {
	patterns := profile.CompiledChapterPatterns()

	counts := make([]int, len(patterns))
	lines := strings.Split(text, "\n")
	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for i, p := range patterns {
			if p.MatchString(line) {
				counts[i]++
			}
		}
		checked++
		if checked >= 200 {
			break
		}
	}

	best := -1
	bestCount := 1 // must exceed 1 match to be adopted
	for i, c := range counts {
		if c > bestCount {
			bestCount = c
			best = i
		}
	}

	if best < 0 {
		return []chapterSection{{title: "Chapter 1", content: strings.TrimSpace(text)}}
	}
	pattern := patterns[best]

	var sections []chapterSection
	var title string
	haveTitle := false
	var content []string

	flush := func() {
		if !haveTitle && len(content) == 0 {
			return
		}
		t := title
		if t == "" {
			t = "Untitled"
		}
		body := strings.TrimSpace(strings.Join(content, "\n"))
		if body != "" {
			sections = append(sections, chapterSection{title: t, content: body})
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		m := pattern.FindStringSubmatch(trimmed)
		if m != nil {
			flush()
			switch {
			case len(m) >= 3 && m[2] != "":
				title = fmt.Sprintf("Chapter %s: %s", m[1], m[2])
			case len(m) >= 2 && m[1] != "":
				title = m[1]
			default:
				title = trimmed
			}
			haveTitle = true
			content = nil
			continue
		}
		content = append(content, line)
	}
	flush()

	return sections
}
