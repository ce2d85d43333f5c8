// Package review implements the human-editable review round-trip
// format: exporting a compiled project to a plain-text script a human
// can mark up, and importing the edited script back into the project's
// chapters. Ported from original_source/audiobooker/review.py.
package review

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// speakerTag matches a speaker line: @SpeakerName or @SpeakerName (emotion).
var speakerTag = regexp.MustCompile(`^@(\w+)(?:\s*\(([^)]+)\))?$`)

// chapterMarker matches a chapter header: === Chapter Title ===.
var chapterMarker = regexp.MustCompile(`^===\s*(.+?)\s*===$`)

// ExportForReview renders a compiled project as the review script
// format: a commented header followed by one "=== Title ===" section
// per chapter, each a run of "@Speaker (emotion)" tags and their text.
// Consecutive utterances from the same speaker/emotion are grouped
// under a single tag so a reviewer edits one block per voice change,
// not one block per sentence.
func ExportForReview(doc *types.ProjectDocument) string {
	var b strings.Builder

	fmt.Fprintln(&b, "# Audiobooker Review File")
	fmt.Fprintf(&b, "# Title: %s\n", doc.Title)
	fmt.Fprintf(&b, "# Author: %s\n", doc.Author)
	fmt.Fprintln(&b, "#")
	fmt.Fprintln(&b, "# Instructions:")
	fmt.Fprintln(&b, "#   - Edit speaker names by changing @OldName to @NewName")
	fmt.Fprintln(&b, "#   - Edit emotions by changing @Name (old) to @Name (new)")
	fmt.Fprintln(&b, "#   - Delete entire speaker blocks to remove them")
	fmt.Fprintln(&b, "#   - Add emotions: @narrator -> @narrator (somber)")
	fmt.Fprintln(&b, "#   - Lines starting with # are comments (ignored)")
	fmt.Fprintln(&b, "#")
	fmt.Fprintln(&b, "# After editing, import with: audiobooker review-import <file>")
	fmt.Fprintln(&b)

	for _, chapter := range doc.Chapters {
		fmt.Fprintf(&b, "=== %s ===\n", chapter.Title)
		fmt.Fprintln(&b)

		if len(chapter.Utterances) == 0 {
			fmt.Fprintln(&b, "# (Chapter not compiled - no utterances)")
			fmt.Fprintln(&b)
			continue
		}

		currentSpeaker := ""
		currentEmotion := ""
		haveSpeaker := false

		for _, utt := range chapter.Utterances {
			if utt.Speaker != currentSpeaker || utt.Emotion != currentEmotion {
				if haveSpeaker {
					fmt.Fprintln(&b)
				}
				if utt.Emotion != "" {
					fmt.Fprintf(&b, "@%s (%s)\n", utt.Speaker, utt.Emotion)
				} else {
					fmt.Fprintf(&b, "@%s\n", utt.Speaker)
				}
				currentSpeaker = utt.Speaker
				currentEmotion = utt.Emotion
				haveSpeaker = true
			}
			fmt.Fprintln(&b, utt.Text)
		}
		fmt.Fprintln(&b)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ImportStats summarizes what ImportReviewed changed.
type ImportStats struct {
	ChaptersUpdated    int
	UtterancesImported int
	SpeakersFound      []string
}

type parsedUtterance struct {
	speaker, emotion, text string
}

type parsedChapter struct {
	title      string
	utterances []parsedUtterance
}

// ImportReviewed parses a reviewed script and applies it to doc,
// replacing each matching chapter's utterance list in place. Chapters
// present in doc but absent from content (or present under a title
// that no longer matches) are left untouched — review-import only
// updates what the reviewed file actually describes. Line endings are
// normalized before splitting so CRLF- or mixed-ending files parse
// identically to LF files.
func ImportReviewed(doc *types.ProjectDocument, content string) ImportStats {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")

	var chapters []parsedChapter
	var currentTitle string
	haveChapter := false
	var currentUtterances []parsedUtterance
	currentSpeaker := ""
	currentEmotion := ""
	var textLines []string

	flushUtterance := func() {
		if currentSpeaker != "" && len(textLines) > 0 {
			text := strings.TrimSpace(strings.Join(textLines, " "))
			if text != "" {
				currentUtterances = append(currentUtterances, parsedUtterance{
					speaker: currentSpeaker,
					emotion: currentEmotion,
					text:    text,
				})
			}
		}
		textLines = nil
	}

	flushChapter := func() {
		flushUtterance()
		if haveChapter {
			chapters = append(chapters, parsedChapter{title: currentTitle, utterances: currentUtterances})
		}
		currentUtterances = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "" {
			continue
		}

		if m := chapterMarker.FindStringSubmatch(trimmed); m != nil {
			flushChapter()
			currentTitle = m[1]
			haveChapter = true
			currentSpeaker = ""
			currentEmotion = ""
			continue
		}

		if m := speakerTag.FindStringSubmatch(trimmed); m != nil {
			flushUtterance()
			currentSpeaker = m[1]
			currentEmotion = m[2]
			continue
		}

		if currentSpeaker != "" {
			textLines = append(textLines, trimmed)
		}
	}
	flushChapter()

	stats := ImportStats{}
	speakersSeen := map[string]bool{}

	for _, pc := range chapters {
		var target *types.Chapter
		for i := range doc.Chapters {
			if doc.Chapters[i].Title == pc.title {
				target = &doc.Chapters[i]
				break
			}
		}
		if target == nil {
			continue
		}

		utterances := make([]types.Utterance, 0, len(pc.utterances))
		for i, pu := range pc.utterances {
			kind := types.KindNarration
			if strings.HasPrefix(pu.text, `"`) {
				kind = types.KindDialogue
			}
			utterances = append(utterances, types.Utterance{
				Speaker:      pu.speaker,
				Text:         pu.text,
				Kind:         kind,
				Emotion:      pu.emotion,
				ChapterIndex: target.Index,
				LineIndex:    i,
			})
			speakersSeen[pu.speaker] = true
		}

		target.Utterances = utterances
		stats.ChaptersUpdated++
		stats.UtterancesImported += len(utterances)
	}

	for speaker := range speakersSeen {
		stats.SpeakersFound = append(stats.SpeakersFound, speaker)
	}
	sort.Strings(stats.SpeakersFound)
	return stats
}

// PreviewChapter renders a single chapter's review-format text without
// the file header, for a quick terminal preview before a full export.
func PreviewChapter(chapter *types.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", chapter.Title)
	fmt.Fprintln(&b)

	if len(chapter.Utterances) == 0 {
		fmt.Fprintln(&b, "# (Not compiled)")
		return strings.TrimRight(b.String(), "\n")
	}

	currentSpeaker := ""
	currentEmotion := ""
	haveSpeaker := false

	for _, utt := range chapter.Utterances {
		if utt.Speaker != currentSpeaker || utt.Emotion != currentEmotion {
			if haveSpeaker {
				fmt.Fprintln(&b)
			}
			if utt.Emotion != "" {
				fmt.Fprintf(&b, "@%s (%s)\n", utt.Speaker, utt.Emotion)
			} else {
				fmt.Fprintf(&b, "@%s\n", utt.Speaker)
			}
			currentSpeaker = utt.Speaker
			currentEmotion = utt.Emotion
			haveSpeaker = true
		}
		fmt.Fprintln(&b, utt.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
