package dialogue

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// inlineOverride matches a leading [Name] or [Name|emotion] tag.
var inlineOverride = regexp.MustCompile(`^\[([^\]|]+)(?:\|([^\]]+))?\]\s*`)

// ParseInlineOverride strips a leading inline override tag from text if
// present, returning the override name/emotion (empty if absent) and the
// remaining text.
func ParseInlineOverride(text string) (name, emotion, rest string) {
	loc := inlineOverride.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", "", text
	}
	name = strings.TrimSpace(text[loc[2]:loc[3]])
	if loc[4] >= 0 {
		emotion = strings.TrimSpace(text[loc[4]:loc[5]])
	}
	return name, emotion, text[loc[1]:]
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// CompileChapter replaces chapter.Utterances by running the dialogue
// segmenter and speaker attributor over every paragraph of raw_text, per
// SPEC_FULL.md §4.D. It also updates casting.Characters line counts for
// every speaker the compiled utterances reference.
func CompileChapter(chapter *types.Chapter, casting *types.CastingTable, profile *language.Profile, includeSingleQuotes bool) error {
	if len(profile.SpeakerVerbs) == 0 && len(profile.CompiledChapterPatterns()) == 0 {
		return &apperr.CompilationError{Message: fmt.Sprintf("language profile %q has no speech verbs and no fallback pattern", profile.Code)}
	}

	var utterances []types.Utterance
	lineIndex := 0

	for _, raw := range paragraphSplit.Split(chapter.RawText, -1) {
		para := strings.TrimSpace(raw)
		if para == "" {
			continue
		}

		overrideName, overrideEmotion, para := ParseInlineOverride(para)

		spans := Detect(para, profile, includeSingleQuotes)

		if len(spans) == 0 {
			speaker := "narrator"
			if overrideName != "" {
				speaker = overrideName
			}
			text := strings.TrimSpace(para)
			if text == "" {
				continue
			}
			utterances = append(utterances, types.Utterance{
				Speaker:      speaker,
				Text:         text,
				Kind:         types.KindNarration,
				Emotion:      overrideEmotion,
				ChapterIndex: chapter.Index,
				LineIndex:    lineIndex,
			})
			lineIndex++
			continue
		}

		for _, span := range spans {
			if strings.TrimSpace(span.Content) == "" {
				continue
			}

			if span.IsDialogue {
				speaker := overrideName
				emotion := overrideEmotion
				if speaker == "" {
					s, e := ExtractSpeakerFromContext(para, span.Start, span.End, casting, profile)
					speaker = s
					if overrideEmotion == "" {
						emotion = e
					}
				}
				if speaker == "" {
					speaker = "unknown"
				}
				utterances = append(utterances, types.Utterance{
					Speaker:      speaker,
					Text:         span.Content,
					Kind:         types.KindDialogue,
					Emotion:      emotion,
					ChapterIndex: chapter.Index,
					LineIndex:    lineIndex,
				})
			} else {
				utterances = append(utterances, types.Utterance{
					Speaker:      "narrator",
					Text:         span.Content,
					Kind:         types.KindNarration,
					ChapterIndex: chapter.Index,
					LineIndex:    lineIndex,
				})
			}
			lineIndex++
		}
	}

	chapter.Utterances = utterances

	for _, utt := range utterances {
		key := profile.NormalizeName(utt.Speaker)
		if ch, ok := casting.Characters[key]; ok {
			ch.LineCount++
			casting.Characters[key] = ch
		}
	}

	return nil
}

// UtterancesToScript renders a chapter's utterances into the
// "[Sn:speaker] (emotion) text" script format the synthesizer consumes,
// assigning speaker IDs in first-seen order.
func UtterancesToScript(utterances []types.Utterance, profile *language.Profile) string {
	speakerIDs := make(map[string]string)
	var lines []string
	next := 1

	for _, utt := range utterances {
		key := profile.NormalizeName(utt.Speaker)
		id, ok := speakerIDs[key]
		if !ok {
			id = fmt.Sprintf("S%d", next)
			speakerIDs[key] = id
			next++
		}
		emotionPart := ""
		if utt.Emotion != "" {
			emotionPart = fmt.Sprintf("(%s) ", utt.Emotion)
		}
		lines = append(lines, fmt.Sprintf("[%s:%s] %s%s", id, key, emotionPart, utt.Text))
	}
	return strings.Join(lines, "\n")
}
