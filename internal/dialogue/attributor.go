package dialogue

import (
	"strings"

	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// IsValidSpeakerName reports whether name should be accepted as a
// speaker: already cast names are always valid, blacklisted words are
// always rejected, otherwise the profile's valid-name pattern decides.
func IsValidSpeakerName(name string, casting *types.CastingTable, profile *language.Profile) bool {
	if name == "" {
		return false
	}
	key := profile.NormalizeName(name)
	if casting != nil {
		if _, ok := casting.Characters[key]; ok {
			return true
		}
	}
	if profile.IsBlacklisted(name) {
		return false
	}
	return profile.IsValidName(name)
}

// windowRadius is the number of characters of context inspected on each
// side of a dialogue span when attributing its speaker.
const windowRadius = 100

// ExtractSpeakerFromContext attempts to find a speaker name and optional
// emotion hint for a dialogue span using the profile's said-patterns,
// per SPEC_FULL.md §4.C. Returns ("", "") if nothing is attributed.
func ExtractSpeakerFromContext(text string, start, end int, casting *types.CastingTable, profile *language.Profile) (speaker, emotion string) {
	before := text[max(0, start-windowRadius):start]
	afterEnd := end + windowRadius
	if afterEnd > len(text) {
		afterEnd = len(text)
	}
	after := text[end:afterEnd]
	context := before + " " + after

	for _, pattern := range profile.SaidPatterns() {
		loc := pattern.FindStringSubmatchIndex(context)
		if loc == nil {
			continue
		}
		candidate := context[loc[2]:loc[3]]
		if !IsValidSpeakerName(candidate, casting, profile) {
			continue
		}

		hint := ""
		if verbPattern := profile.EmotionVerbPattern(); verbPattern != nil {
			if vloc := verbPattern.FindStringSubmatchIndex(context); vloc != nil {
				verb := strings.ToLower(context[vloc[2]:vloc[3]])
				hint = profile.EmotionHints[verb]
			}
		}
		return candidate, hint
	}
	return "", ""
}
