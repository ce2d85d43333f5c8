// Package casting implements the operations on a CastingTable: casting
// characters, resolving a speaker to a voice with fallbacks, and
// building the synthesizer voice mapping. Ported from
// original_source/audiobooker/models.py::CastingTable.
package casting

import (
	"sort"

	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// New returns an empty casting table with the spec's documented
// defaults: default_narrator="narrator", fallback_voice_id="af_heart".
func New() *types.CastingTable {
	return &types.CastingTable{
		Characters:               map[string]types.Character{},
		DefaultNarrator:          "narrator",
		FallbackVoiceID:          "af_heart",
		UnknownCharacterBehavior: types.UnknownNarrator,
	}
}

// Cast inserts or replaces the character cast under name's normalized
// key, preserving the most-recently-supplied display form.
func Cast(table *types.CastingTable, profile *language.Profile, name, voiceID, emotion, description string) types.Character {
	if table.Characters == nil {
		table.Characters = map[string]types.Character{}
	}
	key := profile.NormalizeName(name)
	char := types.Character{
		Name:           name,
		VoiceID:        voiceID,
		DefaultEmotion: emotion,
		Description:    description,
	}
	table.Characters[key] = char
	return char
}

// GetVoice resolves a speaker name to (voice_id, emotion) per the lookup
// rule: exact normalized key, else the default_narrator entry, else the
// fallback voice with no emotion.
func GetVoice(table *types.CastingTable, profile *language.Profile, speaker string) (voiceID, emotion string) {
	key := profile.NormalizeName(speaker)
	if char, ok := table.Characters[key]; ok {
		return char.VoiceID, char.DefaultEmotion
	}
	if char, ok := table.Characters[table.DefaultNarrator]; ok {
		return char.VoiceID, char.DefaultEmotion
	}
	return table.FallbackVoiceID, ""
}

// VoiceMapping returns a map of normalized speaker name to voice ID,
// suitable for passing to the synthesizer capability.
func VoiceMapping(table *types.CastingTable) map[string]string {
	mapping := make(map[string]string, len(table.Characters))
	for key, char := range table.Characters {
		mapping[key] = char.VoiceID
	}
	return mapping
}

// ListCharacters returns the display names of every cast character,
// sorted for stable output.
func ListCharacters(table *types.CastingTable) []string {
	names := make([]string, 0, len(table.Characters))
	for _, char := range table.Characters {
		names = append(names, char.Name)
	}
	sort.Strings(names)
	return names
}
