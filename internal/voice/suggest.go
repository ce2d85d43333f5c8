// Voice suggestion heuristics for the cast --suggest CLI path. Grounded on
// original_source/audiobooker/casting/voice_suggester.py: the same curated
// voice-note table, prefix-derived gender/accent inference, and scoring
// weights, ported to Go and repointed at the Registry built in registry.go
// instead of a live voice-soundboard query.
package voice

import (
	"regexp"
	"sort"
	"strings"
)

// VoiceSuggestion is a single ranked, explainable voice recommendation.
type VoiceSuggestion struct {
	VoiceID string   `json:"voice_id"`
	Score   float64  `json:"score"`
	Reason  string   `json:"reason"`
	Tags    []string `json:"tags,omitempty"`
}

// SpeakerSuggestions holds the ranked suggestions for a single speaker.
type SpeakerSuggestions struct {
	Speaker     string             `json:"speaker"`
	Suggestions []VoiceSuggestion  `json:"suggestions"`
}

// Top returns the highest-ranked suggestion, or the zero value and false if
// none were produced.
func (s SpeakerSuggestions) Top() (VoiceSuggestion, bool) {
	if len(s.Suggestions) == 0 {
		return VoiceSuggestion{}, false
	}
	return s.Suggestions[0], true
}

type voiceNotes struct {
	style string
	tags  []string
}

// voicePrefixGender maps the af_/am_/bf_/bm_ naming convention to gender and
// accent, matching the original's _VOICE_PREFIX_MAP.
var voicePrefixGender = []struct {
	prefix string
	gender string
	accent string
}{
	{"af_", "female", "american"},
	{"am_", "male", "american"},
	{"bf_", "female", "british"},
	{"bm_", "male", "british"},
}

// voiceNoteTable is the curated personality-trait table for better matching,
// ported verbatim from the original's _VOICE_NOTES.
var voiceNoteTable = map[string]voiceNotes{
	"af_heart":    {"calm", []string{"narrator", "warm", "default"}},
	"af_aoede":    {"expressive", []string{"narrator", "elegant"}},
	"af_jessica":  {"neutral", []string{"dialogue", "clear"}},
	"af_sky":      {"expressive", []string{"young", "energetic"}},
	"am_eric":     {"neutral", []string{"dialogue", "clear"}},
	"am_fenrir":   {"powerful", []string{"narrator", "deep", "commanding"}},
	"am_liam":     {"neutral", []string{"dialogue", "young"}},
	"am_onyx":     {"calm", []string{"narrator", "deep"}},
	"bf_alice":    {"neutral", []string{"dialogue", "refined"}},
	"bf_emma":     {"expressive", []string{"dialogue", "warm"}},
	"bf_isabella": {"calm", []string{"narrator", "gentle"}},
	"bm_george":   {"calm", []string{"narrator", "authoritative"}},
	"bm_lewis":    {"neutral", []string{"dialogue", "clear"}},
}

type voiceInfo struct {
	id     string
	gender string
	accent string
	style  string
	tags   []string
}

func resolveVoiceInfo(voiceID string) voiceInfo {
	info := voiceInfo{id: voiceID, gender: "unknown", accent: "unknown", style: "neutral"}
	for _, p := range voicePrefixGender {
		if strings.HasPrefix(voiceID, p.prefix) {
			info.gender = p.gender
			info.accent = p.accent
			break
		}
	}
	if notes, ok := voiceNoteTable[voiceID]; ok {
		info.style = notes.style
		info.tags = notes.tags
	}
	return info
}

var (
	femaleCues = regexp.MustCompile(`(?i)\b(?:she|her|hers|herself|woman|girl|mother|sister|daughter|wife|queen|princess|lady|madam|miss|mrs|ms)\b`)
	maleCues   = regexp.MustCompile(`(?i)\b(?:he|him|his|himself|man|boy|father|brother|son|husband|king|prince|lord|sir|mr)\b`)
)

// inferGender guesses a speaker's likely gender from sample dialogue lines,
// matching the original's _infer_gender margin-of-one tie-break.
func inferGender(sampleUtterances []string) string {
	combined := strings.Join(sampleUtterances, " ")
	femaleScore := len(femaleCues.FindAllString(combined, -1))
	maleScore := len(maleCues.FindAllString(combined, -1))
	switch {
	case femaleScore > maleScore+1:
		return "female"
	case maleScore > femaleScore+1:
		return "male"
	default:
		return ""
	}
}

// Suggester ranks voices for speakers using registry contents plus the
// curated heuristics above. It keeps no state between calls; SuggestAll
// tracks the voices it has already suggested in a map local to each call.
type Suggester struct {
	registry       *Registry
	maxSuggestions int
}

// NewSuggester returns a Suggester drawing candidates from registry.
// maxSuggestions <= 0 defaults to 3, matching the original's default.
func NewSuggester(registry *Registry, maxSuggestions int) *Suggester {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &Suggester{registry: registry, maxSuggestions: maxSuggestions}
}

// SuggestForSpeaker ranks voices for a single speaker. alreadyCast maps
// speaker name to voice ID for speakers already assigned, used for the
// diversity penalty.
func (s *Suggester) SuggestForSpeaker(speaker string, sampleUtterances []string, isNarrator bool, alreadyCast map[string]string) SpeakerSuggestions {
	used := map[string]struct{}{}
	for _, v := range alreadyCast {
		used[v] = struct{}{}
	}

	available := s.registry.List()
	if len(available) == 0 {
		return SpeakerSuggestions{Speaker: speaker}
	}

	genderPref := inferGender(sampleUtterances)

	type scored struct {
		score float64
		sug   VoiceSuggestion
	}
	var all []scored

	for _, v := range available {
		info := resolveVoiceInfo(v.ID)
		score := 0.0
		var reasons []string

		if genderPref != "" && info.gender == genderPref {
			score += 0.3
			reasons = append(reasons, "gender match ("+genderPref+")")
		} else if genderPref != "" && info.gender != "unknown" && info.gender != genderPref {
			score -= 0.5
			reasons = append(reasons, "gender mismatch ("+info.gender+")")
		}

		if isNarrator && hasTag(info.tags, "narrator") {
			score += 0.4
			reasons = append(reasons, "narrator voice")
		} else if !isNarrator && hasTag(info.tags, "dialogue") {
			score += 0.2
			reasons = append(reasons, "dialogue voice")
		}

		if isNarrator && (info.style == "calm" || info.style == "neutral") {
			score += 0.1
			reasons = append(reasons, info.style+" style")
		}

		if _, ok := used[v.ID]; ok {
			score -= 0.6
			reasons = append(reasons, "already assigned to another speaker")
		}

		if _, ok := voiceNoteTable[v.ID]; ok {
			score += 0.05
			reasons = append(reasons, "curated voice")
		}

		reason := "default suggestion"
		if len(reasons) > 0 {
			reason = strings.Join(reasons, "; ")
		}

		normalized := (score + 1.0) / 2.0
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}

		all = append(all, scored{
			score: score,
			sug: VoiceSuggestion{
				VoiceID: v.ID,
				Score:   normalized,
				Reason:  reason,
				Tags:    info.tags,
			},
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].sug.VoiceID < all[j].sug.VoiceID
	})

	limit := s.maxSuggestions
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]VoiceSuggestion, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[i].sug
	}
	return SpeakerSuggestions{Speaker: speaker, Suggestions: out}
}

// SuggestAll ranks voices for every speaker in order, feeding each
// speaker's top suggestion back in as a pseudo-cast so later speakers are
// nudged away from voices already recommended to earlier ones.
func (s *Suggester) SuggestAll(speakers []string, speakerUtterances map[string][]string, alreadyCast map[string]string) []SpeakerSuggestions {
	castSoFar := map[string]string{}
	for k, v := range alreadyCast {
		castSoFar[k] = v
	}

	results := make([]SpeakerSuggestions, 0, len(speakers))
	for _, speaker := range speakers {
		isNarrator := strings.ToLower(speaker) == "narrator" || strings.ToLower(speaker) == "narration"
		samples := speakerUtterances[speaker]

		sugg := s.SuggestForSpeaker(speaker, samples, isNarrator, castSoFar)
		results = append(results, sugg)

		if top, ok := sugg.Top(); ok {
			castSoFar[speaker] = top.VoiceID
		}
	}
	return results
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
