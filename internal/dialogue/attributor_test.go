package dialogue

import (
	"strings"
	"testing"

	"github.com/unalkalkan/audiobooker/internal/casting"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

func castTable(t *testing.T, names ...string) *types.CastingTable {
	t.Helper()
	profile := enProfile(t)
	table := casting.New()
	for _, name := range names {
		casting.Cast(table, profile, name, "af_bella", "", "")
	}
	return table
}

func TestExtractSpeakerVerbThenName(t *testing.T) {
	text := `"Hello!" said Alice cheerfully.`
	speaker, emotion := ExtractSpeakerFromContext(text, 0, 8, castTable(t, "Alice"), enProfile(t))

	if speaker != "Alice" {
		t.Fatalf("expected Alice, got %q", speaker)
	}
	if emotion != "" {
		t.Fatalf("said carries no emotion hint, got %q", emotion)
	}
}

func TestExtractSpeakerNameThenVerb(t *testing.T) {
	text := `Alice said "Hello!" with a smile.`
	start := strings.Index(text, `"`)
	end := strings.LastIndex(text, `"`) + 1
	speaker, _ := ExtractSpeakerFromContext(text, start, end, castTable(t, "Alice"), enProfile(t))

	if speaker != "Alice" {
		t.Fatalf("expected Alice, got %q", speaker)
	}
}

func TestExtractSpeakerEmotionFromVerb(t *testing.T) {
	text := `"Watch out!" whispered Bob urgently.`
	speaker, emotion := ExtractSpeakerFromContext(text, 0, 12, castTable(t, "Bob"), enProfile(t))

	if speaker != "Bob" {
		t.Fatalf("expected Bob, got %q", speaker)
	}
	if emotion != "whisper" {
		t.Fatalf("expected whisper hint, got %q", emotion)
	}
}

func TestExtractSpeakerNoContext(t *testing.T) {
	text := `"Hello there."`
	speaker, emotion := ExtractSpeakerFromContext(text, 0, len(text), castTable(t), enProfile(t))

	if speaker != "" || emotion != "" {
		t.Fatalf("expected no attribution, got (%q, %q)", speaker, emotion)
	}
}

func TestExtractSpeakerRejectsBlacklistedPronoun(t *testing.T) {
	text := `"Hello." She said softly.`
	start := 0
	end := strings.Index(text, ".") + 2
	speaker, _ := ExtractSpeakerFromContext(text, start, end, castTable(t), enProfile(t))

	if speaker != "" {
		t.Fatalf("pronoun must never be accepted as a speaker, got %q", speaker)
	}
}

func TestIsValidSpeakerName(t *testing.T) {
	profile := enProfile(t)
	table := castTable(t, "Alice")

	cases := []struct {
		name string
		want bool
	}{
		{"Alice", true},    // cast
		{"Bob", true},      // plausible name
		{"She", false},     // blacklisted pronoun
		{"Suddenly", false}, // blacklisted adverb
		{"bob", false},     // lowercase fails the name pattern
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidSpeakerName(tc.name, table, profile); got != tc.want {
			t.Errorf("IsValidSpeakerName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
