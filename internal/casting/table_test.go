package casting

import (
	"testing"

	"github.com/unalkalkan/audiobooker/internal/language"
)

func enProfile(t *testing.T) *language.Profile {
	t.Helper()
	profile, err := language.Get("en")
	if err != nil {
		t.Fatal(err)
	}
	return profile
}

func TestNewDefaults(t *testing.T) {
	table := New()
	if table.DefaultNarrator != "narrator" {
		t.Fatalf("unexpected default narrator key: %q", table.DefaultNarrator)
	}
	if table.FallbackVoiceID == "" {
		t.Fatal("expected a fallback voice id")
	}
	if table.Characters == nil {
		t.Fatal("characters map must be initialized")
	}
}

func TestCastNormalizesKeyAndKeepsDisplayForm(t *testing.T) {
	profile := enProfile(t)
	table := New()

	Cast(table, profile, "  Alice ", "af_bella", "", "")
	if _, ok := table.Characters["alice"]; !ok {
		t.Fatalf("expected normalized key, got %v", table.Characters)
	}
	if table.Characters["alice"].Name != "  Alice " {
		t.Fatalf("display form must be preserved as supplied: %q", table.Characters["alice"].Name)
	}

	// Re-casting under the same normalized key replaces the entry and
	// keeps the most recent display form.
	Cast(table, profile, "ALICE", "af_sky", "cheerful", "")
	char := table.Characters["alice"]
	if char.Name != "ALICE" || char.VoiceID != "af_sky" || char.DefaultEmotion != "cheerful" {
		t.Fatalf("replacement did not take: %+v", char)
	}
	if len(table.Characters) != 1 {
		t.Fatalf("expected a single entry, got %v", table.Characters)
	}
}

func TestGetVoiceLookupChain(t *testing.T) {
	profile := enProfile(t)
	table := New()
	table.FallbackVoiceID = "af_fallback"
	Cast(table, profile, "narrator", "af_heart", "calm", "")
	Cast(table, profile, "Alice", "af_bella", "nervous", "")

	t.Run("exact key", func(t *testing.T) {
		voiceID, emotion := GetVoice(table, profile, "ALICE")
		if voiceID != "af_bella" || emotion != "nervous" {
			t.Fatalf("got (%q, %q)", voiceID, emotion)
		}
	})

	t.Run("default narrator", func(t *testing.T) {
		voiceID, emotion := GetVoice(table, profile, "Stranger")
		if voiceID != "af_heart" || emotion != "calm" {
			t.Fatalf("got (%q, %q)", voiceID, emotion)
		}
	})

	t.Run("fallback voice", func(t *testing.T) {
		bare := New()
		bare.FallbackVoiceID = "af_fallback"
		voiceID, emotion := GetVoice(bare, profile, "Anyone")
		if voiceID != "af_fallback" || emotion != "" {
			t.Fatalf("got (%q, %q)", voiceID, emotion)
		}
	})
}

func TestVoiceMapping(t *testing.T) {
	profile := enProfile(t)
	table := New()
	Cast(table, profile, "Alice", "af_bella", "", "")
	Cast(table, profile, "Bob", "am_adam", "", "")

	mapping := VoiceMapping(table)
	if mapping["alice"] != "af_bella" || mapping["bob"] != "am_adam" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestListCharactersSorted(t *testing.T) {
	profile := enProfile(t)
	table := New()
	Cast(table, profile, "Zoe", "v1", "", "")
	Cast(table, profile, "Alice", "v2", "", "")

	names := ListCharacters(table)
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Zoe" {
		t.Fatalf("unexpected order: %v", names)
	}
}
