package dialogue

import (
	"strings"
	"testing"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

func TestParseInlineOverride(t *testing.T) {
	t.Run("no override", func(t *testing.T) {
		name, emotion, rest := ParseInlineOverride("Just regular text.")
		if name != "" || emotion != "" || rest != "Just regular text." {
			t.Fatalf("got (%q, %q, %q)", name, emotion, rest)
		}
	})

	t.Run("name only", func(t *testing.T) {
		name, emotion, rest := ParseInlineOverride(`[Alice] "Hello!"`)
		if name != "Alice" || emotion != "" || rest != `"Hello!"` {
			t.Fatalf("got (%q, %q, %q)", name, emotion, rest)
		}
	})

	t.Run("name and emotion", func(t *testing.T) {
		name, emotion, rest := ParseInlineOverride(`[Bob|angry] "Get out!"`)
		if name != "Bob" || emotion != "angry" || rest != `"Get out!"` {
			t.Fatalf("got (%q, %q, %q)", name, emotion, rest)
		}
	})
}

func TestCompileChapterAttribution(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test Chapter",
		RawText: `She opened the door. "Hello?" said Alice.`,
	}
	table := castTable(t, "Alice")

	if err := CompileChapter(&chapter, table, enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) < 2 {
		t.Fatalf("expected at least narration + dialogue, got %+v", chapter.Utterances)
	}
	first := chapter.Utterances[0]
	if first.Speaker != "narrator" || first.Text != "She opened the door." || first.Kind != types.KindNarration || first.Emotion != "" {
		t.Fatalf("unexpected first utterance: %+v", first)
	}
	second := chapter.Utterances[1]
	if second.Speaker != "Alice" || second.Text != "Hello?" || second.Kind != types.KindDialogue || second.Emotion != "" {
		t.Fatalf("unexpected second utterance: %+v", second)
	}
}

func TestCompileChapterInlineOverride(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: `[Bob|angry] "Get out!"`,
	}

	if err := CompileChapter(&chapter, castTable(t), enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) != 1 {
		t.Fatalf("expected 1 utterance, got %+v", chapter.Utterances)
	}
	utt := chapter.Utterances[0]
	if utt.Speaker != "Bob" || utt.Text != "Get out!" || utt.Kind != types.KindDialogue || utt.Emotion != "angry" {
		t.Fatalf("unexpected utterance: %+v", utt)
	}
}

func TestCompileChapterVerbCarriedEmotion(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: `"Run!" screamed Tom.`,
	}

	if err := CompileChapter(&chapter, castTable(t, "Tom"), enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) == 0 {
		t.Fatal("expected utterances")
	}
	utt := chapter.Utterances[0]
	if utt.Speaker != "Tom" || utt.Text != "Run!" || utt.Kind != types.KindDialogue || utt.Emotion != "fearful" {
		t.Fatalf("unexpected utterance: %+v", utt)
	}
}

func TestCompileChapterUnknownSpeakerFallback(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: `"Nobody will ever know who spoke this."`,
	}

	if err := CompileChapter(&chapter, castTable(t), enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) != 1 || chapter.Utterances[0].Speaker != "unknown" {
		t.Fatalf("expected unknown speaker, got %+v", chapter.Utterances)
	}
}

func TestCompileChapterLineIndexesDense(t *testing.T) {
	chapter := types.Chapter{
		Index: 3,
		Title: "Test",
		RawText: "Paragraph one is plain narration.\n\n" +
			`"Hi" said Alice. "How are you?"` + "\n\n" +
			"A closing paragraph.",
	}

	if err := CompileChapter(&chapter, castTable(t, "Alice"), enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	for i, utt := range chapter.Utterances {
		if utt.LineIndex != i {
			t.Fatalf("line_index %d at position %d: %+v", utt.LineIndex, i, chapter.Utterances)
		}
		if utt.ChapterIndex != 3 {
			t.Fatalf("chapter_index not propagated: %+v", utt)
		}
		if strings.TrimSpace(utt.Text) == "" {
			t.Fatalf("empty utterance text at %d: %+v", i, utt)
		}
	}
}

func TestCompileChapterOverrideOnlyParagraphDropped(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: "[Alice]",
	}

	if err := CompileChapter(&chapter, castTable(t, "Alice"), enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) != 0 {
		t.Fatalf("override-only paragraph must produce no utterances, got %+v", chapter.Utterances)
	}
}

func TestCompileChapterUpdatesLineCounts(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: `"Hi" said Alice. "Hello" said Alice.`,
	}
	table := castTable(t, "Alice")

	if err := CompileChapter(&chapter, table, enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if got := table.Characters["alice"].LineCount; got != 2 {
		t.Fatalf("expected line_count 2 for alice, got %d", got)
	}
}

func TestCompileChapterRecompileReplacesUtterances(t *testing.T) {
	chapter := types.Chapter{
		Index:   0,
		Title:   "Test",
		RawText: "One sentence of narration.",
	}
	table := castTable(t)

	if err := CompileChapter(&chapter, table, enProfile(t), false); err != nil {
		t.Fatal(err)
	}
	if err := CompileChapter(&chapter, table, enProfile(t), false); err != nil {
		t.Fatal(err)
	}

	if len(chapter.Utterances) != 1 {
		t.Fatalf("recompile must replace, not append: %+v", chapter.Utterances)
	}
}

func TestUtterancesToScript(t *testing.T) {
	utterances := []types.Utterance{
		{Speaker: "narrator", Text: "The room was quiet."},
		{Speaker: "Alice", Text: "Hello?", Emotion: "nervous"},
	}

	script := UtterancesToScript(utterances, enProfile(t))

	if !strings.Contains(script, "[S1:narrator] The room was quiet.") {
		t.Fatalf("missing narrator line:\n%s", script)
	}
	if !strings.Contains(script, "[S2:alice] (nervous) Hello?") {
		t.Fatalf("missing alice line:\n%s", script)
	}
}
