package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// fakeBackend returns a fixed attribution list and records whether it
// was consulted.
type fakeBackend struct {
	available    bool
	attributions []QuoteAttribution
	err          error
	calls        int
}

func (b *fakeBackend) IsAvailable(ctx context.Context) bool { return b.available }

func (b *fakeBackend) Attribute(ctx context.Context, chapterText string) ([]QuoteAttribution, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.attributions, nil
}

func compiledChapter(utterances ...types.Utterance) types.Chapter {
	return types.Chapter{Index: 0, Title: "Ch1", RawText: "text", Utterances: utterances}
}

func TestNewSpeakerResolverRejectsBadMode(t *testing.T) {
	if _, err := NewSpeakerResolver("sometimes", nil); err == nil {
		t.Fatal("expected invalid-mode error")
	}
}

func TestResolveOffModeIsNoOp(t *testing.T) {
	backend := &fakeBackend{available: true}
	resolver, err := NewSpeakerResolver(ResolverOff, backend)
	if err != nil {
		t.Fatal(err)
	}

	chapters := []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: "Who said this?"},
	)}
	stats, err := resolver.Resolve(context.Background(), chapters)
	if err != nil {
		t.Fatal(err)
	}
	if backend.calls != 0 || stats.BackendUsed {
		t.Fatalf("off mode must not touch the backend: %+v", stats)
	}
	if chapters[0].Utterances[0].Speaker != "unknown" {
		t.Fatal("off mode must not mutate utterances")
	}
}

func TestResolveOnModeRequiresBackend(t *testing.T) {
	resolver, err := NewSpeakerResolver(ResolverOn, &fakeBackend{available: false})
	if err != nil {
		t.Fatal(err)
	}
	_, err = resolver.Resolve(context.Background(), nil)
	if !errors.As(err, &ErrBackendRequired{}) {
		t.Fatalf("expected ErrBackendRequired, got %v", err)
	}
}

func TestResolveAutoSkipsUnavailableBackend(t *testing.T) {
	backend := &fakeBackend{available: false}
	resolver, err := NewSpeakerResolver(ResolverAuto, backend)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := resolver.Resolve(context.Background(), []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: "Anyone?"},
	)})
	if err != nil {
		t.Fatal(err)
	}
	if backend.calls != 0 || stats.BackendUsed {
		t.Fatalf("auto mode with unavailable backend must be a no-op: %+v", stats)
	}
}

func TestResolveReplacesOnlyUnknownSpeakers(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		attributions: []QuoteAttribution{
			{QuoteText: "Who goes there?", Speaker: "Guard", Confidence: 0.8},
			{QuoteText: "Just me.", Speaker: "Impostor", Confidence: 0.9},
		},
	}
	resolver, err := NewSpeakerResolver(ResolverOn, backend)
	if err != nil {
		t.Fatal(err)
	}

	chapters := []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: "Who goes there?"},
		types.Utterance{Speaker: "Alice", Text: "Just me."},
		types.Utterance{Speaker: "narrator", Text: "A pause."},
	)}
	stats, err := resolver.Resolve(context.Background(), chapters)
	if err != nil {
		t.Fatal(err)
	}

	if chapters[0].Utterances[0].Speaker != "Guard" {
		t.Fatalf("unknown speaker should resolve: %+v", chapters[0].Utterances[0])
	}
	if chapters[0].Utterances[1].Speaker != "Alice" {
		t.Fatal("already-attributed speakers must never be replaced")
	}
	if stats.SpeakersResolved != 1 || stats.SpeakersUnchanged != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestResolveMatchesByQuotePrefix(t *testing.T) {
	long := "This is a very long quotation that keeps going well past the eighty character mark so only its prefix matters."
	backend := &fakeBackend{
		available: true,
		attributions: []QuoteAttribution{
			{QuoteText: long, Speaker: "Orator", Confidence: 0.8},
		},
	}
	resolver, err := NewSpeakerResolver(ResolverOn, backend)
	if err != nil {
		t.Fatal(err)
	}

	// Same first 80 casefolded characters, different tail.
	variant := long[:80] + " And an entirely different ending."
	chapters := []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: variant},
	)}
	if _, err := resolver.Resolve(context.Background(), chapters); err != nil {
		t.Fatal(err)
	}
	if chapters[0].Utterances[0].Speaker != "Orator" {
		t.Fatalf("prefix match failed: %+v", chapters[0].Utterances[0])
	}
}

func TestResolveFiltersLowConfidenceAttributions(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		attributions: []QuoteAttribution{
			{QuoteText: "A wild guess.", Speaker: "Maybe", Confidence: 0.2},
		},
	}
	resolver, err := NewSpeakerResolver(ResolverOn, backend)
	if err != nil {
		t.Fatal(err)
	}

	chapters := []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: "A wild guess."},
	)}
	if _, err := resolver.Resolve(context.Background(), chapters); err != nil {
		t.Fatal(err)
	}
	if chapters[0].Utterances[0].Speaker != "unknown" {
		t.Fatalf("low-confidence attribution must be ignored: %+v", chapters[0].Utterances[0])
	}
}

func TestResolveRecordsBackendError(t *testing.T) {
	backend := &fakeBackend{available: true, err: errors.New("model unavailable")}
	resolver, err := NewSpeakerResolver(ResolverOn, backend)
	if err != nil {
		t.Fatal(err)
	}

	chapters := []types.Chapter{compiledChapter(
		types.Utterance{Speaker: "unknown", Text: "Anyone?"},
	)}
	stats, err := resolver.Resolve(context.Background(), chapters)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BackendError == "" {
		t.Fatalf("backend error must be surfaced in stats: %+v", stats)
	}
	if chapters[0].Utterances[0].Speaker != "unknown" {
		t.Fatal("a failed backend call must leave utterances untouched")
	}
}
