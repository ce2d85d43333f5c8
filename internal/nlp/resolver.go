package nlp

import (
	"context"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/provider"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// ResolverMode controls whether and how SpeakerResolver runs.
type ResolverMode string

const (
	ResolverOn   ResolverMode = "on"
	ResolverOff  ResolverMode = "off"
	ResolverAuto ResolverMode = "auto"
)

// QuoteAttribution is one backend-provided (quote text, speaker)
// association, keyed by the first 80 casefolded characters of the quote
// per SPEC_FULL.md §4.L.
type QuoteAttribution struct {
	QuoteText  string
	Speaker    string
	Confidence float64
}

// Backend is the narrow "attribute this chapter's quotes" contract a
// SpeakerResolver consults, replacing the original's whole-paragraph
// BookNLP/LLM segmentation contract with one scoped to quote attribution
// only.
type Backend interface {
	IsAvailable(ctx context.Context) bool
	Attribute(ctx context.Context, chapterText string) ([]QuoteAttribution, error)
}

// ResolutionStats reports what a resolution pass did.
type ResolutionStats struct {
	ChaptersProcessed  int
	UtterancesExamined int
	SpeakersResolved   int
	SpeakersUnchanged  int
	BackendUsed        bool
	BackendError       string
}

// SpeakerResolver improves "unknown" speaker attributions using an
// injected Backend, grounded on
// original_source/audiobooker/nlp/speaker_resolver.py::SpeakerResolver.
type SpeakerResolver struct {
	Mode    ResolverMode
	Backend Backend
}

// NewSpeakerResolver validates mode and returns a resolver. backend may be
// nil only when mode is "off".
func NewSpeakerResolver(mode ResolverMode, backend Backend) (*SpeakerResolver, error) {
	switch mode {
	case ResolverOn, ResolverOff, ResolverAuto:
	default:
		return nil, &InvalidModeError{Field: "booknlp_mode", Value: string(mode)}
	}
	return &SpeakerResolver{Mode: mode, Backend: backend}, nil
}

// ErrBackendRequired is returned by Resolve when mode is "on" but the
// backend reports itself unavailable.
type ErrBackendRequired struct{}

func (ErrBackendRequired) Error() string {
	return "speaker resolution mode is \"on\" but no backend is available"
}

// Resolve runs speaker resolution over compiled chapters in place,
// replacing "unknown" speakers wherever the backend attributes a
// matching quote.
func (r *SpeakerResolver) Resolve(ctx context.Context, chapters []types.Chapter) (ResolutionStats, error) {
	var stats ResolutionStats

	if r.Mode == ResolverOff {
		return stats, nil
	}
	available := r.Backend != nil && r.Backend.IsAvailable(ctx)
	if r.Mode == ResolverAuto && !available {
		return stats, nil
	}
	if r.Mode == ResolverOn && !available {
		return stats, ErrBackendRequired{}
	}

	stats.BackendUsed = true

	for i := range chapters {
		ch := &chapters[i]
		if len(ch.Utterances) == 0 {
			continue
		}
		stats.ChaptersProcessed++

		attributions, err := r.Backend.Attribute(ctx, ch.RawText)
		if err != nil {
			stats.BackendError = err.Error()
			continue
		}
		attrMap := buildAttributionMap(attributions)

		for j := range ch.Utterances {
			stats.UtterancesExamined++
			if ch.Utterances[j].Speaker != "unknown" {
				stats.SpeakersUnchanged++
				continue
			}
			if speaker, ok := attrMap[quoteKey(ch.Utterances[j].Text)]; ok {
				ch.Utterances[j].Speaker = speaker
				stats.SpeakersResolved++
			} else {
				stats.SpeakersUnchanged++
			}
		}
	}

	return stats, nil
}

func quoteKey(text string) string {
	key := strings.ToLower(strings.TrimSpace(text))
	if r := []rune(key); len(r) > 80 {
		key = string(r[:80])
	}
	return key
}

func buildAttributionMap(attributions []QuoteAttribution) map[string]string {
	m := make(map[string]string, len(attributions))
	for _, a := range attributions {
		if a.Speaker == "" || a.Confidence <= 0.3 {
			continue
		}
		m[quoteKey(a.QuoteText)] = a.Speaker
	}
	return m
}

// LLMBackend adapts a provider.LLMProvider into the narrower Backend
// contract, treating each returned segment as one attributed quote.
// KnownSpeakers, when set, is forwarded so the model reuses the casting
// table's identifiers instead of inventing its own.
type LLMBackend struct {
	Provider      provider.LLMProvider
	KnownSpeakers []string
}

// NewLLMBackend wraps an LLMProvider as a quote-attribution Backend.
func NewLLMBackend(p provider.LLMProvider) *LLMBackend {
	return &LLMBackend{Provider: p}
}

func (b *LLMBackend) IsAvailable(ctx context.Context) bool {
	return b.Provider != nil
}

func (b *LLMBackend) Attribute(ctx context.Context, chapterText string) ([]QuoteAttribution, error) {
	resp, err := b.Provider.Segment(ctx, provider.SegmentRequest{
		Text:          chapterText,
		KnownSpeakers: b.KnownSpeakers,
	})
	if err != nil {
		return nil, err
	}
	attributions := make([]QuoteAttribution, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		if seg.Person == "" {
			continue
		}
		attributions = append(attributions, QuoteAttribution{
			QuoteText:  seg.Text,
			Speaker:    seg.Person,
			Confidence: 0.6,
		})
	}
	return attributions, nil
}
