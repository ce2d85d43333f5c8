package provider

import (
	"context"
	"fmt"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// StubLLMProvider is an offline LLMProvider: every request comes back as
// one unattributed narrator segment, which the speaker resolver treats
// as "no improvement available".
type StubLLMProvider struct {
	name   string
	config types.LLMProviderConfig
}

// NewStubLLMProvider builds a stub from config (only the name is used).
func NewStubLLMProvider(config types.LLMProviderConfig) *StubLLMProvider {
	return &StubLLMProvider{name: config.Name, config: config}
}

func (s *StubLLMProvider) Name() string {
	return s.name
}

func (s *StubLLMProvider) Segment(ctx context.Context, req SegmentRequest) (*SegmentResponse, error) {
	return &SegmentResponse{
		Segments: []Segment{
			{
				Text:             req.Text,
				Person:           "narrator",
				Language:         "en",
				VoiceDescription: "neutral",
			},
		},
	}, nil
}

func (s *StubLLMProvider) Close() error {
	return nil
}

// StubTTSProvider is an offline TTSProvider producing placeholder audio
// bytes and a tiny fixed voice catalog.
type StubTTSProvider struct {
	name   string
	config types.TTSProviderConfig
}

// NewStubTTSProvider builds a stub from config (only the name is used).
func NewStubTTSProvider(config types.TTSProviderConfig) *StubTTSProvider {
	return &StubTTSProvider{name: config.Name, config: config}
}

func (s *StubTTSProvider) Name() string {
	return s.name
}

func (s *StubTTSProvider) Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	textPreview := req.Text
	if len(textPreview) > 10 {
		textPreview = textPreview[:10]
	}
	return &TTSResponse{
		AudioData: []byte(fmt.Sprintf("STUB_AUDIO_%s", textPreview)),
		Format:    "wav",
	}, nil
}

func (s *StubTTSProvider) ListVoices(ctx context.Context) ([]types.Voice, error) {
	return []types.Voice{
		{
			ID:          "stub-voice-1",
			Name:        "Stub Voice 1",
			Languages:   []string{"en"},
			Gender:      "neutral",
			Description: "A stub voice for testing",
		},
		{
			ID:          "stub-voice-2",
			Name:        "Stub Voice 2",
			Languages:   []string{"en", "es"},
			Gender:      "male",
			Accent:      "american",
			Description: "Another stub voice",
		},
	}, nil
}

func (s *StubTTSProvider) Close() error {
	return nil
}
