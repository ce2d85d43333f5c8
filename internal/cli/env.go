// Package cli wires cmd/audiobooker's cobra command tree to the domain
// packages (project, render, archive, bundle, health), following the
// Env-as-injection-point idiom used throughout the example pack's CLI
// modules: commands take an *Env instead of reaching for package-level
// globals, so tests can substitute fakes.
package cli

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/unalkalkan/audiobooker/internal/config"
	"github.com/unalkalkan/audiobooker/internal/nlp"
	"github.com/unalkalkan/audiobooker/internal/provider"
	"github.com/unalkalkan/audiobooker/internal/storage"
	"github.com/unalkalkan/audiobooker/internal/synth"
	"github.com/unalkalkan/audiobooker/internal/voice"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// Env holds injectable dependencies shared by every command.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// ConfigPath is the path given to --config; empty means "use
	// built-in defaults, no file on disk required" per SPEC_FULL.md §6's
	// "no required environment variables" guarantee.
	ConfigPath string
}

// NewEnv returns an Env wired to real stdout/stderr/os.Getenv.
func NewEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

// LoadConfig reads the configured YAML file, or returns built-in
// defaults when ConfigPath is empty.
func (e *Env) LoadConfig() (*types.Config, error) {
	if e.ConfigPath == "" {
		return defaultConfig(), nil
	}
	return config.Load(e.ConfigPath)
}

func defaultConfig() *types.Config {
	return &types.Config{
		Storage: types.StorageConfig{
			Adapter: "local",
			Local:   types.LocalStorageOpts{BasePath: "."},
		},
		Pipeline: types.PipelineConfig{
			WorkerPoolSize: 4,
			MaxRetries:     3,
		},
	}
}

// BuildSynthesizer picks the first enabled, fully-configured TTS provider
// entry and wraps it as a per-utterance synthesizer; with none configured
// it falls back to the stub synthesizer so the CLI is runnable end to end
// with no external services.
func BuildSynthesizer(cfg *types.Config) (synth.Synthesizer, error) {
	tts, err := configuredTTSProvider(cfg)
	if err != nil {
		return nil, err
	}
	if tts == nil {
		return synth.NewStubSynthesizer(), nil
	}
	return synth.NewProviderSynthesizer(tts)
}

// configuredTTSProvider returns the first enabled TTS provider entry with
// an endpoint and model, or nil when none is configured.
func configuredTTSProvider(cfg *types.Config) (provider.TTSProvider, error) {
	for _, ttsCfg := range cfg.Providers.TTS {
		if !ttsCfg.Enabled || ttsCfg.Endpoint == "" || ttsCfg.Options["model"] == "" {
			continue
		}
		return provider.NewOpenAITTSProvider(ttsCfg)
	}
	return nil, nil
}

// BuildNLPBackend returns the quote-attribution backend for the speaker
// resolver: the first enabled, fully-configured LLM provider entry, or
// nil when none is configured (the resolver's auto mode then no-ops).
func BuildNLPBackend(cfg *types.Config) (nlp.Backend, error) {
	for _, llmCfg := range cfg.Providers.LLM {
		if !llmCfg.Enabled || llmCfg.Endpoint == "" || llmCfg.Model == "" {
			continue
		}
		llm, err := provider.NewOpenAILLMProvider(llmCfg)
		if err != nil {
			return nil, err
		}
		return nlp.NewLLMBackend(llm), nil
	}
	return nil, nil
}

// BuildVoiceRegistry returns the voice registry renders validate against:
// refreshed from the configured TTS backend's live catalog when one is
// available, else the built-in static catalog. A failed refresh degrades
// to the static catalog with a warning rather than blocking the render.
func BuildVoiceRegistry(ctx context.Context, cfg *types.Config) *voice.Registry {
	registry := DefaultVoiceRegistry()
	tts, err := configuredTTSProvider(cfg)
	if err != nil || tts == nil {
		return registry
	}
	defer tts.Close()
	if err := registry.RefreshFrom(ctx, tts); err != nil {
		log.Printf("VOICE_REGISTRY: live catalog unavailable (%v), using built-in catalog", err)
		return DefaultVoiceRegistry()
	}
	return registry
}

// BuildAssembler prefers the ffmpeg-backed assembler when ffmpeg responds
// on PATH, and otherwise falls back to the dependency-free concatenating
// assembler so render/bundle commands still work in an environment with
// no ffmpeg installed.
func BuildAssembler(ctx context.Context) synth.Assembler {
	ff := synth.NewFFmpegAssembler()
	if ff.Available(ctx) {
		return ff
	}
	return synth.ConcatAssembler{}
}

// BuildStorageAdapter constructs the configured storage.Adapter for the
// push/pull archive commands.
func BuildStorageAdapter(cfg *types.Config) (storage.Adapter, error) {
	return storage.NewAdapter(cfg.Storage)
}

// DefaultVoiceRegistry returns a registry seeded from the curated voice
// catalog internal/voice.Suggester draws its suggestions from, used when no
// live TTS backend voice listing is configured.
func DefaultVoiceRegistry() *voice.Registry {
	return voice.NewStaticRegistry([]types.Voice{
		{ID: "af_heart", Name: "Heart", Gender: "female", Accent: "american", Description: "calm narrator, warm, default"},
		{ID: "af_aoede", Name: "Aoede", Gender: "female", Accent: "american", Description: "expressive narrator, elegant"},
		{ID: "af_jessica", Name: "Jessica", Gender: "female", Accent: "american", Description: "neutral dialogue, clear"},
		{ID: "af_sky", Name: "Sky", Gender: "female", Accent: "american", Description: "expressive, young, energetic"},
		{ID: "am_eric", Name: "Eric", Gender: "male", Accent: "american", Description: "neutral dialogue, clear"},
		{ID: "am_fenrir", Name: "Fenrir", Gender: "male", Accent: "american", Description: "powerful narrator, deep, commanding"},
		{ID: "am_liam", Name: "Liam", Gender: "male", Accent: "american", Description: "neutral dialogue, young"},
		{ID: "am_onyx", Name: "Onyx", Gender: "male", Accent: "american", Description: "calm narrator, deep"},
		{ID: "bf_alice", Name: "Alice", Gender: "female", Accent: "british", Description: "neutral dialogue, refined"},
		{ID: "bf_emma", Name: "Emma", Gender: "female", Accent: "british", Description: "expressive dialogue, warm"},
		{ID: "bf_isabella", Name: "Isabella", Gender: "female", Accent: "british", Description: "calm narrator, gentle"},
		{ID: "bm_george", Name: "George", Gender: "male", Accent: "british", Description: "calm narrator, authoritative"},
		{ID: "bm_lewis", Name: "Lewis", Gender: "male", Accent: "british", Description: "neutral dialogue, clear"},
	})
}
