package provider

import (
	"fmt"
	"sync"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// Registry holds the constructed provider instances for one process,
// keyed by configured name.
type Registry struct {
	llmProviders map[string]LLMProvider
	ttsProviders map[string]TTSProvider
	mu           sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		llmProviders: make(map[string]LLMProvider),
		ttsProviders: make(map[string]TTSProvider),
	}
}

// RegisterLLM adds an LLM provider; duplicate names are an error.
func (r *Registry) RegisterLLM(provider LLMProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.llmProviders[name]; exists {
		return fmt.Errorf("LLM provider already registered: %s", name)
	}
	r.llmProviders[name] = provider
	return nil
}

// RegisterTTS adds a TTS provider; duplicate names are an error.
func (r *Registry) RegisterTTS(provider TTSProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.ttsProviders[name]; exists {
		return fmt.Errorf("TTS provider already registered: %s", name)
	}
	r.ttsProviders[name] = provider
	return nil
}

// GetLLM retrieves an LLM provider by name.
func (r *Registry) GetLLM(name string) (LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.llmProviders[name]
	if !exists {
		return nil, fmt.Errorf("LLM provider not found: %s", name)
	}
	return provider, nil
}

// GetTTS retrieves a TTS provider by name.
func (r *Registry) GetTTS(name string) (TTSProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.ttsProviders[name]
	if !exists {
		return nil, fmt.Errorf("TTS provider not found: %s", name)
	}
	return provider, nil
}

// ListLLM returns all registered LLM provider names.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.llmProviders))
	for name := range r.llmProviders {
		names = append(names, name)
	}
	return names
}

// ListTTS returns all registered TTS provider names.
func (r *Registry) ListTTS() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ttsProviders))
	for name := range r.ttsProviders {
		names = append(names, name)
	}
	return names
}

// Close closes every registered provider, collecting errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, provider := range r.llmProviders {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close LLM provider %s: %w", name, err))
		}
	}
	for name, provider := range r.ttsProviders {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close TTS provider %s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}
	return nil
}

// InitializeProviders constructs provider instances from configuration.
// An entry with an endpoint (and model) gets the real OpenAI-compatible
// client; an enabled entry without one gets the offline stub so the rest
// of the pipeline still has a provider to talk to.
func (r *Registry) InitializeProviders(cfg types.ProvidersConfig) error {
	for _, llmCfg := range cfg.LLM {
		if !llmCfg.Enabled {
			continue
		}
		var provider LLMProvider
		var err error
		if llmCfg.Endpoint != "" && llmCfg.Model != "" {
			provider, err = NewOpenAILLMProvider(llmCfg)
			if err != nil {
				return fmt.Errorf("failed to create OpenAI LLM provider %s: %w", llmCfg.Name, err)
			}
		} else {
			provider = NewStubLLMProvider(llmCfg)
		}
		if err := r.RegisterLLM(provider); err != nil {
			return err
		}
	}

	for _, ttsCfg := range cfg.TTS {
		if !ttsCfg.Enabled {
			continue
		}
		var provider TTSProvider
		var err error
		if ttsCfg.Endpoint != "" && ttsCfg.Options["model"] != "" {
			provider, err = NewOpenAITTSProvider(ttsCfg)
			if err != nil {
				return fmt.Errorf("failed to create OpenAI TTS provider %s: %w", ttsCfg.Name, err)
			}
		} else {
			provider = NewStubTTSProvider(ttsCfg)
		}
		if err := r.RegisterTTS(provider); err != nil {
			return err
		}
	}

	return nil
}
