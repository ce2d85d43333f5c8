// Package voice implements the voice-registry lookup named as an
// external collaborator in SPEC_FULL.md §1/§6: a small, swappable
// catalog of voice IDs the casting table and render orchestrator
// validate against. Grounded on the registration/lookup shape of
// TwelveReader's internal/provider/registry.go, repointed at a plain
// voice catalog instead of provider instances.
package voice

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// Registry is a process-wide, swappable catalog of voices a synthesizer
// backend exposes. RenderOrchestrator consults it (when
// validate_voices_on_render is set) before any synthesis begins.
type Registry struct {
	mu     sync.RWMutex
	voices map[string]types.Voice
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{voices: map[string]types.Voice{}}
}

// NewStaticRegistry returns a registry pre-populated from a fixed voice
// list, the shape a config-driven or locally bundled voice catalog
// takes when no live TTS backend is configured.
func NewStaticRegistry(voices []types.Voice) *Registry {
	r := NewRegistry()
	for _, v := range voices {
		r.Add(v)
	}
	return r
}

// Add registers or replaces a voice by ID.
func (r *Registry) Add(v types.Voice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voices[v.ID] = v
}

// Exists reports whether voiceID is known to the registry.
func (r *Registry) Exists(voiceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.voices[voiceID]
	return ok
}

// Get returns a voice by ID.
func (r *Registry) Get(voiceID string) (types.Voice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.voices[voiceID]
	return v, ok
}

// List returns every registered voice, sorted by ID.
func (r *Registry) List() []types.Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Voice, 0, len(r.voices))
	for _, v := range r.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of registered voices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.voices)
}

// VoiceLister is satisfied by any TTS capability able to enumerate its
// voice catalog; RefreshFrom uses it to repopulate a Registry from a
// live backend instead of a static list.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]types.Voice, error)
}

// RefreshFrom replaces the registry's contents with the voices reported
// by a live backend.
func (r *Registry) RefreshFrom(ctx context.Context, lister VoiceLister) error {
	voices, err := lister.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("refresh voice registry: %w", err)
	}
	r.mu.Lock()
	r.voices = make(map[string]types.Voice, len(voices))
	r.mu.Unlock()
	for _, v := range voices {
		r.Add(v)
	}
	return nil
}

// Missing returns the subset of voiceIDs not present in the registry, in
// input order with duplicates removed, matching the VoiceNotFound error's
// Missing field.
func (r *Registry) Missing(voiceIDs []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var missing []string
	for _, id := range voiceIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := r.voices[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
