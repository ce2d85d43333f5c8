// Package hashkit computes the content-addressed hashes the render cache
// keys its entries on: a chapter's raw text, a casting table's
// voice/emotion assignments, and the audio-affecting subset of a
// project's render config. Ported from
// original_source/audiobooker/renderer/hash_utils.py.
package hashkit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// sha256Hex returns the lowercase hex SHA-256 digest of b.
func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// canonicalJSON marshals v with sorted object keys and no inserted
// whitespace, the Go equivalent of Python's
// json.dumps(v, sort_keys=True, separators=(",", ":")). encoding/json
// already sorts map keys and never adds whitespace outside of map/slice
// separators; the only adjustment needed is disabling HTML escaping so
// that ordinary text doesn't get mangled into \u unicode escapes.
func canonicalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder.Encode appends a trailing newline; the hash input shouldn't
	// include it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// sha256JSON hashes the canonical JSON encoding of v.
func sha256JSON(v interface{}) (string, error) {
	b, err := canonicalJSON(v)
	if err != nil {
		return "", err
	}
	return sha256Hex(b), nil
}

// Text hashes raw UTF-8 text directly, with no JSON envelope.
func Text(s string) string {
	return sha256Hex([]byte(s))
}

// TextHash hashes a chapter's raw source text. Two chapters with
// identical text hash identically regardless of title or index, so a
// renamed chapter whose prose hasn't changed still hits the cache. The
// cache looks entries up by chapter index, so a chapter moved to a
// different index does not.
func TextHash(chapter *types.Chapter) string {
	return Text(chapter.RawText)
}

// characterHashValue is the per-character fragment hashed by
// CastingHash: voice and emotion only. Description and line count are
// deliberately excluded, since neither affects the rendered audio.
func characterHashValue(c types.Character) map[string]interface{} {
	var emotion interface{}
	if c.DefaultEmotion != "" {
		emotion = c.DefaultEmotion
	}
	return map[string]interface{}{
		"voice":   c.VoiceID,
		"emotion": emotion,
	}
}

// CastingHash hashes the audio-affecting subset of a casting table: the
// voice and emotion assigned to every cast character, keyed by
// normalized name, plus the fallback voice. Changing a description or
// recasting the same voice to the same character leaves the hash
// unchanged; changing any character's voice ID or emotion changes the
// hash and so invalidates every chapter's cache entry, whether or not
// the chapter uses that speaker.
func CastingHash(table *types.CastingTable) (string, error) {
	characters := make(map[string]interface{}, len(table.Characters))
	for key, c := range table.Characters {
		characters[key] = characterHashValue(c)
	}
	obj := map[string]interface{}{
		"characters":        characters,
		"fallback_voice_id": table.FallbackVoiceID,
	}
	return sha256JSON(obj)
}

// RenderParamsHash hashes the render parameters that affect generated
// audio: sample rate and the narrator/dialogue pause durations.
// chapter_pause_ms and output_format are deliberately excluded since
// they apply only at assembly time, after every chapter WAV already
// exists, and never change what synthesis itself produced.
func RenderParamsHash(config *types.ProjectConfig) (string, error) {
	obj := map[string]interface{}{
		"sample_rate":       config.SampleRate,
		"narrator_pause_ms": config.NarratorPauseMs,
		"dialogue_pause_ms": config.DialoguePauseMs,
	}
	return sha256JSON(obj)
}
