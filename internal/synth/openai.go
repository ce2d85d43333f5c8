package synth

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/provider"
)

// scriptLinePattern parses one line of the "[Sn:speaker] (emotion) text"
// format emitted by dialogue.UtterancesToScript. The emotion group is
// optional, matching lines synthesized without an inferred emotion.
var scriptLinePattern = regexp.MustCompile(`^\[(S\d+):([^\]]+)\]\s*(?:\(([^)]+)\)\s*)?(.*)$`)

type scriptLine struct {
	speakerKey string
	emotion    string
	text       string
}

func parseScript(script string) []scriptLine {
	var lines []scriptLine
	for _, raw := range strings.Split(script, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		m := scriptLinePattern.FindStringSubmatch(raw)
		if m == nil {
			lines = append(lines, scriptLine{text: raw})
			continue
		}
		lines = append(lines, scriptLine{speakerKey: m[2], emotion: m[3], text: m[4]})
	}
	return lines
}

// ProviderSynthesizer renders a chapter script by delegating one TTS
// call per line to a provider.TTSProvider and concatenating the
// resulting audio bytes. The per-utterance contract exists because
// OpenAI-compatible TTS APIs take a single voice per call, unlike the
// whole-script multi-voice engine the Synthesizer interface otherwise
// anticipates. Each line's emotion label rides along as the provider's
// voice description.
type ProviderSynthesizer struct {
	TTS provider.TTSProvider
}

// NewProviderSynthesizer wraps a TTS provider as a chapter synthesizer.
func NewProviderSynthesizer(tts provider.TTSProvider) (*ProviderSynthesizer, error) {
	if tts == nil {
		return nil, fmt.Errorf("a TTS provider is required")
	}
	return &ProviderSynthesizer{TTS: tts}, nil
}

// Synthesize renders each script line through the TTS provider using the
// voice mapped to its speaker key, writing the concatenated audio bytes
// to outputPath. Duration is estimated from input word count since the
// provider's response carries no duration.
func (s *ProviderSynthesizer) Synthesize(ctx context.Context, script string, voices map[string]string, outputPath string, progress ProgressFunc) (SynthesisResult, error) {
	lines := parseScript(script)
	if len(lines) == 0 {
		return SynthesisResult{}, &apperr.SynthesizerFailure{Underlying: fmt.Errorf("empty script")}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return SynthesisResult{}, &apperr.SynthesizerFailure{Underlying: err}
	}
	defer out.Close()

	var warnings []string
	wordCount := 0

	for i, line := range lines {
		voiceID, ok := voices[line.speakerKey]
		if !ok || voiceID == "" {
			warnings = append(warnings, fmt.Sprintf("no voice mapped for speaker %q, skipping", line.speakerKey))
			continue
		}

		resp, err := s.TTS.Synthesize(ctx, provider.TTSRequest{
			Text:             line.text,
			VoiceID:          voiceID,
			VoiceDescription: line.emotion,
		})
		if err != nil {
			preview := line.text
			if len(preview) > 80 {
				preview = preview[:80]
			}
			return SynthesisResult{}, &apperr.SynthesizerFailure{
				UtteranceIndex: i,
				Speaker:        line.speakerKey,
				VoiceID:        voiceID,
				TextPreview:    preview,
				Underlying:     err,
			}
		}
		if _, err := out.Write(resp.AudioData); err != nil {
			return SynthesisResult{}, &apperr.SynthesizerFailure{Underlying: err}
		}

		wordCount += len(strings.Fields(line.text))
		if progress != nil {
			progress(i+1, len(lines))
		}
	}

	return SynthesisResult{
		AudioPath:       outputPath,
		DurationSeconds: float64(wordCount) / 150.0 * 60.0,
		Warnings:        warnings,
	}, nil
}
