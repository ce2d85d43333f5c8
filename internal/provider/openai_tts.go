package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/unalkalkan/audiobooker/pkg/types"
)

// OpenAITTSProvider synthesizes speech via an OpenAI-compatible
// audio/speech endpoint and lists the backend's voice catalog from its
// voices endpoint.
type OpenAITTSProvider struct {
	name       string
	config     types.TTSProviderConfig
	httpClient *http.Client
	model      string
}

// NewOpenAITTSProvider builds a provider from config. Endpoint is
// required, as is options.model; options.timeout (seconds) overrides the
// default, which is generous because synthesis runs longer than chat
// calls.
func NewOpenAITTSProvider(config types.TTSProviderConfig) (*OpenAITTSProvider, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for OpenAI TTS provider")
	}

	model, ok := config.Options["model"]
	if !ok || model == "" {
		return nil, fmt.Errorf("model is required for OpenAI TTS provider (set in options.model)")
	}

	timeout := 300 * time.Second
	if timeoutStr, ok := config.Options["timeout"]; ok {
		var timeoutSec int
		if _, err := fmt.Sscanf(timeoutStr, "%d", &timeoutSec); err == nil && timeoutSec > 0 {
			timeout = time.Duration(timeoutSec) * time.Second
		}
	}

	return &OpenAITTSProvider{
		name:       config.Name,
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		model:      model,
	}, nil
}

func (o *OpenAITTSProvider) Name() string {
	return o.name
}

// Synthesize converts one utterance to audio. The emotion label in
// VoiceDescription rides along as the API's delivery instructions; the
// endpoint infers language from the input text itself.
func (o *OpenAITTSProvider) Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	apiReq := ttsAPIRequest{
		Model: o.model,
		Input: req.Text,
		Voice: req.VoiceID,
	}
	if req.VoiceDescription != "" {
		apiReq.Instructions = req.VoiceDescription
	}

	audioData, err := o.callTTSAPI(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call TTS API: %w", err)
	}

	return &TTSResponse{AudioData: audioData, Format: "mp3"}, nil
}

// ListVoices fetches the backend's voice catalog, normalizing entries
// that report a single "language" string instead of a "languages" list.
func (o *OpenAITTSProvider) ListVoices(ctx context.Context) ([]types.Voice, error) {
	endpoint := strings.TrimSuffix(o.config.Endpoint, "/") + "/voices"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if o.model != "" {
		q := httpReq.URL.Query()
		q.Add("model", o.model)
		httpReq.URL.RawQuery = q.Encode()
	}
	if o.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	log.Printf("[TTS-%s] GET %s", o.name, httpReq.URL.String())

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ttsAPIErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp voicesAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	voices := make([]types.Voice, 0, len(apiResp.Data))
	for _, v := range apiResp.Data {
		languages := v.Languages
		if len(languages) == 0 && v.Language != "" {
			languages = []string{v.Language}
		}
		voices = append(voices, types.Voice{
			ID:          v.ID,
			Name:        v.Name,
			Languages:   languages,
			Gender:      v.Gender,
			Accent:      v.Accent,
			Description: v.Description,
		})
	}

	log.Printf("[TTS-%s] voice catalog: %d voices", o.name, len(voices))
	return voices, nil
}

func (o *OpenAITTSProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

type ttsAPIRequest struct {
	Model        string `json:"model"`
	Input        string `json:"input"`
	Voice        string `json:"voice"`
	Instructions string `json:"instructions,omitempty"`
}

type ttsAPIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

type voicesAPIResponse struct {
	Object string      `json:"object"`
	Data   []voiceData `json:"data"`
}

type voiceData struct {
	ID          string   `json:"id"`
	Object      string   `json:"object"`
	Name        string   `json:"name"`
	Language    string   `json:"language"`
	Languages   []string `json:"languages"`
	Gender      string   `json:"gender"`
	Accent      string   `json:"accent"`
	Description string   `json:"description"`
}

func (o *OpenAITTSProvider) callTTSAPI(ctx context.Context, req ttsAPIRequest) ([]byte, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(o.config.Endpoint, "/") + "/audio/speech"
	log.Printf("[TTS-%s] POST %s voice=%s input=%d chars", o.name, endpoint, req.Voice, len(req.Input))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	start := time.Now()
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ttsAPIErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("[TTS-%s] %d %s in %v, audio=%d bytes", o.name, resp.StatusCode, resp.Status,
		time.Since(start).Round(time.Millisecond), len(body))
	return body, nil
}
