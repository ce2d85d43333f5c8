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

// OpenAILLMProvider attributes dialogue via an OpenAI-compatible chat
// completions endpoint.
type OpenAILLMProvider struct {
	name       string
	config     types.LLMProviderConfig
	httpClient *http.Client
}

// NewOpenAILLMProvider builds a provider from config. Endpoint and model
// are required; options may carry "timeout" (seconds) and "temperature".
func NewOpenAILLMProvider(config types.LLMProviderConfig) (*OpenAILLMProvider, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for OpenAI LLM provider")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required for OpenAI LLM provider")
	}

	timeout := 300 * time.Second
	if timeoutStr, ok := config.Options["timeout"]; ok {
		var timeoutSec int
		if _, err := fmt.Sscanf(timeoutStr, "%d", &timeoutSec); err == nil && timeoutSec > 0 {
			timeout = time.Duration(timeoutSec) * time.Second
		}
	}

	return &OpenAILLMProvider{
		name:       config.Name,
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (o *OpenAILLMProvider) Name() string {
	return o.name
}

// Segment asks the model to attribute every quoted line in the prose to
// a speaker, then parses the JSON segment list out of its reply.
func (o *OpenAILLMProvider) Segment(ctx context.Context, req SegmentRequest) (*SegmentResponse, error) {
	content, err := o.callChatCompletion(ctx, []message{
		{Role: "system", Content: attributionSystemPrompt},
		{Role: "user", Content: buildAttributionPrompt(req)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call LLM API: %w", err)
	}

	segments, err := parseAttributionResponse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	return &SegmentResponse{Segments: segments}, nil
}

func (o *OpenAILLMProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

const attributionSystemPrompt = `You attribute dialogue in prose fiction to its speakers.
You will be given a list of known speakers for the book.
Always reuse the exact identifiers from that list when they match, including for quoted speech and internal thoughts.
Do not invent variants by changing spacing, casing, or adding suffixes.
Only introduce a new speaker when none of the known speakers fit; use a concise lowercase identifier when you do.
Return only valid JSON in the requested format.`

// buildAttributionPrompt renders one chapter's attribution request: the
// known cast, optional surrounding context, the prose itself, and the
// exact output shape expected back.
func buildAttributionPrompt(req SegmentRequest) string {
	var sb strings.Builder

	sb.WriteString("Attribute each quoted line of dialogue in the text below to its speaker.\n")
	sb.WriteString("Text that nobody speaks aloud belongs to \"narrator\".\n\n")

	if len(req.KnownSpeakers) > 0 {
		sb.WriteString("Known speakers (reuse these identifiers exactly):\n")
		for _, speaker := range req.KnownSpeakers {
			fmt.Fprintf(&sb, "- %s\n", speaker)
		}
		sb.WriteString("\n")
	}

	if len(req.ContextBefore) > 0 {
		sb.WriteString("Preceding context:\n")
		for _, c := range req.ContextBefore {
			fmt.Fprintf(&sb, "> %s\n", c)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Text:\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n\n")

	if len(req.ContextAfter) > 0 {
		sb.WriteString("Following context:\n")
		for _, c := range req.ContextAfter {
			fmt.Fprintf(&sb, "> %s\n", c)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Respond with a JSON array of segments, one per attributed run of text:\n")
	sb.WriteString(`[{"text": "the quoted words without quote marks", "person": "speaker id", "language": "en", "voice_description": "tone such as angry, whisper, neutral"}]`)
	sb.WriteString("\n\nProvide ONLY the JSON array, no other text.")

	return sb.String()
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (o *OpenAILLMProvider) callChatCompletion(ctx context.Context, messages []message) (string, error) {
	reqBody := chatCompletionRequest{
		Model:    o.config.Model,
		Messages: messages,
	}
	if tempStr, ok := o.config.Options["temperature"]; ok {
		var temp float64
		if _, err := fmt.Sscanf(tempStr, "%f", &temp); err == nil {
			reqBody.Temperature = temp
		} else {
			log.Printf("[LLM-%s] ignoring unparseable temperature %q", o.name, tempStr)
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(o.config.Endpoint, "/") + "/chat/completions"
	log.Printf("[LLM-%s] POST %s model=%s messages=%d", o.name, endpoint, o.config.Model, len(messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	start := time.Now()
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp chatCompletionResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}

	log.Printf("[LLM-%s] %d %s in %v, tokens=%d, finish=%s", o.name, resp.StatusCode, resp.Status,
		time.Since(start).Round(time.Millisecond), apiResp.Usage.TotalTokens, apiResp.Choices[0].FinishReason)

	return apiResp.Choices[0].Message.Content, nil
}

// parseAttributionResponse extracts the JSON segment array from the
// model's reply. A reply with no parseable array degrades to a single
// narrator segment rather than failing: attribution is a refinement
// pass, and the resolver treats an unattributed quote as unchanged.
func parseAttributionResponse(response string) ([]Segment, error) {
	response = strings.TrimSpace(response)

	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")
	if startIdx == -1 || endIdx == -1 || startIdx >= endIdx {
		return []Segment{narratorSegment(response)}, nil
	}

	type rawSegment struct {
		Text             string `json:"text"`
		Person           string `json:"person"`
		Language         string `json:"language"`
		VoiceDescription string `json:"voice_description"`
	}

	var raw []rawSegment
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &raw); err != nil {
		return []Segment{narratorSegment(response)}, nil
	}

	segments := make([]Segment, 0, len(raw))
	for _, rs := range raw {
		seg := Segment{
			Text:             rs.Text,
			Person:           rs.Person,
			Language:         rs.Language,
			VoiceDescription: rs.VoiceDescription,
		}
		if seg.Person == "" {
			seg.Person = "narrator"
		}
		if seg.Language == "" {
			seg.Language = "en"
		}
		if seg.VoiceDescription == "" {
			seg.VoiceDescription = "neutral"
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func narratorSegment(text string) Segment {
	return Segment{Text: text, Person: "narrator", Language: "en", VoiceDescription: "neutral"}
}
