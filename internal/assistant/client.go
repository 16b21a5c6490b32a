package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"greencycle/pkg/types"
)

// systemPrompt keeps the assistant on e-waste topics. It travels with
// every request; the hosted model keeps no state between calls.
const systemPrompt = `You are an expert in e-waste management and recycling, with a focus on sustainable solutions.
Your responses should be tailored to help with:
- The identification and collection of electronic waste
- Safe handling and segregation of e-waste items
- Sustainable and efficient ways to handle e-waste in urban environments
- How pickup scheduling, collection, and reward points work
- Messages should not exceed a 50 word limit
- Importantly, do not answer anything other than e-waste queries

Always maintain a professional, insightful, and helpful tone.`

// Client calls a hosted generative-language API. Any failure, from
// transport errors to unexpected payloads, surfaces as
// types.ErrAssistantUnavailable so the caller can show one generic
// message.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Ask sends a single prompt and returns the model's reply text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", types.ErrValidation)
	}

	payload := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: fmt.Sprintf("%s\n\nUser Query: %s", systemPrompt, prompt)}}},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: 500,
			Temperature:     0.7,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAssistantUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAssistantUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: upstream returned status %d", types.ErrAssistantUnavailable, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAssistantUnavailable, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", types.ErrAssistantUnavailable)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
