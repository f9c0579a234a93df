package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"photo-location-service/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1"

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client calls the Google Gemini generateContent API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Gemini client against the public API.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, timeout)
}

// NewClientWithBaseURL creates a Gemini client against a custom endpoint,
// used by tests to point at a fake upstream.
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// GenerateWithImage sends the prompt plus inline image bytes to one model.
func (c *Client) GenerateWithImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (*llm.Result, error) {
	parts := []part{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image),
			},
		})
	}
	return c.generateContent(ctx, model, geminiRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: generationConfig{Temperature: 0.1, MaxOutputTokens: 2000},
	})
}

// GenerateText sends a text-only prompt to one model.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (*llm.Result, error) {
	return c.generateContent(ctx, model, geminiRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.7, MaxOutputTokens: 1500},
	})
}

func (c *Client) generateContent(ctx context.Context, model string, body geminiRequest) (*llm.Result, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var gr geminiResponse
	_ = json.Unmarshal(bodyBytes, &gr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(bodyBytes)
		if gr.Error != nil && gr.Error.Message != "" {
			msg = gr.Error.Message
		}
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(gr.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	var usage llm.Usage
	if gr.UsageMetadata != nil {
		usage = llm.Usage{
			PromptTokens:     gr.UsageMetadata.PromptTokenCount,
			CompletionTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gr.UsageMetadata.TotalTokenCount,
		}
	}

	for _, p := range gr.Candidates[0].Content.Parts {
		if p.Text != "" {
			return &llm.Result{Text: p.Text, Usage: usage}, nil
		}
	}
	return nil, fmt.Errorf("no text part in response")
}
