// Package zhipu implements the llm.Client interface against the Zhipu AI
// (bigmodel.cn) chat/completions API used by the GLM-4.5V vision model.
package zhipu

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

const defaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type thinking struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Thinking    *thinking `json:"thinking,omitempty"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client calls the Zhipu AI chat/completions API. GLM vision models wrap
// structured answers in <|begin_of_box|>/<|end_of_box|> tokens; the parser
// package strips those downstream.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Zhipu client against the public API.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, timeout)
}

// NewClientWithBaseURL creates a Zhipu client against a custom endpoint.
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SourceName() string {
	return "GLM"
}

// GenerateWithImage sends the prompt plus a data-URL encoded image to one
// model with thinking mode enabled.
func (c *Client) GenerateWithImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (*llm.Result, error) {
	parts := []contentPart{{Type: "text", Text: prompt}}
	if len(image) > 0 {
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
	}
	return c.chat(ctx, chatRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: parts}},
		Thinking:    &thinking{Type: "enabled"},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
}

// GenerateText sends a text-only prompt to one model.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (*llm.Result, error) {
	return c.chat(ctx, chatRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: []contentPart{{Type: "text", Text: prompt}}}},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
}

func (c *Client) chat(ctx context.Context, body chatRequest) (*llm.Result, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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

	var cr chatResponse
	_ = json.Unmarshal(bodyBytes, &cr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(bodyBytes)
		if cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no choices in response")
	}

	var usage llm.Usage
	if cr.Usage != nil {
		usage = llm.Usage{
			PromptTokens:     cr.Usage.PromptTokens,
			CompletionTokens: cr.Usage.CompletionTokens,
			TotalTokens:      cr.Usage.TotalTokens,
		}
	}

	return &llm.Result{Text: cr.Choices[0].Message.Content, Usage: usage}, nil
}
