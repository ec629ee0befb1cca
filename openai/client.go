package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"menu-translation-service/models"
)

const chatCompletionsPath = "/v1/chat/completions"

type Message struct {
	Role    string        `json:"role"`
	Content []ContentItem `json:"content"`
}

type ContentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the OpenAI vision API to extract and translate menus.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a new OpenAI client. model is the default; individual
// calls may override it.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// TranslateMenuImage sends a menu photo to the vision model and returns the
// parsed translation. modelOverride selects a different model for this call
// when non-empty. Dishes the model mangled are dropped individually; the
// whole call fails only when nothing usable comes back.
func (c *Client) TranslateMenuImage(ctx context.Context, imageData []byte, mimeType, targetCurrency, modelOverride string) (*models.MenuTranslation, error) {
	model := c.model
	if modelOverride != "" {
		model = modelOverride
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	reqBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentItem{
					{
						Type: "text",
						Text: buildMenuPrompt(targetCurrency),
					},
					{
						Type:     "image_url",
						ImageURL: &ImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Service: "openai", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UpstreamError{Service: "openai", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamError{
			Service: "openai",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 256)),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &models.MalformedResponseError{Service: "openai", Payload: string(body), Err: err}
	}

	if len(chatResp.Choices) == 0 {
		return nil, &models.MalformedResponseError{
			Service: "openai",
			Payload: string(body),
			Err:     fmt.Errorf("no choices in response"),
		}
	}

	content, err := extractJSONFromMarkdown(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, &models.MalformedResponseError{
			Service: "openai",
			Payload: chatResp.Choices[0].Message.Content,
			Err:     err,
		}
	}

	return parseTranslation(content, targetCurrency)
}

// extractJSONFromMarkdown extracts JSON from markdown code blocks
func extractJSONFromMarkdown(content string) (string, error) {
	jsonRegex := regexp.MustCompile("```(?:json|JSON)?\\s*\\n?([\\s\\S]*?)\\n?```")
	matches := jsonRegex.FindStringSubmatch(content)

	if len(matches) > 1 {
		return strings.TrimSpace(matches[1]), nil
	}

	// No code block; take the outermost brace pair.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		return content[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in model output")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
