package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type openAIClient struct {
	apiKey      string
	model       string
	base        string
	temperature *float64
	instruction string
	client      *http.Client
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) Revise(ctx context.Context, paragraph string) (string, error) {
	text, err := revisable(paragraph)
	if err != nil {
		return "", err
	}
	raw, err := c.chat(ctx, editorRole, buildRevisionPrompt(c.instruction, text))
	if err != nil {
		return "", err
	}
	return cleanRevision(raw, text), nil
}

// Draft sends prompt unchanged and returns the trimmed reply.
func (c *openAIClient) Draft(ctx context.Context, prompt string) (string, error) {
	prompt, err := draftable(prompt)
	if err != nil {
		return "", err
	}
	return c.chat(ctx, writerRole, prompt)
}

const (
	editorRole = "You are a careful copy editor."
	writerRole = "You are a helpful writing assistant."
)

func (c *openAIClient) chat(ctx context.Context, system, prompt string) (string, error) {
	temperature := 0.2
	if c.temperature != nil {
		temperature = *c.temperature
	}
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", unreachable(ProviderOpenAI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unreachable(ProviderOpenAI, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{
			Kind:       KindStatus,
			Provider:   ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Message:    clipText(string(body), 512),
		}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformed(ProviderOpenAI, "unable to parse reply", err)
	}
	if len(parsed.Choices) == 0 {
		return "", malformed(ProviderOpenAI, "openai API returned no choices", nil)
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", malformed(ProviderOpenAI, "openai API returned an empty message", nil)
	}
	return content, nil
}
