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

type ollamaClient struct {
	host        string
	model       string
	temperature *float64
	instruction string
	client      *http.Client
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) Revise(ctx context.Context, paragraph string) (string, error) {
	text, err := revisable(paragraph)
	if err != nil {
		return "", err
	}
	raw, err := c.generate(ctx, buildRevisionPrompt(c.instruction, text))
	if err != nil {
		return "", err
	}
	return cleanRevision(raw, text), nil
}

// Draft sends prompt unchanged and returns the trimmed reply.
func (c *ollamaClient) Draft(ctx context.Context, prompt string) (string, error) {
	prompt, err := draftable(prompt)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, prompt)
}

func (c *ollamaClient) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	if c.temperature != nil {
		payload["options"] = map[string]any{"temperature": *c.temperature}
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", unreachable(ProviderOllama, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unreachable(ProviderOllama, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{
			Kind:       KindStatus,
			Provider:   ProviderOllama,
			StatusCode: resp.StatusCode,
			Message:    ollamaErrorDetail(resp, body),
		}
	}

	var parsed struct {
		Response *string `json:"response"`
		Done     bool    `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformed(ProviderOllama, "unable to parse reply", err)
	}
	if parsed.Response == nil {
		return "", malformed(ProviderOllama, "reply lacks a response field", nil)
	}
	if strings.TrimSpace(*parsed.Response) == "" {
		return "", malformed(ProviderOllama, "ollama returned an empty response", nil)
	}
	return strings.TrimSpace(*parsed.Response), nil
}

// ollamaErrorDetail prefers Ollama's {"error": "..."} message, then the raw
// body, then the status text.
func ollamaErrorDetail(resp *http.Response, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return clipText(text, 512)
	}
	return http.StatusText(resp.StatusCode)
}
