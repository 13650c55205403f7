package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "granite3.3"
	DefaultOpenAIBase  = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"
	// MaxParagraphRunes is the longest paragraph a client will send.
	MaxParagraphRunes = 20_000
)

var (
	// ErrTooLong is returned for paragraphs longer than MaxParagraphRunes.
	ErrTooLong = errors.New("paragraph too long to revise")
	// ErrEmptyPrompt is returned by Draft for a blank prompt.
	ErrEmptyPrompt = errors.New("draft prompt is empty")
)

const defaultLLMHTTPTimeout = 30 * time.Second

// Config describes how to build an LLM client.
type Config struct {
	Provider    string
	Model       string
	Endpoint    string
	APIKey      string
	Temperature *float64
	// Instruction replaces the default rewrite instruction placed before the paragraph.
	Instruction string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client rewrites a single paragraph.
type Client interface {
	Revise(ctx context.Context, paragraph string) (string, error)
	Name() string
}

// Drafter generates new text from a free-form prompt.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewDrafter builds a Drafter for the configured provider. Both providers
// supported by New can draft.
func NewDrafter(cfg Config) (Drafter, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	drafter, ok := client.(Drafter)
	if !ok {
		return nil, fmt.Errorf("provider %q cannot draft", cfg.Provider)
	}
	return drafter, nil
}

// New builds a client for the configured provider.
func New(cfg Config) (Client, error) {
	instruction := strings.TrimSpace(cfg.Instruction)
	if instruction == "" {
		instruction = defaultInstruction
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		host := strings.TrimRight(cfg.Endpoint, "/")
		if host == "" {
			host = DefaultOllamaHost
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOllamaModel
		}
		return &ollamaClient{
			host:        host,
			model:       model,
			temperature: cfg.Temperature,
			instruction: instruction,
			client:      pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
		}, nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		base := strings.TrimRight(cfg.Endpoint, "/")
		if base == "" {
			base = DefaultOpenAIBase
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClient{
			apiKey:      cfg.APIKey,
			model:       model,
			base:        base,
			temperature: cfg.Temperature,
			instruction: instruction,
			client:      pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout <= 0 {
		timeout = defaultLLMHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
