package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) *ollamaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &ollamaClient{
		host:        server.URL,
		model:       "granite3.3",
		instruction: defaultInstruction,
		client:      server.Client(),
	}
}

func TestOllamaClientRevise(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model   string         `json:"model"`
			Prompt  string         `json:"prompt"`
			Stream  bool           `json:"stream"`
			Options map[string]any `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "granite3.3" {
			t.Fatalf("expected model granite3.3, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "Paragraph:\nTheir going too the store.") {
			t.Fatalf("prompt missing paragraph: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		if payload.Options != nil {
			t.Fatalf("options should be omitted without a temperature, got %v", payload.Options)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"  They're going to the store.\n","done":true}`))
	})

	result, err := client.Revise(context.Background(), "Their going too the store.")
	if err != nil {
		t.Fatalf("revise failed: %v", err)
	}
	if result != "They're going to the store." {
		t.Fatalf("unexpected revise result: %q", result)
	}
}

func TestOllamaClientSendsTemperature(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Options struct {
				Temperature float64 `json:"temperature"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Options.Temperature != 0.3 {
			t.Fatalf("expected temperature 0.3, got %v", payload.Options.Temperature)
		}
		w.Write([]byte(`{"response":"Rewritten text.","done":true}`))
	})
	temp := 0.3
	client.temperature = &temp

	if _, err := client.Revise(context.Background(), "Original text."); err != nil {
		t.Fatalf("revise failed: %v", err)
	}
}

func TestOllamaClientClassifiesFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    ErrorKind
		message string
	}{
		{name: "status with ollama error", status: http.StatusNotFound, body: `{"error":"model 'granite3.3' not found"}`, kind: KindStatus, message: "model 'granite3.3' not found"},
		{name: "status with plain body", status: http.StatusInternalServerError, body: "boom", kind: KindStatus, message: "boom"},
		{name: "unparsable body", status: http.StatusOK, body: "not json", kind: KindMalformed},
		{name: "missing response field", status: http.StatusOK, body: `{"done":true}`, kind: KindMalformed},
		{name: "empty response", status: http.StatusOK, body: `{"response":"   ","done":true}`, kind: KindMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := client.Revise(context.Background(), "Some paragraph.")
			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("expected *ServiceError, got %T (%v)", err, err)
			}
			if svcErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, svcErr.Kind)
			}
			if tc.message != "" && !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("error %q missing %q", err.Error(), tc.message)
			}
		})
	}
}

func TestOllamaClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close()

	client := &ollamaClient{host: host, model: "m", instruction: defaultInstruction, client: &http.Client{Timeout: time.Second}}
	_, err := client.Revise(context.Background(), "Some paragraph.")
	if KindOf(err) != KindUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestOllamaClientTimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Revise(ctx, "Some paragraph.")
	if KindOf(err) != KindUnreachable {
		t.Fatalf("expected unreachable on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestOllamaClientRejectsEmptyParagraph(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty paragraph")
	})
	if _, err := client.Revise(context.Background(), "  \n "); err == nil {
		t.Fatal("expected error for empty paragraph")
	}
}

func TestOllamaClientRejectsOverlongParagraph(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an overlong paragraph")
	})
	long := strings.Repeat("a", MaxParagraphRunes) + " tail sentence."
	_, err := client.Revise(context.Background(), long)
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestOllamaClientDraftSendsPromptVerbatim(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Prompt != "Write a closing line." {
			t.Fatalf("unexpected prompt %q", payload.Prompt)
		}
		w.Write([]byte(`{"response":"\n  See you soon.  \n","done":true}`))
	})

	got, err := client.Draft(context.Background(), "  Write a closing line.\n")
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if got != "See you soon." {
		t.Fatalf("unexpected draft %q", got)
	}
}

func TestOllamaClientDraftRejectsBlankPrompt(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a blank prompt")
	})
	if _, err := client.Draft(context.Background(), " \t"); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}
