package llm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const defaultInstruction = "You are an expert copy editor. Rewrite the paragraph below to improve clarity, grammar, and flow.\n" +
	"Preserve its meaning, tone, language, and any markdown formatting (headings, lists, links, emphasis).\n" +
	"Return ONLY the rewritten paragraph, with no preamble, quotes, or commentary."

var preambleRe = regexp.MustCompile(`(?i)^(?:sure[.!,]?\s*)?(?:here(?:'s| is)\s+(?:the|a|your)\s+)(?:revised|rewritten|improved|edited|corrected)[^\n:]*:\s*\n+`)

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// revisable trims paragraph and rejects input a rewrite could not cover.
func revisable(paragraph string) (string, error) {
	text := strings.TrimSpace(paragraph)
	if text == "" {
		return "", fmt.Errorf("paragraph empty; nothing to revise")
	}
	if n := utf8.RuneCountInString(text); n > MaxParagraphRunes {
		return "", fmt.Errorf("%w: %d characters (limit %d)", ErrTooLong, n, MaxParagraphRunes)
	}
	return text, nil
}

func draftable(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return prompt, nil
}

func buildRevisionPrompt(instruction, paragraph string) string {
	builder := strings.Builder{}
	builder.WriteString(instruction)
	builder.WriteString("\n\nParagraph:\n")
	builder.WriteString(paragraph)
	builder.WriteString("\n\nRewritten paragraph:")
	return builder.String()
}

// cleanRevision strips wrapping that chat models like to add around an
// answer, unless the original paragraph carried the same wrapping.
func cleanRevision(raw, original string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(original, "```") {
		text = stripFence(text)
	}
	if !preambleRe.MatchString(original + "\n") {
		text = preambleRe.ReplaceAllString(text, "")
	}
	text = stripQuotes(text, original)
	return strings.TrimSpace(text)
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	inner := strings.TrimSuffix(text, "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		inner = inner[nl+1:]
	} else {
		inner = strings.TrimPrefix(inner, "```")
	}
	return strings.TrimSpace(inner)
}

var quotePairs = [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}}

func stripQuotes(text, original string) string {
	for _, pair := range quotePairs {
		open, closing := pair[0], pair[1]
		if strings.HasPrefix(original, open) {
			continue
		}
		if len(text) > len(open)+len(closing) && strings.HasPrefix(text, open) && strings.HasSuffix(text, closing) {
			inner := text[len(open) : len(text)-len(closing)]
			if !strings.Contains(inner, open) && !strings.Contains(inner, closing) {
				return inner
			}
		}
	}
	return text
}
