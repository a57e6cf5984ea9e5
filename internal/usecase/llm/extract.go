package llm

import (
	"regexp"
	"strings"
)

var thinkRe = regexp.MustCompile(`<think>[\s\S]*?</think>`)

// answerPrefixes are labels some models put before the payload.
var answerPrefixes = []string{"output:", "response:", "json:", "result:", "answer:"}

// stripReasoning removes <think>...</think> blocks.
func stripReasoning(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

// extractObject pulls the JSON object out of a chatty model reply.
// The result is not validated; it is "" when there is no {...} span.
func extractObject(reply string) string {
	s := unwrap(reply)
	return span(s, '{', '}')
}

// extractArray pulls the JSON array out of a model reply.
func extractArray(reply string) string {
	return span(unwrap(reply), '[', ']')
}

func unwrap(reply string) string {
	s := stripReasoning(strings.TrimSpace(reply))

	if start, end := strings.Index(s, "```"), strings.LastIndex(s, "```"); start != end {
		inner := s[start+3 : end]
		inner = strings.TrimPrefix(inner, "json")
		s = strings.TrimSpace(inner)
	}

	for _, p := range answerPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

// span returns s from the first open to the last close rune, inclusive.
func span(s string, open, closing byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
