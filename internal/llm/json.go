package llm

import (
	"regexp"
	"strings"
)

var (
	jsonFenceOpen  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	jsonFenceClose = regexp.MustCompile("\\s*```$")
)

// CleanJSON strips markdown fences and surrounding chatter from a model reply.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = jsonFenceOpen.ReplaceAllString(text, "")
		text = jsonFenceClose.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}
	return extractJSON(text)
}

// extractJSON keeps the outermost object or array, whichever starts first.
func extractJSON(text string) string {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return ""
	}

	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return ""
	}

	return text[start : end+1]
}
