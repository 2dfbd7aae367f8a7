package ai

import (
	"encoding/json"
	"strings"
)

// extractObject slices the first '{' through the last '}' out of raw
// AI text. Providers wrap JSON in prose and code fences often enough
// that decoding the whole string rarely works.
func extractObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(raw, "}")
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Parse turns raw AI text into a Result. An embedded JSON object that
// decodes becomes Parsed, with missing fields simply left zero. Text
// with no decodable object comes back as RawText; prose is a valid
// answer for chat, so this is not a failure.
func Parse(raw string) Result {
	candidate, ok := extractObject(raw)
	if !ok {
		return RawText(raw)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(candidate), &analysis); err != nil {
		return RawText(raw)
	}
	return Parsed(&analysis)
}
