package llm

import (
	"encoding/json"
	"strings"
)

// decodeOrDefault parses model output into T, falling back to def when
// the text is not usable JSON. Tries a direct parse, then the span from
// the first "{" to the last "}", then fenced code blocks. It never
// reports an error: malformed model output is a degraded path, not a
// failure.
func decodeOrDefault[T any](text string, def T) T {
	text = strings.TrimSpace(text)

	var out T
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			out = def
			if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil {
				return out
			}
		}
	}

	for _, fence := range []string{"```json", "```"} {
		if idx := strings.Index(text, fence); idx >= 0 {
			after := text[idx+len(fence):]
			if end := strings.Index(after, "```"); end >= 0 {
				out = def
				if err := json.Unmarshal([]byte(strings.TrimSpace(after[:end])), &out); err == nil {
					return out
				}
			}
		}
	}

	return def
}
