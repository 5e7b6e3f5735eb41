package qa

import "strings"

const (
	minTokenLen  = 3
	windowBefore = 100
	windowAfter  = 300
	leadFallback = 200
)

// Snippet cuts a window of text around the earliest question keyword match.
// Keywords shorter than three characters are ignored. When nothing matches,
// the leading 200 characters stand in. Ellipses mark truncated edges.
func Snippet(content, question string) string {
	if content == "" {
		return ""
	}

	contentLower := strings.ToLower(content)
	best := -1
	for _, keyword := range strings.Fields(strings.ToLower(question)) {
		if len(keyword) < minTokenLen {
			continue
		}
		pos := strings.Index(contentLower, keyword)
		if pos >= 0 && (best == -1 || pos < best) {
			best = pos
		}
	}

	if best == -1 {
		if len(content) <= leadFallback {
			return content
		}
		return content[:leadFallback] + "..."
	}

	start := best - windowBefore
	if start < 0 {
		start = 0
	}
	end := best + windowAfter
	if end > len(content) {
		end = len(content)
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}
