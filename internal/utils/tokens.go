package utils

// Token estimation for cost and context-window checks. Providers report real
// usage after the call; these numbers are only used beforehand.

// CountTokens estimates the number of tokens in the given text using the
// 1 token ~= 4 characters heuristic.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	// at least 1 token for any non-empty text
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TokenBreakdown returns a simple breakdown map of labeled sections to token counts.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = CountTokens(v)
	}
	return out
}
