package budget

import (
	"math"
	"strings"
)

// EstimateTokensFromChars converts a character count into an estimated token
// count using ~4 chars per token. The result is at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a conservative default.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return 4096
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	if strings.HasSuffix(name, "128k") || strings.Contains(name, "-mini") {
		return 128_000
	}
	if strings.HasSuffix(name, "16k") {
		return 16_384
	}
	return 4096
}

// CompletionTokens returns the output budget for a completion whose prompt
// is estimated at promptTokens and which wants roughly want tokens back. The
// result never exceeds what is left of the model context and is never
// negative.
func CompletionTokens(modelName string, promptTokens int, want int) int {
	remaining := ModelContextTokens(modelName) - promptTokens
	if remaining < 0 {
		remaining = 0
	}
	if want > remaining {
		return remaining
	}
	if want < 0 {
		return 0
	}
	return want
}

// knownModelMax contains rough context sizes for common completion models.
var knownModelMax = map[string]int{
	"gpt-3.5-turbo-instruct": 4_096,
	"davinci-002":            16_384,
	"babbage-002":            16_384,
	"gpt-3.5-turbo":          16_384,
	"gpt-4o":                 128_000,
	"gpt-4o-mini":            128_000,
	"gpt-4-turbo":            128_000,
}
