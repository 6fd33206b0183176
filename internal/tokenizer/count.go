package tokenizer

// Count returns the token count of text using counter, falling back to the heuristic when
// counter is nil.
func Count(counter Counter, text string) (int, error) {
	if counter == nil {
		return EstimateTokens(text), nil
	}
	return counter.CountString(text)
}
