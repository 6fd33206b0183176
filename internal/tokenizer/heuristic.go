package tokenizer

import (
	"strings"
	"unicode"
)

// HeuristicCounterName identifies the built-in estimator.
const HeuristicCounterName = "heuristic"

// EstimateTokens counts the maximal runs of characters that are neither whitespace nor
// ASCII punctuation. Brackets, operators and underscores all act as separators, so
// `fn main() { println!("Hello"); }` yields fn, main, println and Hello.
func EstimateTokens(text string) int {
	return len(strings.FieldsFunc(text, isTokenSeparator))
}

func isTokenSeparator(character rune) bool {
	if unicode.IsSpace(character) {
		return true
	}
	return character <= unicode.MaxASCII && (unicode.IsPunct(character) || unicode.IsSymbol(character))
}

type heuristicCounter struct{}

func (heuristicCounter) Name() string {
	return HeuristicCounterName
}

func (heuristicCounter) CountString(input string) (int, error) {
	return EstimateTokens(input), nil
}
