// Package tokenizer estimates how many model tokens a piece of text occupies.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	// Model selects a tiktoken encoding. Empty selects the heuristic estimator.
	Model string
}

const (
	defaultEncodingName          = "cl100k_base"
	fallbackTokenizerErrorFormat = "initialize fallback tokenizer: %w"
)

// NewCounter returns a Counter for the requested model together with the name it resolved to.
// Unknown models fall back to the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	if model == "" || model == HeuristicCounterName {
		return heuristicCounter{}, HeuristicCounterName, nil
	}

	if isOpenAIModel(model) {
		encoding, err := tiktoken.EncodingForModel(model)
		if err == nil && encoding != nil {
			return openAICounter{encoding: encoding, name: model}, model, nil
		}
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf(fallbackTokenizerErrorFormat, fallbackErr)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
