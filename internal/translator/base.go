// Package translator turns a chat completion service into a text translator.
package translator

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Translator is the capability shared by every translator and consumed by the
// file and batch helpers.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Source() string
	Target() string
}

// TranslateFile reads the file at path, trims surrounding whitespace and
// translates its content in a single call.
func TranslateFile(ctx context.Context, t Translator, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return t.Translate(ctx, strings.TrimSpace(string(data)))
}

// TranslateBatch translates each item in order, one call at a time. It stops at
// the first failure.
func TranslateBatch(ctx context.Context, t Translator, batch []string) ([]string, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([]string, 0, len(batch))
	for i, text := range batch {
		translated, err := t.Translate(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		out = append(out, translated)
	}

	return out, nil
}
