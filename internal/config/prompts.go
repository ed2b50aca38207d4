package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// LoadPrompts reads a YAML prompt catalogue. An empty path yields the defaults;
// fields missing from the file keep their default value.
func LoadPrompts(path string) (domain.PromptSet, error) {
	if path == "" {
		return domain.DefaultPromptSet(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.PromptSet{}, fmt.Errorf("read prompts file: %w", err)
	}
	return ParsePrompts(raw)
}

func ParsePrompts(raw []byte) (domain.PromptSet, error) {
	var set domain.PromptSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return domain.PromptSet{}, fmt.Errorf("parse prompts yaml: %w", err)
	}
	return set.WithDefaults(), nil
}
