package domain

import "strings"

const (
	promptLengthPlaceholder = "{{length}}"
	promptTextPlaceholder   = "{{text}}"
)

// PromptSet holds the templates sent to the generative-text service.
type PromptSet struct {
	SummaryTemplate   string `yaml:"summary_template"`
	KeyPointsTemplate string `yaml:"key_points_template"`
	ShortLength       string `yaml:"short_length"`
	MediumLength      string `yaml:"medium_length"`
	LongLength        string `yaml:"long_length"`
}

func DefaultPromptSet() PromptSet {
	return PromptSet{
		SummaryTemplate:   "Summarize the following text in {{length}}. Focus on the main ideas and key information:\n\n{{text}}",
		KeyPointsTemplate: "Extract 5-7 key points from the following text. Return them as a numbered list:\n\n{{text}}",
		ShortLength:       "2-3 sentences",
		MediumLength:      "1 paragraph (4-6 sentences)",
		LongLength:        "2-3 paragraphs",
	}
}

// WithDefaults fills empty fields from DefaultPromptSet.
func (p PromptSet) WithDefaults() PromptSet {
	def := DefaultPromptSet()
	if strings.TrimSpace(p.SummaryTemplate) == "" {
		p.SummaryTemplate = def.SummaryTemplate
	}
	if strings.TrimSpace(p.KeyPointsTemplate) == "" {
		p.KeyPointsTemplate = def.KeyPointsTemplate
	}
	if strings.TrimSpace(p.ShortLength) == "" {
		p.ShortLength = def.ShortLength
	}
	if strings.TrimSpace(p.MediumLength) == "" {
		p.MediumLength = def.MediumLength
	}
	if strings.TrimSpace(p.LongLength) == "" {
		p.LongLength = def.LongLength
	}
	return p
}

func (p PromptSet) Summary(length, text string) string {
	out := strings.ReplaceAll(p.SummaryTemplate, promptLengthPlaceholder, length)
	return strings.ReplaceAll(out, promptTextPlaceholder, text)
}

func (p PromptSet) KeyPoints(text string) string {
	return strings.ReplaceAll(p.KeyPointsTemplate, promptTextPlaceholder, text)
}
