package domain

import "strings"

// PipelineResult is what the interactive pipeline hands back for display.
type PipelineResult struct {
	Document Document `json:"document"`
	Summary  Summary  `json:"summary"`
	FileURL  string   `json:"file_url"`
}

// ProcessRequest is the server-side processing input.
type ProcessRequest struct {
	DocumentID string `json:"documentId"`
	FileURL    string `json:"fileUrl"`
	FileType   string `json:"fileType"`
	APIKey     string `json:"apiKey"`
}

// Validate checks required fields; the API key may come from server config.
func (r ProcessRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.DocumentID) == "" {
		missing = append(missing, "documentId")
	}
	if strings.TrimSpace(r.FileURL) == "" {
		missing = append(missing, "fileUrl")
	}
	if strings.TrimSpace(r.FileType) == "" {
		missing = append(missing, "fileType")
	}
	if len(missing) > 0 {
		return WrapError(ErrInvalidInput, "validate process request", missingFieldsError(missing))
	}
	return nil
}

type missingFieldsError []string

func (e missingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e, ", ")
}
