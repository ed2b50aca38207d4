package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	FileType    string         `json:"file_type"`
	FileSize    int64          `json:"file_size"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewDocument is the insert form of a Document; id and timestamp are assigned by the store.
type NewDocument struct {
	Filename    string
	FileType    string
	FileSize    int64
	StoragePath string
	Status      DocumentStatus
}

type Summary struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	SummaryShort  string    `json:"summary_short,omitempty"`
	SummaryMedium string    `json:"summary_medium,omitempty"`
	SummaryLong   string    `json:"summary_long,omitempty"`
	KeyPoints     []string  `json:"key_points"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Failed reports whether the row is the error-only form.
func (s Summary) Failed() bool {
	return s.ErrorMessage != "" && s.SummaryShort == "" && s.SummaryMedium == "" && s.SummaryLong == ""
}

// Set returns the generated part of the row.
func (s Summary) Set() SummarySet {
	keyPoints := s.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	return SummarySet{
		Short:     s.SummaryShort,
		Medium:    s.SummaryMedium,
		Long:      s.SummaryLong,
		KeyPoints: keyPoints,
	}
}

func CompletedSummary(documentID, extractedText string, set SummarySet) Summary {
	return Summary{
		DocumentID:    documentID,
		ExtractedText: extractedText,
		SummaryShort:  set.Short,
		SummaryMedium: set.Medium,
		SummaryLong:   set.Long,
		KeyPoints:     set.KeyPoints,
	}
}

func FailedSummary(documentID, message string) Summary {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Failed to process document"
	}
	return Summary{
		DocumentID:   documentID,
		KeyPoints:    []string{},
		ErrorMessage: message,
	}
}

// SummarySet is the output of one summarization run.
type SummarySet struct {
	Short     string   `json:"short"`
	Medium    string   `json:"medium"`
	Long      string   `json:"long"`
	KeyPoints []string `json:"keyPoints"`
}

type DocumentWithSummary struct {
	Document
	Summary *Summary `json:"summary,omitempty"`
}

// SourceFile is a raw upload held in memory for the duration of one run.
type SourceFile struct {
	Filename string
	MimeType string
	Data     []byte
}

func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}
