package domain

import "fmt"

// Stage is one named phase of a pipeline run.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageUploading   Stage = "uploading"
	StageExtracting  Stage = "extracting"
	StageSummarizing Stage = "summarizing"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
)

var stagePredecessors = map[Stage][]Stage{
	StageUploading:   {StageIdle},
	StageExtracting:  {StageUploading},
	StageSummarizing: {StageExtracting},
	StageComplete:    {StageSummarizing},
	StageFailed:      {StageUploading, StageExtracting, StageSummarizing},
	StageIdle:        {StageComplete, StageFailed},
}

// InProgress reports whether work is underway in this stage.
func (s Stage) InProgress() bool {
	switch s {
	case StageUploading, StageExtracting, StageSummarizing:
		return true
	default:
		return false
	}
}

func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// Transition validates a move from one stage to the next and returns the new stage.
func Transition(from, to Stage) (Stage, error) {
	for _, allowed := range stagePredecessors[to] {
		if allowed == from {
			return to, nil
		}
	}
	return from, WrapError(ErrIllegalTransition, "transition", fmt.Errorf("%s -> %s", from, to))
}

// PipelineEvent is a stage or progress update surfaced to the caller.
type PipelineEvent struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
}
