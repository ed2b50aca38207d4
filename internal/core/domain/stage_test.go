package domain

import "testing"

func TestTransitionFollowsLinearPath(t *testing.T) {
	stage := StageIdle
	for _, next := range []Stage{StageUploading, StageExtracting, StageSummarizing, StageComplete, StageIdle} {
		got, err := Transition(stage, next)
		if err != nil {
			t.Fatalf("Transition(%s, %s) error = %v", stage, next, err)
		}
		stage = got
	}
	if stage != StageIdle {
		t.Fatalf("expected idle after reset, got %s", stage)
	}
}

func TestTransitionToFailedOnlyFromInProgress(t *testing.T) {
	for _, from := range []Stage{StageUploading, StageExtracting, StageSummarizing} {
		if _, err := Transition(from, StageFailed); err != nil {
			t.Fatalf("Transition(%s, failed) error = %v", from, err)
		}
	}
	for _, from := range []Stage{StageIdle, StageComplete, StageFailed} {
		if _, err := Transition(from, StageFailed); !IsKind(err, ErrIllegalTransition) {
			t.Fatalf("Transition(%s, failed) expected ErrIllegalTransition, got %v", from, err)
		}
	}
}

func TestTransitionRejectsSkippedStage(t *testing.T) {
	got, err := Transition(StageUploading, StageSummarizing)
	if !IsKind(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if got != StageUploading {
		t.Fatalf("expected stage to stay uploading, got %s", got)
	}
}

func TestPromptSetRendersOriginalWording(t *testing.T) {
	p := PromptSet{}.WithDefaults()
	got := p.Summary(p.ShortLength, "body")
	want := "Summarize the following text in 2-3 sentences. Focus on the main ideas and key information:\n\nbody"
	if got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
	if kp := p.KeyPoints("body"); kp != "Extract 5-7 key points from the following text. Return them as a numbered list:\n\nbody" {
		t.Fatalf("unexpected key points prompt: %q", kp)
	}
}

func TestUserMessageForEmptyExtraction(t *testing.T) {
	err := WrapError(ErrEmptyExtraction, "extract text", ErrEmptyExtraction)
	if got := UserMessage(err); got != "No text could be extracted from the document" {
		t.Fatalf("UserMessage() = %q", got)
	}
}

func TestUserMessageForInvalidInputShowsCause(t *testing.T) {
	err := ProcessRequest{DocumentID: "doc-1"}.Validate()
	if got := UserMessage(err); got != "Missing required fields: fileUrl, fileType" {
		t.Fatalf("UserMessage() = %q", got)
	}
}
