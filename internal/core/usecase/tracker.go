package usecase

import (
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

// stageTracker owns the stage and progress of a single run.
type stageTracker struct {
	stage     domain.Stage
	progress  int
	onEvent   ports.EventFunc
	metrics   ports.PipelineMetrics
	enteredAt time.Time
	now       func() time.Time
}

func newStageTracker(onEvent ports.EventFunc, metrics ports.PipelineMetrics, now func() time.Time) *stageTracker {
	return &stageTracker{
		stage:   domain.StageIdle,
		onEvent: onEvent,
		metrics: metrics,
		now:     now,
	}
}

func (t *stageTracker) advance(to domain.Stage) error {
	from := t.stage
	next, err := domain.Transition(from, to)
	if err != nil {
		return err
	}
	t.observeStage(from)
	t.stage = next
	t.progress = 0
	if to == domain.StageComplete {
		t.progress = 100
	}
	t.enteredAt = t.now()
	t.emit("")
	return nil
}

// report forwards extraction progress, clamped to [0,100] and never decreasing.
func (t *stageTracker) report(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= t.progress {
		return
	}
	t.progress = percent
	t.emit("")
}

func (t *stageTracker) fail(err error) {
	if !t.stage.InProgress() {
		return
	}
	t.observeStage(t.stage)
	t.stage = domain.StageFailed
	t.emit(domain.UserMessage(err))
}

// reset drops transient state once a run reaches a terminal stage.
func (t *stageTracker) reset() {
	if t.stage.Terminal() {
		t.stage = domain.StageIdle
	}
	t.progress = 0
}

func (t *stageTracker) observeStage(stage domain.Stage) {
	if t.metrics == nil || !stage.InProgress() || t.enteredAt.IsZero() {
		return
	}
	t.metrics.ObserveStage(stage, t.now().Sub(t.enteredAt).Seconds())
}

func (t *stageTracker) emit(message string) {
	if t.onEvent == nil {
		return
	}
	t.onEvent(domain.PipelineEvent{
		Stage:    t.stage,
		Progress: t.progress,
		Message:  message,
	})
}
