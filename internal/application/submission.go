package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// SubmissionCoordinator отправляет записи шагов во внешний API в строгом
// порядке сценария: BOTTOM должен быть подтверждён раньше TOP. В запись
// попадают только числовые формы вердиктов. Автоматических повторов нет:
// ошибка возвращается оператору, и он явно повторяет отправку — система
// ключуется штрихкодом, тихий цикл повторов означал бы дубликаты.
type SubmissionCoordinator struct {
	submitter port.StepSubmitter
	logger    *zap.Logger
}

// NewSubmissionCoordinator создаёт координатор отправки.
func NewSubmissionCoordinator(submitter port.StepSubmitter, logger *zap.Logger) *SubmissionCoordinator {
	return &SubmissionCoordinator{
		submitter: submitter,
		logger:    logger,
	}
}

// Submit отправляет запись шага с индексом idx. Более поздний шаг
// отклоняется, пока все более ранние не подтверждены.
func (c *SubmissionCoordinator) Submit(ctx context.Context, sess *entity.InspectionSession, idx int) error {
	if idx < 0 || idx >= len(sess.Steps) {
		return fmt.Errorf("step index %d of %d: %w", idx, len(sess.Steps), entity.ErrIllegalTransition)
	}

	step := sess.Steps[idx]
	if !step.Completed || step.Result == nil {
		return fmt.Errorf("step %s has no result to submit: %w", step.Name, entity.ErrIllegalTransition)
	}

	for _, earlier := range sess.Steps[:idx] {
		if !earlier.Submitted {
			return fmt.Errorf("step %s is not acknowledged before %s: %w",
				earlier.Name, step.Name, entity.ErrPriorStepNotSubmitted)
		}
	}

	rec := entity.NewStepRecord(sess.Barcode, step, time.Now().UTC())

	if err := c.submitter.SubmitStep(ctx, rec); err != nil {
		metrics.SubmissionsFailed.Inc()
		c.logger.Error("step submission failed",
			zap.String("barcode", sess.Barcode),
			zap.String("step", step.Name),
			zap.String("table", step.Table),
			zap.Error(err),
		)
		return fmt.Errorf("submit step %s: %w", step.Name, err)
	}

	step.Submitted = true
	metrics.SubmissionsCompleted.Inc()
	c.logger.Info("step submitted",
		zap.String("barcode", sess.Barcode),
		zap.String("step", step.Name),
		zap.String("table", step.Table),
		zap.Int("result", step.Result.Overall()),
		zap.Int("manual_result", step.Result.ManualOverall()),
	)
	return nil
}
