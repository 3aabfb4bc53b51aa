package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// WorkflowService — секвенсор инспекции. Единолично владеет сессией,
// принимает действия оператора, запускает захват и анализ, выполняет
// переходы состояний. Недопустимое действие отклоняется с ошибкой,
// а не игнорируется.
type WorkflowService struct {
	camera      *Camera
	engine      port.InspectionEngine
	coordinator *SubmissionCoordinator
	display     port.Display
	notifier    port.Notifier
	checker     port.BarcodeChecker
	logger      *zap.Logger

	def           entity.WorkflowDefinition
	captureFrames int

	mu         sync.Mutex
	session    *entity.InspectionSession
	sessionCtx context.Context
	cancel     context.CancelFunc
	inspecting bool
	submitting bool
}

// NewWorkflowService создаёт сервис сценария. Определение сценария
// проверяется сразу: шаг без компонентов — ошибка конфигурации.
func NewWorkflowService(
	camera *Camera,
	engine port.InspectionEngine,
	coordinator *SubmissionCoordinator,
	display port.Display,
	notifier port.Notifier,
	checker port.BarcodeChecker,
	def entity.WorkflowDefinition,
	captureFrames int,
	logger *zap.Logger,
) (*WorkflowService, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if captureFrames < 1 {
		captureFrames = 1
	}
	return &WorkflowService{
		camera:        camera,
		engine:        engine,
		coordinator:   coordinator,
		display:       display,
		notifier:      notifier,
		checker:       checker,
		def:           def,
		captureFrames: captureFrames,
		logger:        logger,
	}, nil
}

// State возвращает текущее состояние сессии.
func (s *WorkflowService) State() entity.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return entity.StateIdle
	}
	return s.session.State
}

// Session возвращает текущую сессию (nil в состоянии Idle).
func (s *WorkflowService) Session() *entity.InspectionSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// GateState пересчитывает доступность действий оператора.
func (s *WorkflowService) GateState() GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeGateState(s.session)
}

// SubmitBarcode принимает штрихкод и создаёт новую сессию.
// Допустим из Idle и после сдачи данных; пустой штрихкод отклоняется.
func (s *WorkflowService) SubmitBarcode(ctx context.Context, barcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := entity.StateIdle
	if s.session != nil {
		state = s.session.State
	}
	if state != entity.StateIdle && state != entity.StateDataSubmitted {
		return fmt.Errorf("barcode not accepted in state %s: %w", state, entity.ErrIllegalTransition)
	}

	if s.checker != nil {
		check, err := s.checker.CheckBarcode(ctx, barcode)
		if err != nil {
			return fmt.Errorf("barcode pre-check: %w", err)
		}
		if !check.PreviousTested {
			return fmt.Errorf("barcode %q was not tested in previous inspection: %w", barcode, entity.ErrInvalidBarcode)
		}
		if check.Duplicate {
			s.logger.Warn("barcode already has a record, resubmission will overwrite",
				zap.String("barcode", barcode))
		}
	}

	sess, err := entity.NewInspectionSession(barcode, s.def)
	if err != nil {
		return err
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.session = sess
	s.sessionCtx, s.cancel = context.WithCancel(context.Background())
	s.inspecting = false
	s.submitting = false

	s.logger.Info("barcode accepted",
		zap.String("barcode", sess.Barcode),
		zap.String("workflow", sess.Workflow),
		zap.String("epoch", sess.Epoch.String()),
	)
	s.display.ShowMessage(fmt.Sprintf("Barcode %s accepted, ready to start %s inspection", sess.Barcode, sess.Workflow))
	return nil
}

// TriggerCapture запускает захват текущего шага. Из BarcodeEntered начинает
// первый шаг; после DataSubmitted перезапускает сессию для того же
// штрихкода (повторная сдача перезаписывает запись по штрихкоду).
func (s *WorkflowService) TriggerCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return fmt.Errorf("no barcode entered: %w", entity.ErrIllegalTransition)
	}

	switch s.session.State {
	case entity.StateBarcodeEntered:
	case entity.StateDataSubmitted:
		for _, step := range s.session.Steps {
			step.Reset()
			step.Submitted = false
		}
		s.session.Current = 0
		s.session.Overridden = false
	case entity.StateStepInProgress:
		// Захват или анализ текущего шага ещё не завершён.
		return fmt.Errorf("capture of current step is still running: %w", entity.ErrCaptureAlreadyInProgress)
	default:
		return fmt.Errorf("capture not allowed in state %s: %w", s.session.State, entity.ErrIllegalTransition)
	}

	if !s.camera.Streaming() {
		if err := s.camera.Start(); err != nil {
			return err
		}
	}

	if err := s.beginStepCaptureLocked(); err != nil {
		return err
	}
	s.session.SetState(entity.StateStepInProgress)
	return nil
}

// Advance переходит к следующему шагу либо завершает инспекцию.
// С последнего шага всегда ведёт в InspectionCompleted, никогда в Idle.
func (s *WorkflowService) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.State != entity.StateStepCompleted {
		return fmt.Errorf("no completed step to advance from: %w", entity.ErrIllegalTransition)
	}
	if s.submitting {
		return fmt.Errorf("submission in progress: %w", entity.ErrIllegalTransition)
	}

	if !s.session.HasMoreSteps() {
		s.session.SetState(entity.StateInspectionCompleted)
		s.logger.Info("inspection completed",
			zap.String("barcode", s.session.Barcode),
			zap.Int("overall", s.session.OverallResult()),
		)
		s.display.ShowMessage(fmt.Sprintf("Inspection completed, overall result: %s", displayOf(s.session.OverallResult())))
		return nil
	}

	s.session.Current++
	if err := s.beginStepCaptureLocked(); err != nil {
		s.session.Current--
		return err
	}
	s.session.SetState(entity.StateStepInProgress)
	return nil
}

// Repeat отбрасывает результат текущего шага и захватывает его заново.
// Допустим любое число раз до Advance, но только для текущего шага.
func (s *WorkflowService) Repeat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return fmt.Errorf("no active step to repeat: %w", entity.ErrIllegalTransition)
	}
	switch s.session.State {
	case entity.StateStepInProgress, entity.StateStepCompleted:
	default:
		return fmt.Errorf("repeat not allowed in state %s: %w", s.session.State, entity.ErrIllegalTransition)
	}
	if s.inspecting {
		return fmt.Errorf("inspection of current step is still running: %w", entity.ErrCaptureAlreadyInProgress)
	}
	if s.submitting {
		return fmt.Errorf("submission in progress: %w", entity.ErrIllegalTransition)
	}

	if err := s.beginStepCaptureLocked(); err != nil {
		return err
	}
	s.session.CurrentStep().Reset()
	s.session.SetState(entity.StateStepInProgress)
	s.logger.Info("step restarted",
		zap.String("barcode", s.session.Barcode),
		zap.String("step", s.session.CurrentStep().Name),
	)
	return nil
}

// ApplyOverride применяет ручной вердикт оператора. Допустим один раз
// и только после завершения всех шагов; первый вердикт сохраняется.
func (s *WorkflowService) ApplyOverride(value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return fmt.Errorf("no inspection results to override: %w", entity.ErrIllegalTransition)
	}
	if s.session.State == entity.StateOverrideApplied || s.session.Overridden {
		return fmt.Errorf("manual result already set: %w", entity.ErrOverrideAlreadyApplied)
	}
	if s.session.State != entity.StateInspectionCompleted {
		return fmt.Errorf("override not allowed in state %s: %w", s.session.State, entity.ErrIllegalTransition)
	}

	for _, step := range s.session.Steps {
		if step.Submitted {
			continue
		}
		if err := step.Result.ApplyOverride(value); err != nil {
			return err
		}
	}
	s.session.Overridden = true
	s.session.SetState(entity.StateOverrideApplied)

	s.logger.Info("manual override applied",
		zap.String("barcode", s.session.Barcode),
		zap.Int("value", value),
		zap.Int("automatic_overall", s.session.OverallResult()),
	)
	s.display.ShowMessage(fmt.Sprintf("Manual override applied: %s", displayOf(value)))
	return nil
}

// Submit отправляет завершённые и ещё не подтверждённые шаги во внешний API.
// При ошибке состояние не меняется, оператор повторяет отправку явно.
func (s *WorkflowService) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return fmt.Errorf("nothing to submit: %w", entity.ErrIllegalTransition)
	}
	switch s.session.State {
	case entity.StateStepCompleted, entity.StateInspectionCompleted, entity.StateOverrideApplied:
	default:
		return fmt.Errorf("submit not allowed in state %s: %w", s.session.State, entity.ErrIllegalTransition)
	}
	if s.submitting {
		return fmt.Errorf("submission already in progress: %w", entity.ErrIllegalTransition)
	}

	var pending []int
	for i, step := range s.session.Steps {
		if step.Completed && !step.Submitted {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return fmt.Errorf("no completed steps awaiting submission: %w", entity.ErrIllegalTransition)
	}

	s.submitting = true
	sess := s.session
	epoch := sess.Epoch
	ctx := s.sessionCtx

	go func() {
		var err error
		for _, idx := range pending {
			if err = s.coordinator.Submit(ctx, sess, idx); err != nil {
				break
			}
		}
		s.finishSubmission(epoch, err)
	}()
	return nil
}

// Abort прерывает сессию из любого состояния и возвращает станцию в Idle.
// Сессия отбрасывается и никогда не сохраняется; поздние результаты
// прерванных задач отбрасываются по метке поколения.
func (s *WorkflowService) Abort() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.session != nil {
		s.logger.Info("session aborted",
			zap.String("barcode", s.session.Barcode),
			zap.String("state", string(s.session.State)),
		)
	}
	s.session = nil
	s.inspecting = false
	s.submitting = false
	s.mu.Unlock()

	// Вне блокировки: отмена захвата доставит уведомление, которое
	// отбросится по несовпадению поколения.
	s.camera.AbortCapture()
	s.display.ShowMessage("Inspection stopped")
}

// Close освобождает камеру. Вызывается на любом пути завершения станции.
func (s *WorkflowService) Close() {
	s.Abort()
	s.camera.Stop()
}

// beginStepCaptureLocked запускает накопление кадров текущего шага.
// Вызывается под блокировкой; состояние меняет вызывающий после успеха.
func (s *WorkflowService) beginStepCaptureLocked() error {
	epoch := s.session.Epoch
	return s.camera.BeginCapture(s.captureFrames, func(avg entity.AveragedFrame, err error) {
		s.onCaptureDone(epoch, avg, err)
	})
}

// onCaptureDone принимает итог накопления серии. Результат чужого
// поколения отбрасывается: сессию уже прервали или заменили.
func (s *WorkflowService) onCaptureDone(epoch uuid.UUID, avg entity.AveragedFrame, err error) {
	s.mu.Lock()

	if s.session == nil || s.session.Epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding capture result of stale session", zap.String("epoch", epoch.String()))
		return
	}

	if err != nil {
		// Шаг остаётся в StepInProgress: оператор повторяет захват с нуля.
		s.mu.Unlock()
		s.display.ShowMessage(fmt.Sprintf("Capture failed: %v", err))
		return
	}

	step := s.session.CurrentStep()
	specs := step.Specs
	ctx := s.sessionCtx
	s.inspecting = true
	s.mu.Unlock()

	go s.runInspection(ctx, epoch, specs, avg)
}

// runInspection выполняет медленный вызов алгоритма вне такта отображения.
// На шаг приходится не больше одной такой задачи.
func (s *WorkflowService) runInspection(ctx context.Context, epoch uuid.UUID, specs []entity.ComponentSpec, avg entity.AveragedFrame) {
	start := time.Now()
	res, err := s.engine.Inspect(ctx, specs, avg)
	metrics.InspectionDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.inspecting = false

	if s.session == nil || s.session.Epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding inspection result of stale session", zap.String("epoch", epoch.String()))
		return
	}

	if err != nil {
		// Отказ алгоритма — отказ шага, не сессии: остаёмся в
		// StepInProgress, оператор может повторить захват.
		metrics.InspectionsFailed.Inc()
		barcode := s.session.Barcode
		s.mu.Unlock()
		s.logger.Error("inspection engine failed",
			zap.String("barcode", barcode),
			zap.Error(err),
		)
		s.display.ShowMessage(fmt.Sprintf("Inspection failed: %v", err))
		return
	}

	stepResult, rerr := entity.NewStepResult(res.Results)
	if rerr != nil {
		s.mu.Unlock()
		s.logger.Error("engine returned no component results", zap.Error(rerr))
		s.display.ShowMessage(fmt.Sprintf("Inspection failed: %v", rerr))
		return
	}
	stepResult.Annotated = res.Annotated
	stepResult.Regions = res.Regions

	step := s.session.CurrentStep()
	step.Result = stepResult
	step.Completed = true
	s.session.SetState(entity.StateStepCompleted)

	summary := stepResult.Summary(step.Name)
	barcode := s.session.Barcode
	s.mu.Unlock()

	metrics.InspectionsCompleted.WithLabelValues(step.Name, displayOf(stepResult.Overall())).Inc()
	s.logger.Info("step completed",
		zap.String("barcode", barcode),
		zap.String("step", step.Name),
		zap.Int("overall", stepResult.Overall()),
		zap.String("summary", summary),
	)
	s.display.ShowStepResult(summary, res.Annotated)
}

// finishSubmission принимает итог отправки. Пока не подтверждены все шаги,
// состояние не меняется, и оператор может продолжать либо повторять отправку.
func (s *WorkflowService) finishSubmission(epoch uuid.UUID, err error) {
	s.mu.Lock()
	s.submitting = false

	if s.session == nil || s.session.Epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding submission result of stale session", zap.String("epoch", epoch.String()))
		return
	}

	if err != nil {
		s.mu.Unlock()
		s.display.ShowMessage(fmt.Sprintf("Submission failed: %v", err))
		return
	}

	allSubmitted := true
	for _, step := range s.session.Steps {
		if !step.Submitted {
			allSubmitted = false
			break
		}
	}

	if !allSubmitted {
		// Сданы промежуточные шаги; сессия продолжается с того же места.
		s.mu.Unlock()
		s.display.ShowMessage("Step record submitted")
		return
	}

	s.session.SetState(entity.StateDataSubmitted)
	barcode := s.session.Barcode
	overall := s.session.OverallResult()
	overridden := s.session.Overridden
	summary := s.sessionSummaryLocked()
	ctx := s.sessionCtx
	s.mu.Unlock()

	s.logger.Info("all step records submitted",
		zap.String("barcode", barcode),
		zap.Int("overall", overall),
		zap.Bool("overridden", overridden),
	)
	s.display.ShowMessage(fmt.Sprintf("All data submitted for %s", barcode))

	if s.notifier != nil && (overall == 0 || overridden) {
		go func() {
			if nerr := s.notifier.NotifyFailure(ctx, barcode, summary); nerr != nil {
				s.logger.Warn("failure notification not delivered", zap.Error(nerr))
			}
		}()
	}
}

// sessionSummaryLocked собирает сводку всех шагов для уведомления.
func (s *WorkflowService) sessionSummaryLocked() string {
	out := ""
	for _, step := range s.session.Steps {
		if step.Result == nil {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += step.Result.Summary(step.Name)
	}
	return out
}

func displayOf(numeric int) string {
	if numeric == 1 {
		return entity.DisplayPass
	}
	return entity.DisplayFail
}
