package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SessionState — состояние сессии инспекции.
type SessionState string

const (
	StateIdle                SessionState = "idle"                 // нет штрихкода, ждём ввода
	StateBarcodeEntered      SessionState = "barcode_entered"      // штрихкод принят, можно начинать
	StateStepInProgress      SessionState = "step_in_progress"     // идёт захват/анализ шага
	StateStepCompleted       SessionState = "step_completed"       // шаг завершён, можно дальше
	StateInspectionCompleted SessionState = "inspection_completed" // все шаги завершены
	StateOverrideApplied     SessionState = "override_applied"     // применён ручной вердикт
	StateDataSubmitted       SessionState = "data_submitted"       // данные подтверждены API
)

// InspectionSession — один прогон инспекции для одного штрихкода.
// Сессия принадлежит только сервису сценария, остальные получают её
// по ссылке и не изменяют.
type InspectionSession struct {
	Epoch      uuid.UUID // метка поколения: поздние результаты старой сессии отбрасываются
	Barcode    string
	Workflow   string
	Steps      []*WorkflowStep
	Current    int // индекс текущего шага
	State      SessionState
	Overridden bool
}

// NewInspectionSession создаёт сессию из определения сценария.
// Пустой штрихкод и сценарий с шагом без компонентов отклоняются.
func NewInspectionSession(barcode string, def WorkflowDefinition) (*InspectionSession, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("barcode is empty: %w", ErrInvalidBarcode)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("workflow definition rejected: %w", err)
	}

	steps := make([]*WorkflowStep, 0, len(def.Steps))
	for _, sd := range def.Steps {
		steps = append(steps, &WorkflowStep{
			Name:      sd.Name,
			Table:     sd.Table,
			ProcessID: sd.ProcessID,
			StationID: sd.StationID,
			Specs:     sd.Specs,
		})
	}

	return &InspectionSession{
		Epoch:    uuid.New(),
		Barcode:  barcode,
		Workflow: def.Name,
		Steps:    steps,
		Current:  0,
		State:    StateBarcodeEntered,
	}, nil
}

// SetState переводит сессию в новое состояние.
func (s *InspectionSession) SetState(state SessionState) {
	s.State = state
}

// CurrentStep возвращает текущий шаг либо nil, если шаги закончились.
func (s *InspectionSession) CurrentStep() *WorkflowStep {
	if s.Current < 0 || s.Current >= len(s.Steps) {
		return nil
	}
	return s.Steps[s.Current]
}

// HasMoreSteps сообщает, остались ли шаги после текущего.
func (s *InspectionSession) HasMoreSteps() bool {
	return s.Current+1 < len(s.Steps)
}

// OverallResult возвращает 1, если все завершённые шаги годны, иначе 0.
func (s *InspectionSession) OverallResult() int {
	for _, step := range s.Steps {
		if step.Result == nil || step.Result.Overall() == 0 {
			return 0
		}
	}
	return 1
}
