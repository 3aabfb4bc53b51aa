package app

import (
	"fmt"

	"inspection-station/internal/domain/entity"
)

// GateState — доступность действий оператора, выведенная из состояния сессии.
// Для каждого запрещённого действия есть причина, которую видит оператор.
type GateState struct {
	Capture  bool
	Next     bool
	Repeat   bool
	Override bool

	CaptureReason  string
	NextReason     string
	RepeatReason   string
	OverrideReason string
}

// ComputeGateState — чистая функция состояния сессии. Пересчитывается на
// каждом переходе и никогда не кэшируется. Тотальна: каждому достижимому
// состоянию соответствует полный вектор, неизвестное состояние — ошибка
// программы, а не поведение по умолчанию.
func ComputeGateState(s *entity.InspectionSession) GateState {
	state := entity.StateIdle
	if s != nil {
		state = s.State
	}

	switch state {
	case entity.StateIdle, entity.StateBarcodeEntered, entity.StateStepInProgress,
		entity.StateStepCompleted, entity.StateInspectionCompleted,
		entity.StateOverrideApplied, entity.StateDataSubmitted:
	default:
		panic(fmt.Sprintf("gate: unknown session state %q", state))
	}

	g := GateState{}

	// Захват: штрихкод принят либо предыдущая инспекция сдана.
	switch state {
	case entity.StateBarcodeEntered, entity.StateDataSubmitted:
		g.Capture = s.Barcode != ""
		if !g.Capture {
			g.CaptureReason = "Enter a barcode first"
		}
	case entity.StateIdle:
		g.CaptureReason = "Enter a barcode first"
	case entity.StateStepInProgress, entity.StateStepCompleted:
		g.CaptureReason = "Inspection in progress"
	default:
		g.CaptureReason = "Complete current inspection first"
	}

	// Следующий шаг: текущий шаг завершён и все компоненты собраны.
	switch state {
	case entity.StateStepCompleted:
		step := s.CurrentStep()
		if step != nil && step.Result != nil && len(step.Result.Components()) == len(step.Specs) {
			g.Next = true
		} else {
			g.NextReason = "Collect data for current step first"
		}
	case entity.StateStepInProgress:
		g.NextReason = "Collect data for current step first"
	case entity.StateInspectionCompleted, entity.StateOverrideApplied, entity.StateDataSubmitted:
		g.NextReason = "All steps completed"
	default:
		g.NextReason = "Start inspection first"
	}

	// Повтор: есть текущий либо только что завершённый шаг.
	switch state {
	case entity.StateStepInProgress, entity.StateStepCompleted:
		g.Repeat = true
	case entity.StateInspectionCompleted, entity.StateOverrideApplied, entity.StateDataSubmitted:
		g.RepeatReason = "No active step to repeat"
	default:
		g.RepeatReason = "Start inspection first"
	}

	// Ручной вердикт: все шаги завершены и вердикт ещё не применялся.
	switch state {
	case entity.StateInspectionCompleted:
		if s.Overridden {
			g.OverrideReason = "Override already applied"
		} else {
			g.Override = true
		}
	case entity.StateOverrideApplied:
		g.OverrideReason = "Override already applied"
	case entity.StateIdle, entity.StateBarcodeEntered:
		g.OverrideReason = "No inspection results to override"
	default:
		g.OverrideReason = "Override not available in current state"
	}

	return g
}
