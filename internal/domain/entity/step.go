package entity

import (
	"fmt"
	"strings"
)

// StepResult — набор вердиктов по всем компонентам одного шага.
type StepResult struct {
	components    []ComponentResult
	overall       int
	manualOverall int
	overridden    bool
	Annotated     Frame  // кадр с разметкой от алгоритма
	Regions       []Region
}

// NewStepResult агрегирует вердикты компонентов. Итог шага — логическое И
// по числовой форме: любой брак компонента — брак шага. Шаг без компонентов
// не имеет определённого итога и отклоняется.
func NewStepResult(components []ComponentResult) (*StepResult, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("step has no component results: %w", ErrIllegalTransition)
	}

	overall := 1
	for _, c := range components {
		if c.Numeric() == 0 {
			overall = 0
			break
		}
	}

	return &StepResult{
		components:    components,
		overall:       overall,
		manualOverall: overall, // по умолчанию совпадает с автоматическим
	}, nil
}

// Components возвращает вердикты компонентов в порядке спецификаций.
func (s *StepResult) Components() []ComponentResult { return s.components }

// Overall возвращает автоматический итог шага: 1 либо 0.
func (s *StepResult) Overall() int { return s.overall }

// ManualOverall возвращает итог с учётом ручного вердикта оператора.
func (s *StepResult) ManualOverall() int { return s.manualOverall }

// Overridden сообщает, применял ли оператор ручной вердикт.
func (s *StepResult) Overridden() bool { return s.overridden }

// ApplyOverride устанавливает ручной итог. Допускается ровно один раз,
// первый установленный вердикт сохраняется.
func (s *StepResult) ApplyOverride(value int) error {
	if s.overridden {
		return fmt.Errorf("manual result is already %d: %w", s.manualOverall, ErrOverrideAlreadyApplied)
	}
	if value != 0 {
		value = 1
	}
	s.manualOverall = value
	s.overridden = true
	return nil
}

// Summary строит строку для оператора вида
// "BOTTOM: Antenna=PASS, Capacitor=PASS, Speaker=FAIL".
// Используются только строковые формы вердиктов.
func (s *StepResult) Summary(stepName string) string {
	var b strings.Builder
	b.WriteString(stepName)
	b.WriteString(": ")
	for i, c := range s.components {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name())
		b.WriteByte('=')
		b.WriteString(c.Display())
	}
	return b.String()
}

// WorkflowStep — одна фаза инспекции с её спецификациями и результатом.
type WorkflowStep struct {
	Name      string          // имя фазы, например "BOTTOM"
	Table     string          // таблица для записи результата
	ProcessID string
	StationID string
	Specs     []ComponentSpec // обязательные компоненты в порядке проверки
	Result    *StepResult     // nil до завершения захвата
	Completed bool
	Submitted bool            // подтверждена ли запись внешним API
}

// Reset отбрасывает результат шага перед повторным захватом.
func (w *WorkflowStep) Reset() {
	w.Result = nil
	w.Completed = false
}
