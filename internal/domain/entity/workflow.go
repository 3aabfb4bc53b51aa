package entity

import "fmt"

// StepDefinition — статическое описание одного шага из конфигурации.
type StepDefinition struct {
	Name      string
	Table     string
	ProcessID string
	StationID string
	Specs     []ComponentSpec
}

// WorkflowDefinition — статическое описание всего сценария инспекции,
// например INLINE: [BOTTOM, TOP]. Загружается один раз и не изменяется.
type WorkflowDefinition struct {
	Name  string
	Steps []StepDefinition
}

// Validate проверяет определение сценария. Шаг без единого компонента —
// ошибка конфигурации: итог такого шага не определён.
func (d WorkflowDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("workflow has no name")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", d.Name)
	}
	for _, s := range d.Steps {
		if s.Name == "" {
			return fmt.Errorf("workflow %q has a step with no name", d.Name)
		}
		if len(s.Specs) == 0 {
			return fmt.Errorf("workflow %q: step %q has no components", d.Name, s.Name)
		}
		if s.Table == "" {
			return fmt.Errorf("workflow %q: step %q has no table", d.Name, s.Name)
		}
	}
	return nil
}
