package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testDefinition() WorkflowDefinition {
	return WorkflowDefinition{
		Name: "INLINE",
		Steps: []StepDefinition{
			{
				Name:      "BOTTOM",
				Table:     "INLINEINSPECTIONBOTTOM",
				ProcessID: "INLINE_BOTTOM_PROC_001",
				StationID: "INLINE_BOTTOM_STATION_01",
				Specs: []ComponentSpec{
					{Name: "Antenna", Side: "bottom", PassRate: 0.92},
					{Name: "Capacitor", Side: "bottom", PassRate: 0.88},
					{Name: "Speaker", Side: "bottom", PassRate: 0.94},
				},
			},
			{
				Name:      "TOP",
				Table:     "INLINEINSPECTIONTOP",
				ProcessID: "INLINE_TOP_PROC_001",
				StationID: "INLINE_TOP_STATION_01",
				Specs: []ComponentSpec{
					{Name: "Screw", Side: "top", PassRate: 0.90},
					{Name: "Plate", Side: "top", PassRate: 0.95},
				},
			},
		},
	}
}

func TestNewInspectionSession(t *testing.T) {
	s, err := NewInspectionSession("TEST123", testDefinition())
	require.NoError(t, err)
	require.Equal(t, "TEST123", s.Barcode)
	require.Equal(t, StateBarcodeEntered, s.State)
	require.Len(t, s.Steps, 2)
	require.Equal(t, "BOTTOM", s.CurrentStep().Name)
	require.True(t, s.HasMoreSteps())
	require.NotEqual(t, uuid.Nil, s.Epoch)
}

func TestNewInspectionSessionTrimsBarcode(t *testing.T) {
	s, err := NewInspectionSession("  TEST123\n", testDefinition())
	require.NoError(t, err)
	require.Equal(t, "TEST123", s.Barcode)
}

func TestNewInspectionSessionRejectsEmptyBarcode(t *testing.T) {
	_, err := NewInspectionSession("   ", testDefinition())
	require.ErrorIs(t, err, ErrInvalidBarcode)
}

func TestNewInspectionSessionRejectsStepWithoutComponents(t *testing.T) {
	def := WorkflowDefinition{
		Name: "BAD",
		Steps: []StepDefinition{
			{Name: "EMPTY", Table: "T"},
		},
	}
	_, err := NewInspectionSession("TEST123", def)
	require.Error(t, err)
}

func TestWorkflowDefinitionValidate(t *testing.T) {
	require.NoError(t, testDefinition().Validate())

	require.Error(t, WorkflowDefinition{}.Validate())
	require.Error(t, WorkflowDefinition{Name: "X"}.Validate())
	require.Error(t, WorkflowDefinition{
		Name:  "X",
		Steps: []StepDefinition{{Name: "S", Specs: []ComponentSpec{{Name: "A"}}}},
	}.Validate()) // нет таблицы
}

func TestSessionOverallResult(t *testing.T) {
	s, err := NewInspectionSession("TEST123", testDefinition())
	require.NoError(t, err)
	require.Equal(t, 0, s.OverallResult()) // шаги ещё не завершены

	pass, err := NewStepResult([]ComponentResult{NewComponentResult("Antenna", true)})
	require.NoError(t, err)
	fail, err := NewStepResult([]ComponentResult{NewComponentResult("Screw", false)})
	require.NoError(t, err)

	s.Steps[0].Result = pass
	s.Steps[1].Result = pass
	require.Equal(t, 1, s.OverallResult())

	s.Steps[1].Result = fail
	require.Equal(t, 0, s.OverallResult())
}

func TestNewStepRecordColumns(t *testing.T) {
	res, err := NewStepResult([]ComponentResult{
		NewComponentResult("Antenna", true),
		NewComponentResult("Capacitor", true),
		NewComponentResult("Speaker", false),
	})
	require.NoError(t, err)

	step := &WorkflowStep{
		Name:      "BOTTOM",
		Table:     "INLINEINSPECTIONBOTTOM",
		ProcessID: "INLINE_BOTTOM_PROC_001",
		StationID: "INLINE_BOTTOM_STATION_01",
		Result:    res,
	}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	rec := NewStepRecord("TEST123", step, now)
	cols := rec.Columns()

	require.Equal(t, "TEST123", cols["Barcode"])
	require.Equal(t, "2026-08-31T12:00:00Z", cols["DT"])
	require.Equal(t, "INLINE_BOTTOM_PROC_001", cols["Process_id"])
	require.Equal(t, "INLINE_BOTTOM_STATION_01", cols["Station_ID"])
	require.Equal(t, 1, cols["Antenna"])
	require.Equal(t, 1, cols["Capacitor"])
	require.Equal(t, 0, cols["Speaker"])
	require.Equal(t, 0, cols["ManualSpeaker"])
	require.Equal(t, 0, cols["Result"])
	require.Equal(t, 0, cols["ManualResult"])
}

func TestWorkflowStepReset(t *testing.T) {
	res, err := NewStepResult([]ComponentResult{NewComponentResult("Antenna", true)})
	require.NoError(t, err)

	step := &WorkflowStep{Name: "BOTTOM", Result: res, Completed: true}
	step.Reset()
	require.Nil(t, step.Result)
	require.False(t, step.Completed)
}
