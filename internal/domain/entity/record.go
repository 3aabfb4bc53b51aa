package entity

import "time"

// Record — запись результата шага в форме, которую ожидает внешний API:
// {Barcode, DT, Process_id, Station_ID, <компонент>=0/1, Manual<компонент>,
// Result, ManualResult}. В запись попадают только числовые формы вердиктов,
// строковые PASS/FAIL остаются в интерфейсе оператора.
type Record struct {
	Table        string
	Barcode      string
	DT           time.Time
	ProcessID    string
	StationID    string
	Components   []RecordColumn
	Result       int
	ManualResult int
}

// RecordColumn — одна колонка компонента в записи.
type RecordColumn struct {
	Name   string
	Value  int
	Manual int
}

// NewStepRecord строит запись из завершённого шага.
func NewStepRecord(barcode string, step *WorkflowStep, now time.Time) *Record {
	rec := &Record{
		Table:        step.Table,
		Barcode:      barcode,
		DT:           now,
		ProcessID:    step.ProcessID,
		StationID:    step.StationID,
		Result:       step.Result.Overall(),
		ManualResult: step.Result.ManualOverall(),
	}
	for _, c := range step.Result.Components() {
		rec.Components = append(rec.Components, RecordColumn{
			Name:   c.Name(),
			Value:  c.Numeric(),
			Manual: c.Numeric(),
		})
	}
	return rec
}

// Columns разворачивает запись в плоский набор колонок для JSON или SQL.
func (r *Record) Columns() map[string]any {
	cols := map[string]any{
		"Barcode":      r.Barcode,
		"DT":           r.DT.Format(time.RFC3339),
		"Process_id":   r.ProcessID,
		"Station_ID":   r.StationID,
		"Result":       r.Result,
		"ManualResult": r.ManualResult,
	}
	for _, c := range r.Components {
		cols[c.Name] = c.Value
		cols["Manual"+c.Name] = c.Manual
	}
	return cols
}
