package port

import (
	"context"

	"inspection-station/internal/domain/entity"
)

// StepSubmitter отправляет запись шага во внешний API хранения.
// Ошибка возвращается вызывающему как есть, без автоматических повторов.
type StepSubmitter interface {
	SubmitStep(ctx context.Context, rec *entity.Record) error
}

// BarcodeCheck — итог предварительной проверки штрихкода.
type BarcodeCheck struct {
	PreviousTested bool           // проходил ли штрихкод предыдущую стадию
	Duplicate      bool           // есть ли уже запись этой стадии
	Existing       map[string]any // существующая запись-дубликат, если есть
}

// BarcodeChecker проверяет штрихкод по данным предыдущей и текущей стадий.
type BarcodeChecker interface {
	CheckBarcode(ctx context.Context, barcode string) (*BarcodeCheck, error)
}
