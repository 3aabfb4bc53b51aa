package port

import (
	"context"

	"inspection-station/internal/domain/entity"
)

// InspectionEngine — непрозрачный алгоритм инспекции: по усреднённому кадру
// и спецификациям компонентов возвращает вердикты и размеченный кадр.
type InspectionEngine interface {
	Inspect(ctx context.Context, specs []entity.ComponentSpec, frame entity.AveragedFrame) (*entity.InspectionResult, error)
}
