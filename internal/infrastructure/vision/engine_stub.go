//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// GoCVEngine — заглушка для сборки без тега gocv.
type GoCVEngine struct {
	MinEdgeRatio float64
	CannyLow     float32
	CannyHigh    float32
}

// NewGoCVEngine создаёт движок-заглушку (без OpenCV).
func NewGoCVEngine() *GoCVEngine {
	return &GoCVEngine{
		MinEdgeRatio: 0.008,
		CannyLow:     50,
		CannyHigh:    150,
	}
}

// Inspect возвращает ошибку, если сборка без тега gocv.
func (e *GoCVEngine) Inspect(ctx context.Context, specs []entity.ComponentSpec, frame entity.AveragedFrame) (*entity.InspectionResult, error) {
	_ = ctx
	_ = specs
	_ = frame
	return nil, fmt.Errorf("gocv build tag is not enabled: %w", entity.ErrInspectionEngine)
}

var _ port.InspectionEngine = (*GoCVEngine)(nil)
