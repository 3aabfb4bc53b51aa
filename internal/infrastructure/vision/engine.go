//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// GoCVEngine проверяет компоненты по усреднённому кадру через OpenCV.
// Кадр делится на вертикальные полосы по числу компонентов; компонент
// считается присутствующим, если доля граничных пикселей в его полосе
// не ниже порога.
type GoCVEngine struct {
	MinEdgeRatio float64
	CannyLow     float32
	CannyHigh    float32
}

// NewGoCVEngine создаёт движок с порогами по умолчанию.
func NewGoCVEngine() *GoCVEngine {
	return &GoCVEngine{
		MinEdgeRatio: 0.008,
		CannyLow:     50,
		CannyHigh:    150,
	}
}

// Inspect анализирует кадр и возвращает вердикты с размеченной копией кадра.
func (e *GoCVEngine) Inspect(ctx context.Context, specs []entity.ComponentSpec, frame entity.AveragedFrame) (*entity.InspectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frame.Pixels) == 0 || frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("malformed frame %dx%d: %w", frame.Width, frame.Height, entity.ErrInspectionEngine)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no component specifications: %w", entity.ErrInspectionEngine)
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pixels)
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", entity.ErrInspectionEngine)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty frame: %w", entity.ErrInspectionEngine)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, e.CannyLow, e.CannyHigh)

	annotated := mat.Clone()
	defer annotated.Close()

	results := make([]entity.ComponentResult, 0, len(specs))
	regions := make([]entity.Region, 0, len(specs))

	band := frame.Width / len(specs)
	for i, spec := range specs {
		roi := image.Rect(i*band, 0, (i+1)*band, frame.Height)
		sub := edges.Region(roi)
		ratio := float64(gocv.CountNonZero(sub)) / float64(roi.Dx()*roi.Dy())
		sub.Close()

		passed := ratio >= e.MinEdgeRatio
		results = append(results, entity.NewComponentResult(spec.Name, passed))
		regions = append(regions, entity.Region{X: roi.Min.X, Y: 0, Width: roi.Dx(), Height: roi.Dy()})

		c := color.RGBA{0, 200, 0, 0}
		if !passed {
			c = color.RGBA{220, 0, 0, 0}
		}
		gocv.Rectangle(&annotated, roi, c, 2)
	}

	out := entity.Frame{
		Width:     annotated.Cols(),
		Height:    annotated.Rows(),
		Pixels:    append([]byte(nil), annotated.ToBytes()...),
		Timestamp: frame.CapturedAt,
	}

	return &entity.InspectionResult{
		Results:   results,
		Regions:   regions,
		Annotated: out,
	}, nil
}

var _ port.InspectionEngine = (*GoCVEngine)(nil)
