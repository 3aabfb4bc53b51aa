package vision

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// SimulatedEngine выдаёт вердикты по настроенной доле годных компонентов.
// Используется в режиме симуляции и в тестах, когда OpenCV недоступен.
type SimulatedEngine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedEngine создаёт движок с заданным зерном генератора.
func NewSimulatedEngine(seed int64) *SimulatedEngine {
	return &SimulatedEngine{rng: rand.New(rand.NewSource(seed))}
}

// Inspect возвращает вердикт по каждому компоненту: компонент проходит
// с вероятностью его PassRate. Размечает области брака на копии кадра.
func (e *SimulatedEngine) Inspect(ctx context.Context, specs []entity.ComponentSpec, frame entity.AveragedFrame) (*entity.InspectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frame.Pixels) == 0 || frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("malformed frame %dx%d: %w", frame.Width, frame.Height, entity.ErrInspectionEngine)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no component specifications: %w", entity.ErrInspectionEngine)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	annotated := entity.Frame{
		Width:     frame.Width,
		Height:    frame.Height,
		Pixels:    append([]byte(nil), frame.Pixels...),
		Timestamp: frame.CapturedAt,
	}

	results := make([]entity.ComponentResult, 0, len(specs))
	regions := make([]entity.Region, 0, len(specs))

	band := frame.Width / len(specs)
	for i, spec := range specs {
		rate := spec.PassRate
		if rate <= 0 {
			rate = 0.9
		}
		passed := e.rng.Float64() < rate
		results = append(results, entity.NewComponentResult(spec.Name, passed))

		region := entity.Region{X: i * band, Y: 0, Width: band, Height: frame.Height}
		regions = append(regions, region)
		drawRect(&annotated, region, passed)
	}

	return &entity.InspectionResult{
		Results:   results,
		Regions:   regions,
		Annotated: annotated,
	}, nil
}

// drawRect обводит область зелёной рамкой для годного компонента
// и красной для брака.
func drawRect(f *entity.Frame, r entity.Region, passed bool) {
	var b, g, rd byte = 0, 0, 220
	if passed {
		b, g, rd = 0, 200, 0
	}

	set := func(x, y int) {
		if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
			return
		}
		i := (y*f.Width + x) * entity.FrameChannels
		f.Pixels[i] = b
		f.Pixels[i+1] = g
		f.Pixels[i+2] = rd
	}

	for x := r.X; x < r.X+r.Width; x++ {
		set(x, r.Y)
		set(x, r.Y+r.Height-1)
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		set(r.X, y)
		set(r.X+r.Width-1, y)
	}
}

var _ port.InspectionEngine = (*SimulatedEngine)(nil)
