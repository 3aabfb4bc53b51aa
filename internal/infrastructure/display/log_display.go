package display

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

var _ port.Display = (*LogDisplay)(nil)

// LogDisplay — вывод для оператора через лог. Станция без локального
// экрана использует его как единственный дисплей; живые кадры
// прореживаются, чтобы не затапливать лог на полной частоте камеры.
type LogDisplay struct {
	logger *zap.Logger

	mu        sync.Mutex
	lastFrame time.Time
	interval  time.Duration
}

// NewLogDisplay создаёт дисплей с прореживанием живых кадров до одного
// сообщения в interval. При interval <= 0 кадры не логируются вовсе.
func NewLogDisplay(logger *zap.Logger, interval time.Duration) *LogDisplay {
	return &LogDisplay{
		logger:   logger,
		interval: interval,
	}
}

func (d *LogDisplay) ShowFrame(frame entity.Frame) {
	if d.interval <= 0 {
		return
	}

	d.mu.Lock()
	now := time.Now()
	if now.Sub(d.lastFrame) < d.interval {
		d.mu.Unlock()
		return
	}
	d.lastFrame = now
	d.mu.Unlock()

	d.logger.Debug("live frame",
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height),
		zap.Time("timestamp", frame.Timestamp),
	)
}

func (d *LogDisplay) ShowCaptureProgress(got, want int) {
	d.logger.Info("capture progress", zap.Int("got", got), zap.Int("want", want))
}

func (d *LogDisplay) ShowStepResult(summary string, annotated entity.Frame) {
	d.logger.Info("step result",
		zap.String("summary", summary),
		zap.Int("width", annotated.Width),
		zap.Int("height", annotated.Height),
	)
}

func (d *LogDisplay) ShowMessage(text string) {
	d.logger.Info("operator message", zap.String("text", text))
}
