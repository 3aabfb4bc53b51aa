//go:build !gocv
// +build !gocv

package camera

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// LiveSource — заглушка для сборки без тега gocv.
type LiveSource struct {
	deviceID int
	logger   *zap.Logger

	mu      sync.Mutex
	handler func(entity.Frame)
}

// NewLiveSource создаёт заглушку источника (без OpenCV).
func NewLiveSource(deviceID, width, height, fps int, logger *zap.Logger) *LiveSource {
	_ = width
	_ = height
	_ = fps
	return &LiveSource{deviceID: deviceID, logger: logger}
}

// Probe возвращает ошибку, если сборка без тега gocv: станция
// переключится на симулятор.
func Probe(deviceID int) error {
	return fmt.Errorf("gocv build tag is not enabled for device %d: %w", deviceID, entity.ErrDeviceUnavailable)
}

// SetHandler регистрирует получателя кадров.
func (s *LiveSource) SetHandler(handler func(entity.Frame)) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Start возвращает ошибку, если сборка без тега gocv.
func (s *LiveSource) Start() error {
	return fmt.Errorf("gocv build tag is not enabled: %w", entity.ErrDeviceUnavailable)
}

// Stop ничего не делает: устройство не открывалось.
func (s *LiveSource) Stop() {}

var _ port.FrameSource = (*LiveSource)(nil)
