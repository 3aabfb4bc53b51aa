//go:build gocv
// +build gocv

package camera

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// LiveSource читает кадры с физической камеры через OpenCV.
type LiveSource struct {
	deviceID int
	width    int
	height   int
	fps      int
	logger   *zap.Logger

	mu      sync.Mutex
	handler func(entity.Frame)
	capture *gocv.VideoCapture
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewLiveSource создаёт источник для устройства с заданным индексом.
func NewLiveSource(deviceID, width, height, fps int, logger *zap.Logger) *LiveSource {
	if fps <= 0 {
		fps = 30
	}
	return &LiveSource{
		deviceID: deviceID,
		width:    width,
		height:   height,
		fps:      fps,
		logger:   logger,
	}
}

// Probe проверяет, открывается ли устройство. Вызывается на старте станции:
// при ошибке конфигурация переключается на симулятор.
func Probe(deviceID int) error {
	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return fmt.Errorf("open device %d: %w", deviceID, entity.ErrDeviceUnavailable)
	}
	defer cap.Close()
	if !cap.IsOpened() {
		return fmt.Errorf("device %d did not open: %w", deviceID, entity.ErrDeviceUnavailable)
	}
	return nil
}

// SetHandler регистрирует получателя кадров.
func (s *LiveSource) SetHandler(handler func(entity.Frame)) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Start открывает устройство и запускает чтение кадров.
func (s *LiveSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	cap, err := gocv.OpenVideoCapture(s.deviceID)
	if err != nil {
		return fmt.Errorf("open device %d: %w", s.deviceID, entity.ErrDeviceUnavailable)
	}
	if !cap.IsOpened() {
		cap.Close()
		return fmt.Errorf("device %d did not open: %w", s.deviceID, entity.ErrDeviceUnavailable)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.height))

	s.capture = cap
	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.run(time.Second/time.Duration(s.fps), s.done)

	s.logger.Info("live frame source started", zap.Int("device_id", s.deviceID))
	return nil
}

func (s *LiveSource) run(interval time.Duration, done chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			cap := s.capture
			handler := s.handler
			s.mu.Unlock()

			if cap == nil || handler == nil {
				continue
			}
			if ok := cap.Read(&mat); !ok || mat.Empty() {
				s.logger.Warn("failed to read frame from device")
				continue
			}

			frame := entity.Frame{
				Width:     mat.Cols(),
				Height:    mat.Rows(),
				Pixels:    append([]byte(nil), mat.ToBytes()...),
				Timestamp: time.Now(),
			}
			metrics.FramesProduced.Inc()
			handler(frame)
		}
	}
}

// Stop останавливает чтение и освобождает устройство. Идемпотентен,
// безопасен на пути закрытия окна, даже если Start не вызывался.
// Устройство закрывается только после выхода цикла чтения: Read на
// закрытом VideoCapture обращается к освобождённому нативному хендлу.
func (s *LiveSource) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	cap := s.capture
	s.capture = nil
	s.mu.Unlock()

	s.wg.Wait()
	if cap != nil {
		cap.Close()
	}
	s.logger.Info("live frame source stopped")
}

var _ port.FrameSource = (*LiveSource)(nil)
