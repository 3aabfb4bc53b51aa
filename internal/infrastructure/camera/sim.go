package camera

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// SimulatedSource генерирует анимированный тестовый кадр без камеры.
// Используется, когда устройства нет, и в тестах.
type SimulatedSource struct {
	width  int
	height int
	fps    int
	logger *zap.Logger

	mu      sync.Mutex
	handler func(entity.Frame)
	running bool
	done    chan struct{}
	tick    int
}

// NewSimulatedSource создаёт симулятор с заданной геометрией и частотой кадров.
func NewSimulatedSource(width, height, fps int, logger *zap.Logger) *SimulatedSource {
	if fps <= 0 {
		fps = 30
	}
	return &SimulatedSource{
		width:  width,
		height: height,
		fps:    fps,
		logger: logger,
	}
}

// SetHandler регистрирует получателя кадров.
func (s *SimulatedSource) SetHandler(handler func(entity.Frame)) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Start запускает выдачу кадров с настроенной частотой.
func (s *SimulatedSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.done = make(chan struct{})

	interval := time.Second / time.Duration(s.fps)
	go s.run(interval, s.done)

	s.logger.Info("simulated frame source started",
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Int("fps", s.fps),
	)
	return nil
}

func (s *SimulatedSource) run(interval time.Duration, done chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			handler := s.handler
			tick := s.tick
			s.tick++
			s.mu.Unlock()

			if handler == nil {
				continue
			}
			frame := s.generateFrame(tick)
			metrics.FramesProduced.Inc()
			handler(frame)
		}
	}
}

// Stop останавливает выдачу. Идемпотентен.
func (s *SimulatedSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	s.logger.Info("simulated frame source stopped")
}

// generateFrame рисует градиентный фон с движущимся кругом,
// детерминированный по номеру такта.
func (s *SimulatedSource) generateFrame(tick int) entity.Frame {
	pixels := make([]byte, s.width*s.height*entity.FrameChannels)

	cx := (tick * 7) % s.width
	cy := s.height / 2
	r := s.height / 8
	r2 := r * r

	for y := 0; y < s.height; y++ {
		shade := byte(40 + 120*y/s.height)
		row := y * s.width * entity.FrameChannels
		for x := 0; x < s.width; x++ {
			i := row + x*entity.FrameChannels
			pixels[i] = shade
			pixels[i+1] = shade
			pixels[i+2] = shade

			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				pixels[i] = 60
				pixels[i+1] = 200
				pixels[i+2] = 230
			}
		}
	}

	return entity.Frame{
		Width:     s.width,
		Height:    s.height,
		Pixels:    pixels,
		Timestamp: time.Now(),
	}
}

var _ port.FrameSource = (*SimulatedSource)(nil)
