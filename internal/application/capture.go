package app

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// Camera связывает источник кадров с отображением и накоплением серии.
// Вне захвата каждый кадр просто уходит на отображение; во время захвата
// кадры дополнительно копятся до нужного количества, затем усредняются.
// Одновременно идёт не больше одного накопления.
type Camera struct {
	source  port.FrameSource
	display port.Display
	logger  *zap.Logger
	method  string // mean либо median

	mu      sync.Mutex
	started bool
	active  bool
	target  int
	frames  []entity.Frame
	done    func(entity.AveragedFrame, error)
}

// NewCamera создаёт сервис захвата и регистрируется получателем кадров.
func NewCamera(source port.FrameSource, display port.Display, method string, logger *zap.Logger) *Camera {
	c := &Camera{
		source:  source,
		display: display,
		logger:  logger,
		method:  method,
	}
	source.SetHandler(c.handleFrame)
	return c
}

// Start запускает источник кадров.
func (c *Camera) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.source.Start(); err != nil {
		return fmt.Errorf("start frame source: %w", err)
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	return nil
}

// Streaming сообщает, идёт ли выдача кадров.
func (c *Camera) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// BeginCapture начинает накопление серии из target кадров. Уведомление done
// вызывается ровно один раз: с усреднённым кадром либо с ошибкой.
// Повторный запуск во время накопления отклоняется.
func (c *Camera) BeginCapture(target int, done func(entity.AveragedFrame, error)) error {
	if target < 1 {
		return fmt.Errorf("target frame count %d: %w", target, entity.ErrCaptureAborted)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return fmt.Errorf("frame source is not streaming: %w", entity.ErrCaptureAborted)
	}
	if c.active {
		return fmt.Errorf("still accumulating %d of %d frames: %w", len(c.frames), c.target, entity.ErrCaptureAlreadyInProgress)
	}

	c.active = true
	c.target = target
	c.frames = c.frames[:0]
	c.done = done

	c.logger.Info("capture sequence started", zap.Int("target_frames", target))
	return nil
}

// AbortCapture прерывает текущее накопление, если оно идёт.
// Вызывающий сможет начать захват заново с нуля.
func (c *Camera) AbortCapture() {
	c.finishCapture(entity.AveragedFrame{}, fmt.Errorf("capture cancelled by operator: %w", entity.ErrCaptureAborted))
}

// Stop прерывает накопление и останавливает источник. Идемпотентен
// и всегда освобождает устройство: вызывается на любом пути закрытия.
func (c *Camera) Stop() {
	c.AbortCapture()

	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	c.source.Stop()
}

// handleFrame принимает очередной кадр источника. Не блокируется дольше
// одного такта: усреднение выполняется на последнем кадре серии.
func (c *Camera) handleFrame(frame entity.Frame) {
	c.display.ShowFrame(frame)

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	if len(c.frames) > 0 && !frame.SameGeometry(c.frames[0]) {
		first := c.frames[0]
		c.mu.Unlock()
		c.finishCapture(entity.AveragedFrame{}, fmt.Errorf("frame is %dx%d, series is %dx%d: %w",
			frame.Width, frame.Height, first.Width, first.Height, entity.ErrInconsistentFrameGeometry))
		return
	}

	c.frames = append(c.frames, frame)
	got, want := len(c.frames), c.target
	c.mu.Unlock()

	c.display.ShowCaptureProgress(got, want)

	if got < want {
		return
	}

	c.mu.Lock()
	frames := c.frames
	method := c.method
	c.mu.Unlock()

	avg, err := entity.NewAveragedFrame(frames, method)
	c.finishCapture(avg, err)
}

// finishCapture завершает накопление и вызывает done вне блокировки,
// чтобы получатель мог сразу обращаться к камере.
func (c *Camera) finishCapture(avg entity.AveragedFrame, err error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	done := c.done
	c.active = false
	c.frames = nil
	c.done = nil
	c.mu.Unlock()

	if err != nil {
		metrics.CapturesFailed.Inc()
		c.logger.Warn("capture sequence failed", zap.Error(err))
	} else {
		metrics.CapturesCompleted.Inc()
		c.logger.Info("capture sequence completed",
			zap.Int("frames", avg.FrameCount),
			zap.Int("width", avg.Width),
			zap.Int("height", avg.Height),
		)
	}

	if done != nil {
		done(avg, err)
	}
}
