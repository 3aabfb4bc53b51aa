package app

import (
	"context"
	"sync"
	"time"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// fakeSource — источник кадров, которым управляет тест.
type fakeSource struct {
	mu      sync.Mutex
	handler func(entity.Frame)
	started bool
	stopped int
}

func (f *fakeSource) SetHandler(h func(entity.Frame)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

// Push выдаёт кадр получателю синхронно, как это делает цикл источника.
func (f *fakeSource) Push(frame entity.Frame) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(frame)
	}
}

func (f *fakeSource) PushFrames(n, width, height int) {
	for i := 0; i < n; i++ {
		f.Push(entity.Frame{
			Width:     width,
			Height:    height,
			Pixels:    make([]byte, width*height*entity.FrameChannels),
			Timestamp: time.Now(),
		})
	}
}

// fakeDisplay запоминает всё, что увидел бы оператор.
type fakeDisplay struct {
	mu        sync.Mutex
	messages  []string
	summaries []string
	progress  [][2]int
}

func (d *fakeDisplay) ShowFrame(entity.Frame) {}

func (d *fakeDisplay) ShowCaptureProgress(got, want int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress = append(d.progress, [2]int{got, want})
}

func (d *fakeDisplay) ShowStepResult(summary string, _ entity.Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.summaries = append(d.summaries, summary)
}

func (d *fakeDisplay) ShowMessage(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, text)
}

func (d *fakeDisplay) Summaries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.summaries...)
}

func (d *fakeDisplay) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.messages...)
}

// scriptedEngine выдаёт заранее заданные вердикты по очереди.
type scriptedEngine struct {
	mu      sync.Mutex
	scripts []map[string]bool // имя компонента -> годен
	err     error
	calls   int
}

func (e *scriptedEngine) enqueue(verdicts map[string]bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts = append(e.scripts, verdicts)
}

func (e *scriptedEngine) Inspect(_ context.Context, specs []entity.ComponentSpec, frame entity.AveragedFrame) (*entity.InspectionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	if e.err != nil {
		return nil, e.err
	}

	verdicts := map[string]bool{}
	if len(e.scripts) > 0 {
		verdicts = e.scripts[0]
		e.scripts = e.scripts[1:]
	}

	results := make([]entity.ComponentResult, 0, len(specs))
	for _, spec := range specs {
		passed, ok := verdicts[spec.Name]
		if !ok {
			passed = true
		}
		results = append(results, entity.NewComponentResult(spec.Name, passed))
	}
	return &entity.InspectionResult{
		Results: results,
		Annotated: entity.Frame{
			Width:  frame.Width,
			Height: frame.Height,
			Pixels: frame.Pixels,
		},
	}, nil
}

// fakeSubmitter запоминает отправленные записи; ошибка задаётся тестом.
type fakeSubmitter struct {
	mu      sync.Mutex
	records []*entity.Record
	err     error
}

func (f *fakeSubmitter) SubmitStep(_ context.Context, rec *entity.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeSubmitter) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSubmitter) Records() []*entity.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Record(nil), f.records...)
}

// fakeChecker возвращает заранее заданный итог проверки штрихкода.
type fakeChecker struct {
	check port.BarcodeCheck
	err   error
}

func (f *fakeChecker) CheckBarcode(context.Context, string) (*port.BarcodeCheck, error) {
	if f.err != nil {
		return nil, f.err
	}
	check := f.check
	return &check, nil
}

// fakeNotifier сигналит в канал при каждом уведомлении.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fired: make(chan struct{}, 8)}
}

func (f *fakeNotifier) NotifyFailure(_ context.Context, barcode, summary string) error {
	f.mu.Lock()
	f.calls = append(f.calls, barcode+": "+summary)
	f.mu.Unlock()
	f.fired <- struct{}{}
	return nil
}

func (f *fakeNotifier) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
