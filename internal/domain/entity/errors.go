package entity

import "errors"

// Ошибки доменного уровня. Сервисы оборачивают их через fmt.Errorf("...: %w", err),
// проверка на стороне вызывающего — errors.Is.
var (
	// ErrInvalidBarcode — пустой или некорректный штрихкод.
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrDeviceUnavailable — камера не открывается, переключаемся на симуляцию.
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	// ErrCaptureAborted — захват прерван до накопления всех кадров.
	ErrCaptureAborted = errors.New("capture aborted")

	// ErrInconsistentFrameGeometry — кадры в серии имеют разные размеры.
	ErrInconsistentFrameGeometry = errors.New("inconsistent frame geometry")

	// ErrCaptureAlreadyInProgress — повторный запуск захвата во время накопления.
	ErrCaptureAlreadyInProgress = errors.New("capture already in progress")

	// ErrInspectionEngine — алгоритм не смог выдать вердикт.
	ErrInspectionEngine = errors.New("inspection engine error")

	// ErrOverrideAlreadyApplied — ручной вердикт уже был применён.
	ErrOverrideAlreadyApplied = errors.New("override already applied")

	// ErrPriorStepNotSubmitted — более ранний шаг ещё не подтверждён сервером.
	ErrPriorStepNotSubmitted = errors.New("prior step not submitted")

	// ErrIllegalTransition — действие оператора недопустимо в текущем состоянии.
	ErrIllegalTransition = errors.New("illegal transition")
)
