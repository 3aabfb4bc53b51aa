package port

import "inspection-station/internal/domain/entity"

// FrameSource — источник кадров: живая камера либо симулятор.
// Вариант выбирается один раз при запуске станции, не посреди сессии.
type FrameSource interface {
	// Start начинает выдачу кадров с настроенной частотой.
	Start() error

	// Stop останавливает выдачу и освобождает устройство.
	// Идемпотентен и безопасен, даже если Start не вызывался.
	Stop()

	// SetHandler регистрирует единственного получателя кадров.
	// Вызывается до Start.
	SetHandler(handler func(entity.Frame))
}
