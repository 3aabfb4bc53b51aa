package port

import "inspection-station/internal/domain/entity"

// Display — приёмник того, что видит оператор. Реализация не должна
// блокироваться дольше одного такта источника кадров.
type Display interface {
	// ShowFrame показывает живой кадр.
	ShowFrame(frame entity.Frame)

	// ShowCaptureProgress показывает прогресс накопления серии кадров.
	ShowCaptureProgress(got, want int)

	// ShowStepResult показывает сводку завершённого шага и размеченный кадр.
	ShowStepResult(summary string, annotated entity.Frame)

	// ShowMessage показывает сообщение оператору.
	ShowMessage(text string)
}
