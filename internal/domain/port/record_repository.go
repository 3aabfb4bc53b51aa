package port

import (
	"context"

	"inspection-station/internal/domain/entity"
)

// RecordRepository — хранилище записей инспекции для API-сервера.
// Запись с тем же штрихкодом в той же таблице перезаписывается,
// штрихкод служит ключом соединения между стадиями.
type RecordRepository interface {
	// Upsert вставляет запись либо обновляет существующую по штрихкоду.
	Upsert(ctx context.Context, rec *entity.Record) error

	// Latest возвращает последнюю запись таблицы по штрихкоду,
	// nil — если записи нет.
	Latest(ctx context.Context, table, barcode string) (map[string]any, error)

	// Delete удаляет записи таблицы по штрихкоду.
	Delete(ctx context.Context, table, barcode string) error

	// HealthCheck проверяет доступность хранилища.
	HealthCheck(ctx context.Context) error
}
