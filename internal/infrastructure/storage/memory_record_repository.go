package storage

import (
	"context"
	"sync"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// MemoryRecordRepository — in-memory хранилище записей инспекции.
// Используется в тестах и при запуске станции без базы данных.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]map[string]map[string]any // таблица -> штрихкод -> запись
}

// NewMemoryRecordRepository создаёт новое in-memory хранилище.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{
		records: make(map[string]map[string]map[string]any),
	}
}

// Upsert вставляет запись либо перезаписывает существующую по штрихкоду.
func (r *MemoryRecordRepository) Upsert(ctx context.Context, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.records[rec.Table]
	if !ok {
		table = make(map[string]map[string]any)
		r.records[rec.Table] = table
	}
	table[rec.Barcode] = rec.Columns()
	return nil
}

// Latest возвращает запись таблицы по штрихкоду, nil — если записи нет.
func (r *MemoryRecordRepository) Latest(ctx context.Context, table, barcode string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, ok := r.records[table]
	if !ok {
		return nil, nil
	}
	rec, ok := rows[barcode]
	if !ok {
		return nil, nil
	}

	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

// Delete удаляет записи таблицы по штрихкоду.
func (r *MemoryRecordRepository) Delete(ctx context.Context, table, barcode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rows, ok := r.records[table]; ok {
		delete(rows, barcode)
	}
	return nil
}

// HealthCheck всегда успешен для памяти.
func (r *MemoryRecordRepository) HealthCheck(ctx context.Context) error {
	return nil
}

// Проверка реализации интерфейса
var _ port.RecordRepository = (*MemoryRecordRepository)(nil)
