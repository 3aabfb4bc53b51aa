package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// PostgresRecordRepository хранит записи инспекции в Postgres:
// по таблице на шаг, штрихкод — ключ, повторная запись перезаписывает
// существующую. Имена таблиц и колонок приходят из проверенной схемы
// конфигурации, произвольные значения сюда не попадают.
type PostgresRecordRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRecordRepository создаёт репозиторий и проверяет соединение.
func NewPostgresRecordRepository(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresRecordRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRecordRepository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Upsert вставляет запись либо обновляет существующую по штрихкоду.
func (r *PostgresRecordRepository) Upsert(ctx context.Context, rec *entity.Record) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cols := rec.Columns()
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	quoted := make([]string, 0, len(names))
	holders := make([]string, 0, len(names))
	updates := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for i, name := range names {
		q := pgx.Identifier{name}.Sanitize()
		quoted = append(quoted, q)
		holders = append(holders, fmt.Sprintf("$%d", i+1))
		if name != "Barcode" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
		}
		args = append(args, cols[name])
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT ("Barcode") DO UPDATE SET %s`,
		pgx.Identifier{strings.ToLower(rec.Table)}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(holders, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert record into %s: %w", rec.Table, err)
	}

	r.logger.Debug("record upserted",
		zap.String("table", rec.Table),
		zap.String("barcode", rec.Barcode),
	)
	return nil
}

// Latest возвращает последнюю запись таблицы по штрихкоду, nil — если её нет.
func (r *PostgresRecordRepository) Latest(ctx context.Context, table, barcode string) (map[string]any, error) {
	query := fmt.Sprintf(
		`SELECT * FROM %s WHERE "Barcode" = $1 ORDER BY "DT" DESC LIMIT 1`,
		pgx.Identifier{strings.ToLower(table)}.Sanitize(),
	)

	rows, err := r.pool.Query(ctx, query, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating rows: %w", err)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	out := make(map[string]any, len(values))
	for i, fd := range rows.FieldDescriptions() {
		out[string(fd.Name)] = values[i]
	}
	return out, nil
}

// Delete удаляет записи таблицы по штрихкоду.
func (r *PostgresRecordRepository) Delete(ctx context.Context, table, barcode string) error {
	query := fmt.Sprintf(
		`DELETE FROM %s WHERE "Barcode" = $1`,
		pgx.Identifier{strings.ToLower(table)}.Sanitize(),
	)
	if _, err := r.pool.Exec(ctx, query, barcode); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// HealthCheck проверяет доступность базы.
func (r *PostgresRecordRepository) HealthCheck(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает пул соединений.
func (r *PostgresRecordRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

var _ port.RecordRepository = (*PostgresRecordRepository)(nil)
