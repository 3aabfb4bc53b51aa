package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inspection-station/internal/domain/entity"
)

func bottomRecord(barcode string, result int) *entity.Record {
	return &entity.Record{
		Table:     "INLINEINSPECTIONBOTTOM",
		Barcode:   barcode,
		DT:        time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		ProcessID: "INLINE_BOTTOM_PROC_001",
		StationID: "INLINE_BOTTOM_STATION_01",
		Components: []entity.RecordColumn{
			{Name: "Antenna", Value: result, Manual: result},
		},
		Result:       result,
		ManualResult: result,
	}
}

func TestMemoryRepositoryUpsertAndLatest(t *testing.T) {
	repo := NewMemoryRecordRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, bottomRecord("TEST123", 1)))

	rec, err := repo.Latest(ctx, "INLINEINSPECTIONBOTTOM", "TEST123")
	require.NoError(t, err)
	require.Equal(t, "TEST123", rec["Barcode"])
	require.Equal(t, 1, rec["Antenna"])
	require.Equal(t, 1, rec["Result"])
}

func TestMemoryRepositoryUpsertOverwritesByBarcode(t *testing.T) {
	repo := NewMemoryRecordRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, bottomRecord("TEST123", 0)))
	require.NoError(t, repo.Upsert(ctx, bottomRecord("TEST123", 1)))

	rec, err := repo.Latest(ctx, "INLINEINSPECTIONBOTTOM", "TEST123")
	require.NoError(t, err)
	require.Equal(t, 1, rec["Result"])
}

func TestMemoryRepositoryLatestMissing(t *testing.T) {
	repo := NewMemoryRecordRepository()

	rec, err := repo.Latest(context.Background(), "INLINEINSPECTIONBOTTOM", "ABSENT")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRecordRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, bottomRecord("TEST123", 1)))

	rec, err := repo.Latest(ctx, "INLINEINSPECTIONBOTTOM", "TEST123")
	require.NoError(t, err)
	rec["Result"] = 0

	again, err := repo.Latest(ctx, "INLINEINSPECTIONBOTTOM", "TEST123")
	require.NoError(t, err)
	require.Equal(t, 1, again["Result"])
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRecordRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, bottomRecord("TEST123", 1)))
	require.NoError(t, repo.Delete(ctx, "INLINEINSPECTIONBOTTOM", "TEST123"))

	rec, err := repo.Latest(ctx, "INLINEINSPECTIONBOTTOM", "TEST123")
	require.NoError(t, err)
	require.Nil(t, rec)

	// Удаление несуществующего безвредно.
	require.NoError(t, repo.Delete(ctx, "NOPE", "TEST123"))
}
