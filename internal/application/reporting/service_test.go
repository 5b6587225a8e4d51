package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/infrastructure/persistence"
)

func newTestService(t *testing.T) (*Service, repositories.RollupRepository) {
	t.Helper()

	db, err := database.NewRaisDB(":memory:")
	require.NoError(t, err, "Failed to create RaisDB")
	t.Cleanup(func() { db.Close() })

	summaries := persistence.NewSummaryRepository(db)
	defects := persistence.NewDefectRepository(db)
	rollups := persistence.NewRollupRepository(db)

	ctx := context.Background()
	day1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, summaries.UpsertProduction(ctx, &repositories.ProductionSummary{
		SummaryDate: day1, Granularity: repositories.GranularityDay,
		ProducedQty: 1000, DispatchedQty: 900,
		SourceFile: "production.xlsx", SourceSheet: "Jan", SourceRows: []int{2},
		UploadUUID: "upl-1",
	}))
	require.NoError(t, summaries.UpsertStageInspection(ctx, &repositories.StageInspectionSummary{
		SummaryDate: day1, Granularity: repositories.GranularityDay, Stage: repositories.StageVisual,
		InspectedQty: 100, AcceptedQty: 95, RejectedQty: 5,
		SourceFile: "visual.xlsx", SourceSheet: "Jan", SourceRows: []int{2},
		UploadUUID: "upl-2",
	}))
	require.NoError(t, summaries.UpsertStageInspection(ctx, &repositories.StageInspectionSummary{
		SummaryDate: day2, Granularity: repositories.GranularityDay, Stage: repositories.StageAssembly,
		InspectedQty: 200, AcceptedQty: 180, RejectedQty: 20,
		SourceFile: "assembly.xlsx", SourceSheet: "Feb", SourceRows: []int{3},
		UploadUUID: "upl-3",
	}))

	require.NoError(t, defects.BatchInsert(ctx, []repositories.DefectOccurrence{
		{OccurredOn: day1, Granularity: repositories.GranularityDay, Stage: repositories.StageVisual,
			DefectCode: "COAG", Quantity: 3, UploadUUID: "upl-2",
			SourceFile: "visual.xlsx", SourceSheet: "Jan", SourceRow: 2, SourceColumn: "Coag"},
		{OccurredOn: day1, Granularity: repositories.GranularityDay, Stage: repositories.StageVisual,
			DefectCode: "RAISED_WIRE", Quantity: 2, UploadUUID: "upl-2",
			SourceFile: "visual.xlsx", SourceSheet: "Jan", SourceRow: 2, SourceColumn: "Raised Wire"},
		{OccurredOn: day2, Granularity: repositories.GranularityDay, Stage: repositories.StageAssembly,
			DefectCode: "COAG", Quantity: 7, UploadUUID: "upl-3",
			SourceFile: "assembly.xlsx", SourceSheet: "Feb", SourceRow: 3, SourceColumn: "Coag"},
	}))

	require.NoError(t, rollups.MarkDirty(ctx, []string{"2025-01", "2025-02"}))
	_, err = rollups.RefreshDirty(ctx)
	require.NoError(t, err, "Failed to refresh rollups")

	return NewService(summaries, defects, rollups), rollups
}

// TestProductionSummaries проверяет выборку сводок производства с фильтром по датам
func TestProductionSummaries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.ProductionSummaries(ctx, repositories.SummaryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, float64(1000), all[0].ProducedQty)

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	none, err := svc.ProductionSummaries(ctx, repositories.SummaryFilter{DateFrom: &from})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestStageInspectionSummaries проверяет фильтр по этапу
func TestStageInspectionSummaries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.StageInspectionSummaries(ctx, repositories.SummaryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visual, err := svc.StageInspectionSummaries(ctx, repositories.SummaryFilter{Stage: repositories.StageVisual})
	require.NoError(t, err)
	require.Len(t, visual, 1)
	assert.Equal(t, float64(100), visual[0].InspectedQty)
	assert.Equal(t, float64(5), visual[0].RejectedQty)
}

// TestDefectOccurrences проверяет постраничную выборку фактов дефектов
func TestDefectOccurrences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, total, err := svc.DefectOccurrences(ctx, repositories.DefectFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	page, total, err := svc.DefectOccurrences(ctx, repositories.DefectFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	coag, _, err := svc.DefectOccurrences(ctx, repositories.DefectFilter{Codes: []string{"COAG"}})
	require.NoError(t, err)
	assert.Len(t, coag, 2)
}

// TestTopDefectCodes проверяет топ кодов и приведение лимита
func TestTopDefectCodes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	top, err := svc.TopDefectCodes(ctx, repositories.DefectFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	// COAG лидирует: 3 + 7 = 10 против 2 у RAISED_WIRE
	assert.Equal(t, "COAG", top[0].DefectCode)
	assert.Equal(t, float64(10), top[0].Quantity)
	assert.EqualValues(t, 2, top[0].Count)

	one, err := svc.TopDefectCodes(ctx, repositories.DefectFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

// TestRollups проверяет месячные своды за диапазон
func TestRollups(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	defectRollup, err := svc.DefectRollup(ctx, "2025-01", "2025-02")
	require.NoError(t, err)
	// (2025-01, VISUAL, COAG), (2025-01, VISUAL, RAISED_WIRE), (2025-02, ASSEMBLY, COAG)
	assert.Len(t, defectRollup, 3)

	janOnly, err := svc.DefectRollup(ctx, "2025-01", "2025-01")
	require.NoError(t, err)
	assert.Len(t, janOnly, 2)

	stageRollup, err := svc.StageRollup(ctx, "2025-01", "2025-02")
	require.NoError(t, err)
	assert.Len(t, stageRollup, 2)
	for _, row := range stageRollup {
		if row.Stage == repositories.StageVisual {
			assert.Equal(t, float64(100), row.InspectedQty)
		}
	}
}
