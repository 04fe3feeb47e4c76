package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/internal/database"
	"github.com/BaSui01/tokenbench/testutil/fixtures"
	"github.com/BaSui01/tokenbench/types"
)

// =============================================================================
// 🧪 SQLite（内存）集成测试
// =============================================================================

func newSQLiteStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	pm, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, Name: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pm.Close() })

	s := New(pm, opts...)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

func testRun(id string, started time.Time) *experiment.Run {
	ms := fixtures.Derived("EN", append(fixtures.Scenario("tok"),
		fixtures.Raw("s1", "DE", "tok", 12, 44),
		fixtures.Raw("s2", "PL", "tok", 5, 10), // 无基准 → NULL
	))
	return &experiment.Run{
		ID:           id,
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
		Settings:     fixtures.Settings("tok"),
		Tokenizers:   []string{"tok"},
		Sentences:    2,
		Measurements: ms,
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newSQLiteStore(t, WithBatchSize(2), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()
	run := testRun("run-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.LoadMeasurements(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, len(run.Measurements))

	for i, m := range got {
		want := run.Measurements[i]
		want.Tokens = nil
		assert.Equal(t, want, m, "measurement %d", i)
	}

	// NULL 列还原为 NotApplicable，Computed(0) 保持 Computed
	assert.Equal(t, experiment.Computed(0), got[0].Overhead)
	assert.Equal(t, experiment.NotApplicable, got[3].Overhead)
}

func TestStore_GetRunAndList(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, testRun("old", base)))
	require.NoError(t, s.SaveRun(ctx, testRun("new", base.Add(time.Hour))))

	rec, err := s.GetRun(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "EN", rec.Baseline)
	assert.Equal(t, "PL", rec.Primary)
	assert.Equal(t, []string{"EN", "PL", "DE"}, rec.Languages)
	assert.Equal(t, []string{"tok"}, rec.Tokenizers)
	assert.Equal(t, 4, rec.Measurements)
	assert.WithinDuration(t, base, rec.StartedAt, time.Second)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestStore_Errors(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	_, err := s.LoadMeasurements(ctx, "missing")
	assert.True(t, types.IsErrorCode(err, types.ErrStoreFailed))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.True(t, types.IsErrorCode(s.SaveRun(ctx, nil), types.ErrStoreFailed))
	assert.True(t, types.IsErrorCode(s.SaveRun(ctx, &experiment.Run{}), types.ErrStoreFailed))

	run := testRun("dup", time.Now())
	require.NoError(t, s.SaveRun(ctx, run))
	err = s.SaveRun(ctx, run)
	assert.True(t, types.IsErrorCode(err, types.ErrStoreFailed), "duplicate primary key")

	got, err := s.LoadMeasurements(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got, len(run.Measurements), "failed save leaves no partial rows")
}

func TestStore_EmptyRun(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	run := &experiment.Run{ID: "empty", StartedAt: time.Now(), Settings: fixtures.Settings()}

	require.NoError(t, s.SaveRun(ctx, run))
	got, err := s.LoadMeasurements(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// =============================================================================
// 🧪 sqlmock（PostgreSQL 方言）
// =============================================================================

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)

	pm, err := database.NewPoolManager(gormDB, database.DefaultPoolConfig(), zap.NewNop())
	require.NoError(t, err)
	return New(pm), mock
}

func TestStore_SaveRun_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "runs"`).WillReturnError(errors.New("permission denied for table runs"))
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), testRun("run-1", time.Now()))
	require.Error(t, err)
	assert.Equal(t, types.ErrStoreFailed, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "insert run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListRuns_Postgres(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "baseline", "primary", "languages", "tokenizers", "sentences", "measurements", "started_at", "finished_at", "created_at"}).
		AddRow("run-1", "EN", "PL", `["EN","PL"]`, `["tok"]`, 2, 4, started, started, started)
	mock.ExpectQuery(`SELECT \* FROM "runs" ORDER BY started_at DESC`).WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"EN", "PL"}, runs[0].Languages)
	assert.Equal(t, 4, runs[0].Measurements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListRuns_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "runs"`).WillReturnError(errors.New("connection reset"))

	_, err := s.ListRuns(context.Background())
	assert.True(t, types.IsErrorCode(err, types.ErrStoreFailed))
}

func TestMeasurementRecord_RoundTrip(t *testing.T) {
	m := fixtures.Derived("EN", fixtures.Scenario("tok"))[1]
	rec := newMeasurementRecord("r", 7, m)
	require.NotNil(t, rec.Overhead)
	assert.Equal(t, 7, rec.Seq)
	assert.Equal(t, m, rec.Measurement())

	raw := fixtures.Raw("s", "PL", "tok", 1, 2)
	rec = newMeasurementRecord("r", 0, raw)
	assert.Nil(t, rec.Overhead)
	assert.Nil(t, rec.NormalizedOverhead)
}
