package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/internal/database"
	"github.com/BaSui01/tokenbench/types"
)

const (
	defaultBatchSize = 500
	// 事务重试次数（死锁、序列化失败等）
	saveRetries = 3
)

// Store persists experiment runs through GORM.
type Store struct {
	pool      *database.PoolManager
	batchSize int
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize sets the insert batch size for measurements.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store on top of an opened connection pool.
func New(pool *database.PoolManager, opts ...Option) *Store {
	s := &Store{
		pool:      pool,
		batchSize: defaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "store"))
	return s
}

// AutoMigrate creates or updates the runs and measurements tables.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.pool.DB().WithContext(ctx).AutoMigrate(&RunRecord{}, &MeasurementRecord{}); err != nil {
		return storeError("auto migrate", err)
	}
	return nil
}

// SaveRun writes the run and all its measurements in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *experiment.Run) error {
	if run == nil || run.ID == "" {
		return types.NewError(types.ErrStoreFailed, "run has no id")
	}

	rec := newRunRecord(run)
	records := make([]MeasurementRecord, len(run.Measurements))
	for i, m := range run.Measurements {
		records[i] = newMeasurementRecord(run.ID, i, m)
	}

	err := s.pool.WithTransactionRetry(ctx, saveRetries, func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		// 重试时主键需要重新生成
		for i := range records {
			records[i].ID = 0
		}
		if err := tx.CreateInBatches(&records, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert measurements: %w", err)
		}
		return nil
	})
	if err != nil {
		return storeError("save run "+run.ID, err)
	}

	s.logger.Info("run saved",
		zap.String("run_id", run.ID),
		zap.Int("measurements", len(records)),
	)
	return nil
}

// GetRun returns one run.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var rec RunRecord
	err := s.pool.DB().WithContext(ctx).Where("id = ?", runID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewError(types.ErrStoreFailed, "run "+runID+" not found").WithCause(err)
		}
		return nil, storeError("get run "+runID, err)
	}
	return &rec, nil
}

// LoadMeasurements returns the measurements of a run in their original order.
func (s *Store) LoadMeasurements(ctx context.Context, runID string) ([]experiment.Measurement, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	var records []MeasurementRecord
	err := s.pool.DB().WithContext(ctx).
		Where("run_id = ?", runID).
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, storeError("load measurements of "+runID, err)
	}

	out := make([]experiment.Measurement, len(records))
	for i, r := range records {
		out[i] = r.Measurement()
	}
	return out, nil
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	var runs []RunRecord
	if err := s.pool.DB().WithContext(ctx).Order("started_at DESC").Find(&runs).Error; err != nil {
		return nil, storeError("list runs", err)
	}
	return runs, nil
}

func storeError(op string, err error) error {
	return types.NewError(types.ErrStoreFailed, op).WithCause(err)
}
