package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/infrastructure/buffer"
	"github.com/fastygo/staff-portal/repository"
	"github.com/fastygo/staff-portal/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained and pruned.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops items that stayed buffered longer than this. Zero keeps them forever.
	Retention time.Duration
}

// BufferProcessor replays buffered directory writes once postgres is reachable again.
type BufferProcessor struct {
	store     *buffer.Store
	monitor   ConnectionHealth
	employees repository.EmployeeRepository
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	employees repository.EmployeeRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:     store,
		monitor:   monitor,
		employees: employees,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	if cfg.Retention > 0 {
		_, _ = bp.cron.AddFunc("@hourly", func() {
			if _, err := bp.Prune(time.Now()); err != nil {
				bp.logger.Error("buffer prune failed", zap.Error(err))
			}
		})
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or for ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch. Failed items are requeued until they hit MaxRetries.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := bp.processItem(ctx, item); err != nil {
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffer item (max retries reached)",
					zap.String("item_id", item.ID),
					zap.String("subject_id", item.SubjectID))
				if err := bp.store.Remove(item); err != nil {
					bp.logger.Warn("failed to remove buffer item", zap.Error(err))
				}
				continue
			}
			if err := bp.store.Requeue(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	return nil
}

// Prune drops items older than the configured retention.
func (bp *BufferProcessor) Prune(now time.Time) (int, error) {
	if bp == nil || bp.store == nil || bp.cfg.Retention <= 0 {
		return 0, nil
	}
	removed, err := bp.store.Cleanup(now.Add(-bp.cfg.Retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		bp.logger.Warn("expired buffer items dropped", zap.Int("count", removed))
	}
	return removed, nil
}

// BufferOperation runs the operation immediately when online and persists it otherwise.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityEmployee:
		if bp.employees == nil {
			return fmt.Errorf("employee directory not configured")
		}
		var employee domain.Employee
		if err := json.Unmarshal(item.Data, &employee); err != nil {
			return err
		}
		switch item.Operation {
		case usecase.OperationUpsert:
			return bp.employees.Upsert(ctx, &employee)
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}
	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
