package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/usecase"
)

// タイマー駆動の定期ジョブ。
// 返品リマインダーと在庫ダイジェストを回す。
// 各ジョブは1実行ごとに冪等（回数上限・未確認1件ルールが再実行を吸収する）。
// 複数ノードで動かすなら分散ロックが別途必要。
type Scheduler struct {
	inventory *usecase.InventoryUsecase
	returns   *usecase.ReturnUsecase
	logger    *zap.Logger

	reminderInterval time.Duration
	digestInterval   time.Duration
}

func New(inventory *usecase.InventoryUsecase, returns *usecase.ReturnUsecase, logger *zap.Logger, reminderInterval, digestInterval time.Duration) *Scheduler {
	return &Scheduler{
		inventory:        inventory,
		returns:          returns,
		logger:           logger,
		reminderInterval: reminderInterval,
		digestInterval:   digestInterval,
	}
}

// ctxが閉じるまでジョブを回し続ける。呼び出し側がgoroutineで起動する。
func (s *Scheduler) Run(ctx context.Context) {
	reminderTicker := time.NewTicker(s.reminderInterval)
	digestTicker := time.NewTicker(s.digestInterval)
	defer reminderTicker.Stop()
	defer digestTicker.Stop()

	s.logger.Info("scheduler started",
		zap.Duration("reminder_interval", s.reminderInterval),
		zap.Duration("digest_interval", s.digestInterval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-reminderTicker.C:
			s.runReturnReminders(ctx)
		case <-digestTicker.C:
			s.runInventoryDigest(ctx)
		}
	}
}

func (s *Scheduler) runReturnReminders(ctx context.Context) {
	start := time.Now()
	if err := s.returns.SendPendingReturnReminders(ctx); err != nil {
		s.logger.Error("return reminder job failed", zap.Error(err))
		return
	}
	s.logger.Info("return reminder job finished", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) runInventoryDigest(ctx context.Context) {
	start := time.Now()
	if err := s.inventory.SendDailyInventoryDigest(ctx); err != nil {
		s.logger.Error("inventory digest job failed", zap.Error(err))
		return
	}
	s.logger.Info("inventory digest job finished", zap.Duration("took", time.Since(start)))
}
