package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Searching96/flight-management-system-sub002/internal/pkg/logger"
)

// HoldExpirer は保持期限切れの未払いチケットを回収するインターフェース
type HoldExpirer interface {
	ExpireHeldTickets(ctx context.Context) (int, error)
}

// HoldExpirySweeper は期限切れホールドを定期回収するワーカー
// 1チケットにつき座席返却は最大1回（二重解放はストア側の状態遷移で防がれる）
type HoldExpirySweeper struct {
	bookingService HoldExpirer
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewHoldExpirySweeper は新しいスイーパーを作成する
func NewHoldExpirySweeper(bs HoldExpirer, interval time.Duration) *HoldExpirySweeper {
	return &HoldExpirySweeper{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はスイーパーを開始する
func (s *HoldExpirySweeper) Start(ctx context.Context) {
	logger.Info("ホールド期限スイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("ホールド期限スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("ホールド期限スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止する
func (s *HoldExpirySweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れホールドを回収する
func (s *HoldExpirySweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れホールドの回収開始")

	count, err := s.bookingService.ExpireHeldTickets(ctx)
	if err != nil {
		log.Error("期限切れホールドの回収失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れホールドを回収", zap.Int("count", count))
	} else {
		log.Debug("期限切れホールドなし")
	}
}
