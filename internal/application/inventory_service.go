package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
	redisinfra "github.com/Searching96/flight-management-system-sub002/internal/infrastructure/redis"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/logger"
)

// 残席数キャッシュのTTL
// 予約・キャンセル・期限切れで都度無効化されるため短めでよい
const availabilityCacheTTL = 30 * time.Second

// InventoryService は座席台帳の管理と残席照会を担当する
// 残席数の増減は行わない（それは予約オーケストレータの責務）
type InventoryService struct {
	invRepo inventory.Repository
	cache   redisinfra.AvailabilityCacheInterface
}

func NewInventoryService(ir inventory.Repository, cache redisinfra.AvailabilityCacheInterface) *InventoryService {
	return &InventoryService{invRepo: ir, cache: cache}
}

// CreateInventory はフライト×クラスの座席台帳を作成する
func (s *InventoryService) CreateInventory(ctx context.Context, inv *inventory.SeatClassInventory) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return s.invRepo.Create(ctx, inv)
}

// GetInventory はフライトIDとチケットクラスIDから座席台帳を取得する
func (s *InventoryService) GetInventory(ctx context.Context, flightID, ticketClassID string) (*inventory.SeatClassInventory, error) {
	return s.invRepo.GetByFlightAndClass(ctx, flightID, ticketClassID)
}

// ListByFlight はフライトの座席台帳一覧を取得する
func (s *InventoryService) ListByFlight(ctx context.Context, flightID string) ([]*inventory.SeatClassInventory, error) {
	return s.invRepo.GetByFlightID(ctx, flightID)
}

// GetRemainingCount は残席数を取得する（キャッシュ優先、ミス時はDBから読んで埋める）
func (s *InventoryService) GetRemainingCount(ctx context.Context, flightID, ticketClassID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetRemainingCount(ctx, flightID, ticketClassID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("残席キャッシュ取得エラー", zap.Error(err))
		}
	}

	count, err := s.invRepo.CountRemaining(ctx, flightID, ticketClassID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetRemainingCount(ctx, flightID, ticketClassID, count, availabilityCacheTTL); err != nil {
			logger.Warn("残席キャッシュ保存エラー", zap.Error(err))
		}
	}
	return count, nil
}

// DeleteInventory は座席台帳を論理削除する
// 有効なチケットが残っている場合は ErrInventoryInUse を返す
func (s *InventoryService) DeleteInventory(ctx context.Context, flightID, ticketClassID string) error {
	if err := s.invRepo.SoftDelete(ctx, flightID, ticketClassID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, flightID, ticketClassID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
	return nil
}
