package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCacheInterface は残席数キャッシュのインターフェース
type AvailabilityCacheInterface interface {
	GetRemainingCount(ctx context.Context, flightID, ticketClassID string) (int, error)
	SetRemainingCount(ctx context.Context, flightID, ticketClassID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, flightID, ticketClassID string) error
}

// AvailabilityCache はフライト×クラスごとの残席数キャッシュを管理する
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetRemainingCount は残席数をキャッシュから取得する
func (c *AvailabilityCache) GetRemainingCount(ctx context.Context, flightID, ticketClassID string) (int, error) {
	key := c.remainingCountKey(flightID, ticketClassID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetRemainingCount は残席数をキャッシュに保存する
func (c *AvailabilityCache) SetRemainingCount(ctx context.Context, flightID, ticketClassID string, count int, ttl time.Duration) error {
	key := c.remainingCountKey(flightID, ticketClassID)
	err := c.client.Set(ctx, key, count, ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はフライト×クラスのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, flightID, ticketClassID string) error {
	key := c.remainingCountKey(flightID, ticketClassID)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) remainingCountKey(flightID, ticketClassID string) string {
	return fmt.Sprintf("seats:remaining:%s:%s", flightID, ticketClassID)
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)
