package inventory

import (
	"context"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/transaction"
)

// Repository は座席台帳リポジトリのインターフェース
// RemainingTickets の増減は Reserve / Release を通してのみ行われる
type Repository interface {
	// Create は新しい座席台帳を作成する
	Create(ctx context.Context, inv *SeatClassInventory) error

	// GetByFlightAndClass はフライトIDとチケットクラスIDから座席台帳を取得する
	GetByFlightAndClass(ctx context.Context, flightID, ticketClassID string) (*SeatClassInventory, error)

	// GetByFlightID はフライトIDから座席台帳一覧を取得する
	GetByFlightID(ctx context.Context, flightID string) ([]*SeatClassInventory, error)

	// Reserve は残席数を count 分アトミックに減算する（トランザクション必須）
	// 残席が足りない場合は ErrInsufficientInventory を返し、行は変更しない
	Reserve(ctx context.Context, tx transaction.Tx, flightID, ticketClassID string, count int) error

	// Release は残席数を count 分アトミックに加算する（トランザクション必須）
	// 総席数を超過する場合は ErrInventoryOverRelease を返し、行は変更しない
	Release(ctx context.Context, tx transaction.Tx, flightID, ticketClassID string, count int) error

	// CountRemaining は残席数を取得する
	CountRemaining(ctx context.Context, flightID, ticketClassID string) (int, error)

	// SoftDelete は座席台帳を論理削除する
	SoftDelete(ctx context.Context, flightID, ticketClassID string) error
}
