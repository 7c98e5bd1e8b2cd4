package ticket

import (
	"context"
	"time"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
// 有効なチケット（未払い・支払済み）間では (flightID, seatNumber) の一意性が
// ストア側の制約として保証される
type Repository interface {
	// CreateBatch は複数のチケットを一括作成する（トランザクション必須）
	// 座席の一意制約に違反した場合は ErrSeatConflict を返す
	CreateBatch(ctx context.Context, tx transaction.Tx, tickets []*Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// GetByConfirmationCode は確認コードからチケット一覧を取得する
	GetByConfirmationCode(ctx context.Context, code string) ([]*Ticket, error)

	// GetByPassengerID は搭乗者IDからチケット一覧を取得する
	GetByPassengerID(ctx context.Context, passengerID string, limit, offset int) ([]*Ticket, error)

	// ActiveSeatNumbers はフライトの有効チケットが占有する座席番号一覧を取得する
	ActiveSeatNumbers(ctx context.Context, flightID string) ([]string, error)

	// SeatTaken は座席が有効チケットに占有されているかを返す
	SeatTaken(ctx context.Context, flightID, seatNumber string) (bool, error)

	// ConfirmationCodeExists は確認コードがキャンセル済み以外のチケットに
	// 使用されているかを返す
	ConfirmationCodeExists(ctx context.Context, code string) (bool, error)

	// Update はチケットの状態を更新する（トランザクション必須）
	// 更新は読み取り時の状態 from を条件とし、並行する状態遷移に
	// 先を越されていた場合は ErrTicketStateStale を返す
	Update(ctx context.Context, tx transaction.Tx, t *Ticket, from Status) error

	// GetExpiredUnpaid は保持期限を過ぎた未払いチケット一覧を取得する
	GetExpiredUnpaid(ctx context.Context, now time.Time) ([]*Ticket, error)

	// CountByStatus は状態ごとのチケット数を取得する
	CountByStatus(ctx context.Context, status Status) (int, error)
}
