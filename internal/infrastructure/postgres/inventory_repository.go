package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/transaction"
)

type inventoryRow struct {
	ID               string     `db:"id"`
	FlightID         string     `db:"flight_id"`
	TicketClassID    string     `db:"ticket_class_id"`
	ClassName        string     `db:"class_name"`
	SeatPrefix       string     `db:"seat_prefix"`
	TotalTickets     int        `db:"total_tickets"`
	RemainingTickets int        `db:"remaining_tickets"`
	Fare             int64      `db:"fare"`
	DeletedAt        *time.Time `db:"deleted_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	Version          int        `db:"version"`
}

func (r *inventoryRow) toEntity() *inventory.SeatClassInventory {
	return &inventory.SeatClassInventory{
		ID: r.ID, FlightID: r.FlightID, TicketClassID: r.TicketClassID,
		ClassName: r.ClassName, SeatPrefix: r.SeatPrefix,
		TotalTickets: r.TotalTickets, RemainingTickets: r.RemainingTickets,
		Fare: r.Fare, DeletedAt: r.DeletedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const inventoryColumns = `id, flight_id, ticket_class_id, class_name, seat_prefix, total_tickets, remaining_tickets, fare, deleted_at, created_at, updated_at, version`

type InventoryRepository struct{ db *sqlx.DB }

func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, inv *inventory.SeatClassInventory) error {
	query := `INSERT INTO seat_class_inventories (flight_id, ticket_class_id, class_name, seat_prefix, total_tickets, remaining_tickets, fare, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, inv.FlightID, inv.TicketClassID, inv.ClassName, inv.SeatPrefix, inv.TotalTickets, inv.RemainingTickets, inv.Fare, inv.CreatedAt, inv.UpdatedAt, inv.Version).Scan(&inv.ID); err != nil {
		return fmt.Errorf("座席台帳作成に失敗: %w", err)
	}
	return nil
}

func (r *InventoryRepository) GetByFlightAndClass(ctx context.Context, flightID, ticketClassID string) (*inventory.SeatClassInventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM seat_class_inventories WHERE flight_id = $1 AND ticket_class_id = $2 AND deleted_at IS NULL`
	var row inventoryRow
	if err := r.db.GetContext(ctx, &row, query, flightID, ticketClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("座席台帳取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *InventoryRepository) GetByFlightID(ctx context.Context, flightID string) ([]*inventory.SeatClassInventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM seat_class_inventories WHERE flight_id = $1 AND deleted_at IS NULL ORDER BY ticket_class_id`
	var rows []inventoryRow
	if err := r.db.SelectContext(ctx, &rows, query, flightID); err != nil {
		return nil, fmt.Errorf("座席台帳一覧取得に失敗: %w", err)
	}
	invs := make([]*inventory.SeatClassInventory, len(rows))
	for i, row := range rows {
		invs[i] = row.toEntity()
	}
	return invs, nil
}

// Reserve は条件付きUPDATEで残席数を減算する
// WHERE句のガードにより並行予約が残席数を負にすることはない
func (r *InventoryRepository) Reserve(ctx context.Context, tx transaction.Tx, flightID, ticketClassID string, count int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE seat_class_inventories SET remaining_tickets = remaining_tickets - $1, updated_at = NOW(), version = version + 1 WHERE flight_id = $2 AND ticket_class_id = $3 AND deleted_at IS NULL AND remaining_tickets >= $1`
	result, err := sqlxTx.ExecContext(ctx, query, count, flightID, ticketClassID)
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrInsufficientInventory
	}
	return nil
}

// Release は条件付きUPDATEで残席数を加算する
// 総席数を超える解放は呼び出し側のバグを示すため、行を変更せずエラーを返す
func (r *InventoryRepository) Release(ctx context.Context, tx transaction.Tx, flightID, ticketClassID string, count int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE seat_class_inventories SET remaining_tickets = remaining_tickets + $1, updated_at = NOW(), version = version + 1 WHERE flight_id = $2 AND ticket_class_id = $3 AND remaining_tickets + $1 <= total_tickets`
	result, err := sqlxTx.ExecContext(ctx, query, count, flightID, ticketClassID)
	if err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrInventoryOverRelease
	}
	return nil
}

func (r *InventoryRepository) CountRemaining(ctx context.Context, flightID, ticketClassID string) (int, error) {
	var count int
	query := `SELECT remaining_tickets FROM seat_class_inventories WHERE flight_id = $1 AND ticket_class_id = $2 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &count, query, flightID, ticketClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, inventory.ErrInventoryNotFound
		}
		return 0, fmt.Errorf("残席数取得に失敗: %w", err)
	}
	return count, nil
}

// SoftDelete は座席台帳を論理削除する
// 有効なチケットが参照している間は削除しない
func (r *InventoryRepository) SoftDelete(ctx context.Context, flightID, ticketClassID string) error {
	query := `UPDATE seat_class_inventories SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE flight_id = $1 AND ticket_class_id = $2 AND deleted_at IS NULL
		AND NOT EXISTS (
			SELECT 1 FROM tickets t
			WHERE t.flight_id = $1 AND t.ticket_class_id = $2 AND t.status IN ('unpaid', 'paid')
		)`
	result, err := r.db.ExecContext(ctx, query, flightID, ticketClassID)
	if err != nil {
		return fmt.Errorf("座席台帳削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrInventoryInUse
	}
	return nil
}

var _ inventory.Repository = (*InventoryRepository)(nil)
