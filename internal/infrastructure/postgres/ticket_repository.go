package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/ticket"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/transaction"
)

type ticketRow struct {
	ID                string     `db:"id"`
	FlightID          string     `db:"flight_id"`
	TicketClassID     string     `db:"ticket_class_id"`
	PassengerID       string     `db:"passenger_id"`
	BookingCustomerID *string    `db:"booking_customer_id"`
	SeatNumber        string     `db:"seat_number"`
	Status            string     `db:"status"`
	Fare              int64      `db:"fare"`
	ConfirmationCode  string     `db:"confirmation_code"`
	OrderID           *string    `db:"order_id"`
	PaymentTime       *time.Time `db:"payment_time"`
	HoldExpiresAt     time.Time  `db:"hold_expires_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, FlightID: r.FlightID, TicketClassID: r.TicketClassID,
		PassengerID: r.PassengerID, BookingCustomerID: r.BookingCustomerID,
		SeatNumber: r.SeatNumber, Status: ticket.Status(r.Status), Fare: r.Fare,
		ConfirmationCode: r.ConfirmationCode, OrderID: r.OrderID,
		PaymentTime: r.PaymentTime, HoldExpiresAt: r.HoldExpiresAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const ticketColumns = `id, flight_id, ticket_class_id, passenger_id, booking_customer_id, seat_number, status, fare, confirmation_code, order_id, payment_time, hold_expires_at, created_at, updated_at`

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

// CreateBatch はチケットを一括作成する
// 有効チケットの (flight_id, seat_number) 部分一意インデックスに違反した場合は
// ErrSeatConflict に変換する
func (r *TicketRepository) CreateBatch(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `INSERT INTO tickets (flight_id, ticket_class_id, passenger_id, booking_customer_id, seat_number, status, fare, confirmation_code, hold_expires_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	for _, t := range tickets {
		if err := sqlxTx.QueryRowContext(ctx, query, t.FlightID, t.TicketClassID, t.PassengerID, t.BookingCustomerID, t.SeatNumber, string(t.Status), t.Fare, t.ConfirmationCode, t.HoldExpiresAt, t.CreatedAt, t.UpdatedAt).Scan(&t.ID); err != nil {
			if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
				return ticket.ErrSeatConflict
			}
			return fmt.Errorf("チケット作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) GetByConfirmationCode(ctx context.Context, code string) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE confirmation_code = $1 ORDER BY seat_number`
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) GetByPassengerID(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE passenger_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, passengerID, limit, offset); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) ActiveSeatNumbers(ctx context.Context, flightID string) ([]string, error) {
	var seatNumbers []string
	query := `SELECT seat_number FROM tickets WHERE flight_id = $1 AND status IN ('unpaid', 'paid') ORDER BY seat_number`
	if err := r.db.SelectContext(ctx, &seatNumbers, query, flightID); err != nil {
		return nil, fmt.Errorf("座席番号取得に失敗: %w", err)
	}
	return seatNumbers, nil
}

func (r *TicketRepository) SeatTaken(ctx context.Context, flightID, seatNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE flight_id = $1 AND seat_number = $2 AND status IN ('unpaid', 'paid'))`
	if err := r.db.GetContext(ctx, &exists, query, flightID, seatNumber); err != nil {
		return false, fmt.Errorf("座席確認に失敗: %w", err)
	}
	return exists, nil
}

func (r *TicketRepository) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE confirmation_code = $1 AND status <> 'cancelled')`
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("確認コード確認に失敗: %w", err)
	}
	return exists, nil
}

// Update は読み取り時の状態を条件にチケットを更新する
// 条件不一致（並行する遷移に敗北）は ErrTicketStateStale に変換し、
// 呼び出し側が座席返却をスキップできるようにする
func (r *TicketRepository) Update(ctx context.Context, tx transaction.Tx, t *ticket.Ticket, from ticket.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE tickets SET status = $1, order_id = $2, payment_time = $3, updated_at = $4 WHERE id = $5 AND status = $6`
	result, err := sqlxTx.ExecContext(ctx, query, string(t.Status), t.OrderID, t.PaymentTime, t.UpdatedAt, t.ID, string(from))
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrTicketStateStale
	}
	return nil
}

func (r *TicketRepository) GetExpiredUnpaid(ctx context.Context, now time.Time) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = 'unpaid' AND hold_expires_at < $1`
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("期限切れチケット取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) CountByStatus(ctx context.Context, status ticket.Status) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE status = $1`, string(status)); err != nil {
		return 0, fmt.Errorf("チケット数取得に失敗: %w", err)
	}
	return count, nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
