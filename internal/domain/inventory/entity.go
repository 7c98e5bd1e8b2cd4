package inventory

import "time"

// SeatClassInventory はフライト×チケットクラスごとの座席台帳を表す
// RemainingTickets は常に 0 以上 TotalTickets 以下に保たれる
type SeatClassInventory struct {
	ID               string
	FlightID         string
	TicketClassID    string
	ClassName        string
	SeatPrefix       string // 座席番号の接頭辞（例: "Y" → Y-1, Y-2, ...）
	TotalTickets     int    // 作成後は不変
	RemainingTickets int
	Fare             int64 // 通貨の最小単位で保持
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int // 楽観的ロック用
}

// NewSeatClassInventory は新しい座席台帳を作成する
// 残席数は総席数と同数で初期化される
func NewSeatClassInventory(flightID, ticketClassID, className, seatPrefix string, totalTickets int, fare int64) *SeatClassInventory {
	now := time.Now()
	return &SeatClassInventory{
		FlightID:         flightID,
		TicketClassID:    ticketClassID,
		ClassName:        className,
		SeatPrefix:       seatPrefix,
		TotalTickets:     totalTickets,
		RemainingTickets: totalTickets,
		Fare:             fare,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          0,
	}
}

// SeatNumberAt はクラス内の座席番号を返す（n は 1 始まり）
func (i *SeatClassInventory) SeatNumberAt(n int) string {
	return formatSeatNumber(i.SeatPrefix, n)
}

// IsDeleted は論理削除済みかを返す
func (i *SeatClassInventory) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Validate は座席台帳の検証を行う
func (i *SeatClassInventory) Validate() error {
	if i.FlightID == "" {
		return ErrFlightIDRequired
	}
	if i.TicketClassID == "" {
		return ErrTicketClassIDRequired
	}
	if i.TotalTickets <= 0 {
		return ErrInvalidTotalTickets
	}
	if i.RemainingTickets < 0 || i.RemainingTickets > i.TotalTickets {
		return ErrRemainingOutOfRange
	}
	if i.Fare < 0 {
		return ErrInvalidFare
	}
	return nil
}
