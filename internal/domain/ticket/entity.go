package ticket

import "time"

// Status はチケットの状態を表す
type Status string

const (
	StatusUnpaid    Status = "unpaid"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Ticket はチケットエンティティを表す
// Fare は発券時点の運賃スナップショットであり、台帳側の運賃変更の影響を受けない
type Ticket struct {
	ID                string
	FlightID          string
	TicketClassID     string
	PassengerID       string
	BookingCustomerID *string // 購入者（搭乗者と異なる場合がある）
	SeatNumber        string
	Status            Status
	Fare              int64
	ConfirmationCode  string
	OrderID           *string
	PaymentTime       *time.Time
	HoldExpiresAt     time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTicket は新しい未払いチケットを作成する
func NewTicket(flightID, ticketClassID, passengerID string, bookingCustomerID *string, seatNumber string, fare int64, confirmationCode string, holdDuration time.Duration) *Ticket {
	now := time.Now()
	return &Ticket{
		FlightID:          flightID,
		TicketClassID:     ticketClassID,
		PassengerID:       passengerID,
		BookingCustomerID: bookingCustomerID,
		SeatNumber:        seatNumber,
		Status:            StatusUnpaid,
		Fare:              fare,
		ConfirmationCode:  confirmationCode,
		HoldExpiresAt:     now.Add(holdDuration),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsActive は座席を占有している状態（未払いまたは支払済み）かを返す
func (t *Ticket) IsActive() bool {
	return t.Status == StatusUnpaid || t.Status == StatusPaid
}

// IsTerminal はこれ以上自動遷移しない状態かを返す
func (t *Ticket) IsTerminal() bool {
	return t.Status == StatusCancelled || t.Status == StatusExpired
}

// IsHoldExpired は未払いの保持期限が切れているかを返す
func (t *Ticket) IsHoldExpired() bool {
	return t.Status == StatusUnpaid && time.Now().After(t.HoldExpiresAt)
}

// Pay はチケットを支払済みにする
func (t *Ticket) Pay(orderID string) error {
	if t.Status != StatusUnpaid {
		return ErrInvalidStateTransition
	}
	now := time.Now()
	t.Status = StatusPaid
	t.OrderID = &orderID
	t.PaymentTime = &now
	t.UpdatedAt = now
	return nil
}

// Cancel はチケットをキャンセルする（未払い・支払済みのみ許可）
func (t *Ticket) Cancel() error {
	if t.Status != StatusUnpaid && t.Status != StatusPaid {
		return ErrInvalidStateTransition
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// Expire は未払いチケットを期限切れにする
func (t *Ticket) Expire() error {
	if t.Status != StatusUnpaid {
		return ErrInvalidStateTransition
	}
	t.Status = StatusExpired
	t.UpdatedAt = time.Now()
	return nil
}

// Validate はチケットの検証を行う
func (t *Ticket) Validate() error {
	if t.FlightID == "" {
		return ErrFlightIDRequired
	}
	if t.TicketClassID == "" {
		return ErrTicketClassIDRequired
	}
	if t.PassengerID == "" {
		return ErrPassengerIDRequired
	}
	if t.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if t.ConfirmationCode == "" {
		return ErrConfirmationCodeRequired
	}
	if t.Fare < 0 {
		return ErrInvalidFare
	}
	return nil
}
