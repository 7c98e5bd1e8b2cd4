package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTicket() *Ticket {
	return NewTicket("flight-1", "economy", "passenger-1", nil, "Y-1", 150000, "ABCD2345", 30*time.Minute)
}

func TestNewTicket(t *testing.T) {
	customerID := "customer-1"
	tk := NewTicket("flight-1", "economy", "passenger-1", &customerID, "Y-1", 150000, "ABCD2345", 30*time.Minute)

	assert.Equal(t, "flight-1", tk.FlightID)
	assert.Equal(t, "economy", tk.TicketClassID)
	assert.Equal(t, "passenger-1", tk.PassengerID)
	require.NotNil(t, tk.BookingCustomerID)
	assert.Equal(t, "customer-1", *tk.BookingCustomerID)
	assert.Equal(t, "Y-1", tk.SeatNumber)
	assert.Equal(t, StatusUnpaid, tk.Status)
	assert.Equal(t, int64(150000), tk.Fare)
	assert.Equal(t, "ABCD2345", tk.ConfirmationCode)
	assert.Nil(t, tk.OrderID)
	assert.Nil(t, tk.PaymentTime)
	// 保持期限は作成時刻 + holdDuration
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), tk.HoldExpiresAt, time.Second)
}

func TestTicket_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Ticket)
		wantErr error
	}{
		{name: "正常なチケット", modify: func(tk *Ticket) {}, wantErr: nil},
		{name: "フライトID未指定", modify: func(tk *Ticket) { tk.FlightID = "" }, wantErr: ErrFlightIDRequired},
		{name: "チケットクラスID未指定", modify: func(tk *Ticket) { tk.TicketClassID = "" }, wantErr: ErrTicketClassIDRequired},
		{name: "搭乗者ID未指定", modify: func(tk *Ticket) { tk.PassengerID = "" }, wantErr: ErrPassengerIDRequired},
		{name: "座席番号未指定", modify: func(tk *Ticket) { tk.SeatNumber = "" }, wantErr: ErrSeatNumberRequired},
		{name: "確認コード未指定", modify: func(tk *Ticket) { tk.ConfirmationCode = "" }, wantErr: ErrConfirmationCodeRequired},
		{name: "負の運賃", modify: func(tk *Ticket) { tk.Fare = -1 }, wantErr: ErrInvalidFare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newTestTicket()
			tt.modify(tk)
			err := tk.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTicket_Pay(t *testing.T) {
	t.Run("未払いチケットを支払済みにできる", func(t *testing.T) {
		tk := newTestTicket()
		err := tk.Pay("order-1")
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, tk.Status)
		require.NotNil(t, tk.OrderID)
		assert.Equal(t, "order-1", *tk.OrderID)
		assert.NotNil(t, tk.PaymentTime)
	})

	t.Run("支払済みチケットは再度支払えない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Pay("order-1"))
		err := tk.Pay("order-2")
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		// 最初の注文IDが維持される
		assert.Equal(t, "order-1", *tk.OrderID)
	})

	t.Run("キャンセル済みチケットは支払えない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Cancel())
		assert.ErrorIs(t, tk.Pay("order-1"), ErrInvalidStateTransition)
	})

	t.Run("期限切れチケットは支払えない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Expire())
		assert.ErrorIs(t, tk.Pay("order-1"), ErrInvalidStateTransition)
	})
}

func TestTicket_Cancel(t *testing.T) {
	t.Run("未払いチケットをキャンセルできる", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Cancel())
		assert.Equal(t, StatusCancelled, tk.Status)
	})

	t.Run("支払済みチケットをキャンセルできる", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Pay("order-1"))
		require.NoError(t, tk.Cancel())
		assert.Equal(t, StatusCancelled, tk.Status)
	})

	t.Run("キャンセル済みチケットは再キャンセルできない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Cancel())
		assert.ErrorIs(t, tk.Cancel(), ErrInvalidStateTransition)
	})

	t.Run("期限切れチケットはキャンセルできない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Expire())
		assert.ErrorIs(t, tk.Cancel(), ErrInvalidStateTransition)
	})
}

func TestTicket_Expire(t *testing.T) {
	t.Run("未払いチケットを期限切れにできる", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Expire())
		assert.Equal(t, StatusExpired, tk.Status)
	})

	t.Run("支払済みチケットは期限切れにできない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Pay("order-1"))
		assert.ErrorIs(t, tk.Expire(), ErrInvalidStateTransition)
	})

	t.Run("期限切れチケットは再度期限切れにできない", func(t *testing.T) {
		tk := newTestTicket()
		require.NoError(t, tk.Expire())
		assert.ErrorIs(t, tk.Expire(), ErrInvalidStateTransition)
	})
}

func TestTicket_IsActive(t *testing.T) {
	tk := newTestTicket()
	assert.True(t, tk.IsActive())

	require.NoError(t, tk.Pay("order-1"))
	assert.True(t, tk.IsActive())

	require.NoError(t, tk.Cancel())
	assert.False(t, tk.IsActive())
}

func TestTicket_IsTerminal(t *testing.T) {
	tk := newTestTicket()
	assert.False(t, tk.IsTerminal())

	require.NoError(t, tk.Cancel())
	assert.True(t, tk.IsTerminal())

	tk2 := newTestTicket()
	require.NoError(t, tk2.Expire())
	assert.True(t, tk2.IsTerminal())
}

func TestTicket_IsHoldExpired(t *testing.T) {
	t.Run("保持期限内の未払いチケットはfalse", func(t *testing.T) {
		tk := newTestTicket()
		assert.False(t, tk.IsHoldExpired())
	})

	t.Run("保持期限切れの未払いチケットはtrue", func(t *testing.T) {
		tk := NewTicket("flight-1", "economy", "p-1", nil, "Y-1", 150000, "ABCD2345", -1*time.Minute)
		assert.True(t, tk.IsHoldExpired())
	})

	t.Run("支払済みチケットは期限が過ぎてもfalse", func(t *testing.T) {
		tk := NewTicket("flight-1", "economy", "p-1", nil, "Y-1", 150000, "ABCD2345", -1*time.Minute)
		require.NoError(t, tk.Pay("order-1"))
		assert.False(t, tk.IsHoldExpired())
	})
}
