package application

import (
	"time"

	"github.com/Searching96/flight-management-system-sub002/internal/config"
)

// BookingParams は予約まわりの運用パラメータ
// 起動時に設定から構築して注入する（再読み込みはプロセス再起動）
type BookingParams struct {
	// MinBookingInAdvance は出発時刻までに最低限必要な余裕
	MinBookingInAdvance time.Duration
	// MaxBookingHold は未払いチケットの保持期限
	MaxBookingHold time.Duration
}

// NewBookingParams は設定から予約パラメータを構築する
func NewBookingParams(cfg *config.BookingConfig) BookingParams {
	return BookingParams{
		MinBookingInAdvance: cfg.MinBookingInAdvance,
		MaxBookingHold:      cfg.MaxBookingHold,
	}
}
