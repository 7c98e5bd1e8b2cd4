package inventory

import "errors"

// SeatClassInventory ドメインのエラー定義
var (
	ErrInventoryNotFound     = errors.New("座席台帳が見つかりません")
	ErrInsufficientInventory = errors.New("残席数が不足しています")
	ErrInventoryOverRelease  = errors.New("残席数が総席数を超過します")
	ErrFlightIDRequired      = errors.New("フライトIDは必須です")
	ErrTicketClassIDRequired = errors.New("チケットクラスIDは必須です")
	ErrInvalidTotalTickets   = errors.New("総席数は1以上である必要があります")
	ErrRemainingOutOfRange   = errors.New("残席数は0以上総席数以下である必要があります")
	ErrInvalidFare           = errors.New("運賃は0以上である必要があります")
	ErrInventoryInUse        = errors.New("有効なチケットが存在するため削除できません")
)
