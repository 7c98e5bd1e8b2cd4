package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound           = errors.New("チケットが見つかりません")
	ErrConfirmationCodeNotFound = errors.New("確認コードに対応するチケットが見つかりません")
	ErrInvalidStateTransition   = errors.New("許可されていない状態遷移です")
	ErrTicketStateStale         = errors.New("チケットの状態が他の処理により変更されています")
	ErrSeatConflict             = errors.New("座席は既に確保されています")
	ErrFlightIDRequired         = errors.New("フライトIDは必須です")
	ErrTicketClassIDRequired    = errors.New("チケットクラスIDは必須です")
	ErrPassengerIDRequired      = errors.New("搭乗者IDは必須です")
	ErrSeatNumberRequired       = errors.New("座席番号は必須です")
	ErrConfirmationCodeRequired = errors.New("確認コードは必須です")
	ErrInvalidFare              = errors.New("運賃は0以上である必要があります")
)
