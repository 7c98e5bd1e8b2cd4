package flight

import "errors"

// Flight ドメインのエラー定義
var (
	ErrFlightNotFound       = errors.New("フライトが見つかりません")
	ErrFlightNumberRequired = errors.New("便名は必須です")
	ErrRouteRequired        = errors.New("出発地と到着地は必須です")
	ErrInvalidFlightTime    = errors.New("到着時刻は出発時刻より後である必要があります")
	ErrBookingWindowClosed  = errors.New("このフライトの予約受付は締め切られています")
)
