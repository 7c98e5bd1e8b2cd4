package flight

import "time"

// Flight はフライトエンティティを表す
type Flight struct {
	ID            string
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int // 楽観的ロック用
}

// NewFlight は新しいフライトを作成する
func NewFlight(flightNumber, origin, destination string, departureTime, arrivalTime time.Time) *Flight {
	now := time.Now()
	return &Flight{
		FlightNumber:  flightNumber,
		Origin:        origin,
		Destination:   destination,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       0,
	}
}

// IsBookableAt は指定時刻に予約を受け付けられるかを返す
// 出発時刻まで minAdvance 以上の余裕がある場合のみ予約可能
func (f *Flight) IsBookableAt(now time.Time, minAdvance time.Duration) bool {
	return now.Add(minAdvance).Before(f.DepartureTime)
}

// Validate はフライトの検証を行う
func (f *Flight) Validate() error {
	if f.FlightNumber == "" {
		return ErrFlightNumberRequired
	}
	if f.Origin == "" || f.Destination == "" {
		return ErrRouteRequired
	}
	if f.ArrivalTime.Before(f.DepartureTime) {
		return ErrInvalidFlightTime
	}
	return nil
}
