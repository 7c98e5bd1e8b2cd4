package application

import (
	"context"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
)

// FlightService はフライトのCRUDを担当する
type FlightService struct {
	flightRepo flight.Repository
}

func NewFlightService(fr flight.Repository) *FlightService {
	return &FlightService{flightRepo: fr}
}

// CreateFlight は新しいフライトを作成する
func (s *FlightService) CreateFlight(ctx context.Context, f *flight.Flight) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.flightRepo.Create(ctx, f)
}

// GetFlight はIDからフライトを取得する
func (s *FlightService) GetFlight(ctx context.Context, id string) (*flight.Flight, error) {
	return s.flightRepo.GetByID(ctx, id)
}

// ListFlights はフライト一覧を取得する
func (s *FlightService) ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.flightRepo.List(ctx, limit, offset)
}

// UpdateFlight はフライトを更新する
func (s *FlightService) UpdateFlight(ctx context.Context, f *flight.Flight) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.flightRepo.Update(ctx, f)
}

// DeleteFlight はフライトを削除する
func (s *FlightService) DeleteFlight(ctx context.Context, id string) error {
	return s.flightRepo.Delete(ctx, id)
}
