package handler

import (
	"context"

	"github.com/Searching96/flight-management-system-sub002/internal/application"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/ticket"
)

// FlightServiceInterface はフライトサービスのインターフェース
type FlightServiceInterface interface {
	CreateFlight(ctx context.Context, f *flight.Flight) error
	GetFlight(ctx context.Context, id string) (*flight.Flight, error)
	ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error)
	UpdateFlight(ctx context.Context, f *flight.Flight) error
	DeleteFlight(ctx context.Context, id string) error
}

// InventoryServiceInterface は座席台帳サービスのインターフェース
type InventoryServiceInterface interface {
	CreateInventory(ctx context.Context, inv *inventory.SeatClassInventory) error
	GetInventory(ctx context.Context, flightID, ticketClassID string) (*inventory.SeatClassInventory, error)
	ListByFlight(ctx context.Context, flightID string) ([]*inventory.SeatClassInventory, error)
	GetRemainingCount(ctx context.Context, flightID, ticketClassID string) (int, error)
	DeleteInventory(ctx context.Context, flightID, ticketClassID string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	BookTickets(ctx context.Context, input application.BookTicketsInput) (*application.BookingResult, error)
	PayTickets(ctx context.Context, confirmationCode, orderID string) ([]*ticket.Ticket, error)
	CancelTicket(ctx context.Context, ticketID string) error
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	GetBooking(ctx context.Context, confirmationCode string) ([]*ticket.Ticket, error)
	GetPassengerTickets(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error)
	IsSeatAvailable(ctx context.Context, flightID, seatNumber string) (bool, error)
}
