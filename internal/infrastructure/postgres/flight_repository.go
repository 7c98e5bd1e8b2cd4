package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
)

type flightRow struct {
	ID            string    `db:"id"`
	FlightNumber  string    `db:"flight_number"`
	Origin        string    `db:"origin"`
	Destination   string    `db:"destination"`
	DepartureTime time.Time `db:"departure_time"`
	ArrivalTime   time.Time `db:"arrival_time"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	Version       int       `db:"version"`
}

func (r *flightRow) toEntity() *flight.Flight {
	return &flight.Flight{
		ID: r.ID, FlightNumber: r.FlightNumber,
		Origin: r.Origin, Destination: r.Destination,
		DepartureTime: r.DepartureTime, ArrivalTime: r.ArrivalTime,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type FlightRepository struct{ db *sqlx.DB }

func NewFlightRepository(db *sqlx.DB) *FlightRepository { return &FlightRepository{db: db} }

func (r *FlightRepository) Create(ctx context.Context, f *flight.Flight) error {
	query := `INSERT INTO flights (flight_number, origin, destination, departure_time, arrival_time, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, f.FlightNumber, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime, f.CreatedAt, f.UpdatedAt, f.Version).Scan(&f.ID); err != nil {
		return fmt.Errorf("フライト作成に失敗: %w", err)
	}
	return nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id string) (*flight.Flight, error) {
	query := `SELECT id, flight_number, origin, destination, departure_time, arrival_time, created_at, updated_at, version FROM flights WHERE id = $1`
	var row flightRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound
		}
		return nil, fmt.Errorf("フライト取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) List(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	query := `SELECT id, flight_number, origin, destination, departure_time, arrival_time, created_at, updated_at, version FROM flights ORDER BY departure_time LIMIT $1 OFFSET $2`
	var rows []flightRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("フライト一覧取得に失敗: %w", err)
	}
	flights := make([]*flight.Flight, len(rows))
	for i, row := range rows {
		flights[i] = row.toEntity()
	}
	return flights, nil
}

func (r *FlightRepository) Update(ctx context.Context, f *flight.Flight) error {
	query := `UPDATE flights SET flight_number = $1, origin = $2, destination = $3, departure_time = $4, arrival_time = $5, updated_at = NOW(), version = version + 1 WHERE id = $6 AND version = $7`
	result, err := r.db.ExecContext(ctx, query, f.FlightNumber, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime, f.ID, f.Version)
	if err != nil {
		return fmt.Errorf("フライト更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return flight.ErrFlightNotFound
	}
	return nil
}

func (r *FlightRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("フライト削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return flight.ErrFlightNotFound
	}
	return nil
}

var _ flight.Repository = (*FlightRepository)(nil)
