package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
)

// FlightHandler はフライトと座席台帳のHTTPハンドラー
type FlightHandler struct {
	flightService    FlightServiceInterface
	inventoryService InventoryServiceInterface
}

func NewFlightHandler(fs FlightServiceInterface, is InventoryServiceInterface) *FlightHandler {
	return &FlightHandler{flightService: fs, inventoryService: is}
}

type CreateFlightRequest struct {
	FlightNumber  string    `json:"flight_number" validate:"required" example:"VN123"`
	Origin        string    `json:"origin" validate:"required" example:"HAN"`
	Destination   string    `json:"destination" validate:"required" example:"SGN"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
}

type UpdateFlightRequest struct {
	FlightNumber  string    `json:"flight_number" validate:"required"`
	Origin        string    `json:"origin" validate:"required"`
	Destination   string    `json:"destination" validate:"required"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
}

type FlightResponse struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	CreatedAt     time.Time `json:"created_at"`
}

func toFlightResponse(f *flight.Flight) FlightResponse {
	return FlightResponse{
		ID: f.ID, FlightNumber: f.FlightNumber,
		Origin: f.Origin, Destination: f.Destination,
		DepartureTime: f.DepartureTime, ArrivalTime: f.ArrivalTime,
		CreatedAt: f.CreatedAt,
	}
}

type CreateInventoryRequest struct {
	TicketClassID string `json:"ticket_class_id" validate:"required" example:"economy"`
	ClassName     string `json:"class_name" validate:"required" example:"エコノミー"`
	SeatPrefix    string `json:"seat_prefix" validate:"required" example:"Y"`
	TotalTickets  int    `json:"total_tickets" validate:"required,gt=0" example:"150"`
	Fare          int64  `json:"fare" validate:"gte=0" example:"1500000"`
}

type InventoryResponse struct {
	FlightID         string `json:"flight_id"`
	TicketClassID    string `json:"ticket_class_id"`
	ClassName        string `json:"class_name"`
	SeatPrefix       string `json:"seat_prefix"`
	TotalTickets     int    `json:"total_tickets"`
	RemainingTickets int    `json:"remaining_tickets"`
	Fare             int64  `json:"fare"`
}

func toInventoryResponse(inv *inventory.SeatClassInventory) InventoryResponse {
	return InventoryResponse{
		FlightID: inv.FlightID, TicketClassID: inv.TicketClassID,
		ClassName: inv.ClassName, SeatPrefix: inv.SeatPrefix,
		TotalTickets: inv.TotalTickets, RemainingTickets: inv.RemainingTickets,
		Fare: inv.Fare,
	}
}

// Create godoc
// @Summary フライトを作成
// @Description 新しいフライトを登録します
// @Tags flights
// @Accept json
// @Produce json
// @Param request body CreateFlightRequest true "フライト情報"
// @Success 201 {object} FlightResponse
// @Failure 400 {object} map[string]string
// @Router /flights [post]
func (h *FlightHandler) Create(c echo.Context) error {
	var req CreateFlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f := flight.NewFlight(req.FlightNumber, req.Origin, req.Destination, req.DepartureTime, req.ArrivalTime)
	if err := h.flightService.CreateFlight(c.Request().Context(), f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toFlightResponse(f))
}

// GetByID godoc
// @Summary フライトを取得
// @Description 指定IDのフライトを取得します
// @Tags flights
// @Produce json
// @Param id path string true "フライトID"
// @Success 200 {object} FlightResponse
// @Failure 404 {object} map[string]string
// @Router /flights/{id} [get]
func (h *FlightHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	f, err := h.flightService.GetFlight(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFlightResponse(f))
}

// List godoc
// @Summary フライト一覧を取得
// @Description フライト一覧を取得します
// @Tags flights
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} FlightResponse
// @Router /flights [get]
func (h *FlightHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	flights, err := h.flightService.ListFlights(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]FlightResponse, len(flights))
	for i, f := range flights {
		resp[i] = toFlightResponse(f)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary フライトを更新
// @Description 指定IDのフライトを更新します
// @Tags flights
// @Accept json
// @Produce json
// @Param id path string true "フライトID"
// @Param request body UpdateFlightRequest true "フライト情報"
// @Success 200 {object} FlightResponse
// @Failure 404 {object} map[string]string
// @Router /flights/{id} [put]
func (h *FlightHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req UpdateFlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f, err := h.flightService.GetFlight(c.Request().Context(), id)
	if err != nil {
		return err
	}
	f.FlightNumber = req.FlightNumber
	f.Origin = req.Origin
	f.Destination = req.Destination
	f.DepartureTime = req.DepartureTime
	f.ArrivalTime = req.ArrivalTime
	if err := h.flightService.UpdateFlight(c.Request().Context(), f); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFlightResponse(f))
}

// Delete godoc
// @Summary フライトを削除
// @Description 指定IDのフライトを削除します
// @Tags flights
// @Param id path string true "フライトID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /flights/{id} [delete]
func (h *FlightHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.flightService.DeleteFlight(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateInventory godoc
// @Summary 座席台帳を作成
// @Description フライトにチケットクラスの座席台帳を追加します
// @Tags inventories
// @Accept json
// @Produce json
// @Param id path string true "フライトID"
// @Param request body CreateInventoryRequest true "座席台帳情報"
// @Success 201 {object} InventoryResponse
// @Failure 400 {object} map[string]string
// @Router /flights/{id}/inventories [post]
func (h *FlightHandler) CreateInventory(c echo.Context) error {
	flightID := c.Param("id")
	var req CreateInventoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// フライトの存在確認
	if _, err := h.flightService.GetFlight(c.Request().Context(), flightID); err != nil {
		return err
	}

	inv := inventory.NewSeatClassInventory(flightID, req.TicketClassID, req.ClassName, req.SeatPrefix, req.TotalTickets, req.Fare)
	if err := h.inventoryService.CreateInventory(c.Request().Context(), inv); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toInventoryResponse(inv))
}

// ListInventories godoc
// @Summary 座席台帳一覧を取得
// @Description フライトの座席台帳一覧を取得します
// @Tags inventories
// @Produce json
// @Param id path string true "フライトID"
// @Success 200 {array} InventoryResponse
// @Router /flights/{id}/inventories [get]
func (h *FlightHandler) ListInventories(c echo.Context) error {
	flightID := c.Param("id")
	invs, err := h.inventoryService.ListByFlight(c.Request().Context(), flightID)
	if err != nil {
		return err
	}
	resp := make([]InventoryResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toInventoryResponse(inv)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRemainingCount godoc
// @Summary 残席数を取得
// @Description フライト×クラスの残席数を取得します
// @Tags inventories
// @Produce json
// @Param id path string true "フライトID"
// @Param class path string true "チケットクラスID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /flights/{id}/inventories/{class}/remaining [get]
func (h *FlightHandler) GetRemainingCount(c echo.Context) error {
	flightID := c.Param("id")
	ticketClassID := c.Param("class")
	count, err := h.inventoryService.GetRemainingCount(c.Request().Context(), flightID, ticketClassID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"remaining_tickets": count})
}

// DeleteInventory godoc
// @Summary 座席台帳を削除
// @Description 有効なチケットが残っていない座席台帳を論理削除します
// @Tags inventories
// @Param id path string true "フライトID"
// @Param class path string true "チケットクラスID"
// @Success 204
// @Failure 409 {object} map[string]string "有効なチケットが存在"
// @Router /flights/{id}/inventories/{class} [delete]
func (h *FlightHandler) DeleteInventory(c echo.Context) error {
	flightID := c.Param("id")
	ticketClassID := c.Param("class")
	err := h.inventoryService.DeleteInventory(c.Request().Context(), flightID, ticketClassID)
	if err != nil {
		if errors.Is(err, inventory.ErrInventoryInUse) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
