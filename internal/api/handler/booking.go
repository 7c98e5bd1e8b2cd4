package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Searching96/flight-management-system-sub002/internal/application"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/ticket"
)

// BookingHandler は予約・チケットのHTTPハンドラー
type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type BookingPassenger struct {
	PassengerID string `json:"passenger_id" validate:"required" example:"passenger-001"`
	SeatNumber  string `json:"seat_number,omitempty" example:"Y-12"`
}

type CreateBookingRequest struct {
	FlightID      string             `json:"flight_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	TicketClassID string             `json:"ticket_class_id" validate:"required" example:"economy"`
	Passengers    []BookingPassenger `json:"passengers" validate:"required,min=1,dive"`
}

type PaymentCallbackRequest struct {
	OrderID string `json:"order_id" validate:"required" example:"pay-2026-0001"`
}

type TicketResponse struct {
	ID               string     `json:"id"`
	FlightID         string     `json:"flight_id"`
	TicketClassID    string     `json:"ticket_class_id"`
	PassengerID      string     `json:"passenger_id"`
	SeatNumber       string     `json:"seat_number"`
	Status           string     `json:"status"`
	Fare             int64      `json:"fare"`
	ConfirmationCode string     `json:"confirmation_code"`
	OrderID          *string    `json:"order_id,omitempty"`
	PaymentTime      *time.Time `json:"payment_time,omitempty"`
	HoldExpiresAt    time.Time  `json:"hold_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

type BookingResponse struct {
	ConfirmationCode string           `json:"confirmation_code"`
	Tickets          []TicketResponse `json:"tickets"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, FlightID: t.FlightID, TicketClassID: t.TicketClassID,
		PassengerID: t.PassengerID, SeatNumber: t.SeatNumber,
		Status: string(t.Status), Fare: t.Fare,
		ConfirmationCode: t.ConfirmationCode, OrderID: t.OrderID,
		PaymentTime: t.PaymentTime, HoldExpiresAt: t.HoldExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

func toTicketResponses(tickets []*ticket.Ticket) []TicketResponse {
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return resp
}

// Create godoc
// @Summary 予約を作成
// @Description 座席を確保し、未払いチケットを発行します（保持期限あり）
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-Customer-ID header string false "購入者ID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "座席競合または残席不足"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	passengers := make([]application.PassengerInput, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = application.PassengerInput{
			PassengerID: p.PassengerID,
			SeatNumber:  p.SeatNumber,
		}
	}

	result, err := h.service.BookTickets(c.Request().Context(), application.BookTicketsInput{
		FlightID:          req.FlightID,
		TicketClassID:     req.TicketClassID,
		BookingCustomerID: c.Request().Header.Get("X-Customer-ID"),
		Passengers:        passengers,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, BookingResponse{
		ConfirmationCode: result.ConfirmationCode,
		Tickets:          toTicketResponses(result.Tickets),
	})
}

// GetByCode godoc
// @Summary 予約を取得
// @Description 確認コードから予約内容を取得します
// @Tags bookings
// @Produce json
// @Param code path string true "確認コード"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{code} [get]
func (h *BookingHandler) GetByCode(c echo.Context) error {
	code := c.Param("code")
	tickets, err := h.service.GetBooking(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BookingResponse{
		ConfirmationCode: code,
		Tickets:          toTicketResponses(tickets),
	})
}

// PaymentCallback godoc
// @Summary 支払完了コールバック
// @Description 決済ゲートウェイからの支払通知でチケットを支払済みにします（同一注文IDで冪等）
// @Tags bookings
// @Accept json
// @Produce json
// @Param code path string true "確認コード"
// @Param request body PaymentCallbackRequest true "支払情報"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string "支払不可能な状態"
// @Router /bookings/{code}/payment [post]
func (h *BookingHandler) PaymentCallback(c echo.Context) error {
	code := c.Param("code")
	var req PaymentCallbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tickets, err := h.service.PayTickets(c.Request().Context(), code, req.OrderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BookingResponse{
		ConfirmationCode: code,
		Tickets:          toTicketResponses(tickets),
	})
}

// GetTicket godoc
// @Summary チケットを取得
// @Description 指定IDのチケットを取得します
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *BookingHandler) GetTicket(c echo.Context) error {
	id := c.Param("id")
	t, err := h.service.GetTicket(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// CancelTicket godoc
// @Summary チケットをキャンセル
// @Description チケットをキャンセルし、座席を解放します（キャンセル済みへの再実行は成功扱い）
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{id}/cancel [post]
func (h *BookingHandler) CancelTicket(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.CancelTicket(c.Request().Context(), id); err != nil {
		return err
	}
	t, err := h.service.GetTicket(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// GetPassengerTickets godoc
// @Summary 搭乗者のチケット一覧を取得
// @Description 搭乗者IDからチケット一覧を取得します
// @Tags tickets
// @Produce json
// @Param passenger_id path string true "搭乗者ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} TicketResponse
// @Router /passengers/{passenger_id}/tickets [get]
func (h *BookingHandler) GetPassengerTickets(c echo.Context) error {
	passengerID := c.Param("passenger_id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	tickets, err := h.service.GetPassengerTickets(c.Request().Context(), passengerID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}

// CheckSeat godoc
// @Summary 座席の空き状況を確認
// @Description 指定座席が有効チケットに占有されていないかを確認します
// @Tags flights
// @Produce json
// @Param id path string true "フライトID"
// @Param seat query string true "座席番号"
// @Success 200 {object} map[string]bool
// @Router /flights/{id}/seats/availability [get]
func (h *BookingHandler) CheckSeat(c echo.Context) error {
	flightID := c.Param("id")
	seatNumber := c.QueryParam("seat")
	if seatNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "座席番号が必要です")
	}
	available, err := h.service.IsSeatAvailable(c.Request().Context(), flightID, seatNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}
