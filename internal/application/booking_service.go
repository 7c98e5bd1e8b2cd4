package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/ticket"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/transaction"
	kafkainfra "github.com/Searching96/flight-management-system-sub002/internal/infrastructure/kafka"
	redisinfra "github.com/Searching96/flight-management-system-sub002/internal/infrastructure/redis"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/confirmation"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/logger"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/metrics"
)

const (
	// 確認コード衝突時の再生成上限
	maxCodeAttempts = 5
	// 座席競合時のトランザクション再試行回数（内部で1回だけ再割り当て）
	maxSeatConflictRetries = 1
)

// EventPublisher は予約イベントの配信インターフェース
// 配信失敗は予約トランザクションに影響させない
type EventPublisher interface {
	Publish(ctx context.Context, event kafkainfra.BookingEvent) error
}

// BookingService は座席台帳とチケットストアを横断する予約オーケストレータ
// 台帳の残席数増減はこのサービス（と期限切れ回収）だけが行う
type BookingService struct {
	txManager   transaction.Manager
	flightRepo  flight.Repository
	invRepo     inventory.Repository
	ticketRepo  ticket.Repository
	lockManager redisinfra.LockManagerInterface
	cache       redisinfra.AvailabilityCacheInterface
	codeGen     *confirmation.Generator
	publisher   EventPublisher
	params      BookingParams
}

func NewBookingService(
	txm transaction.Manager,
	fr flight.Repository,
	ir inventory.Repository,
	tr ticket.Repository,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.AvailabilityCacheInterface,
	publisher EventPublisher,
	params BookingParams,
) *BookingService {
	return &BookingService{
		txManager:   txm,
		flightRepo:  fr,
		invRepo:     ir,
		ticketRepo:  tr,
		lockManager: lm,
		cache:       cache,
		codeGen:     confirmation.NewGenerator(),
		publisher:   publisher,
		params:      params,
	}
}

// PassengerInput は1搭乗者分の予約指定
// SeatNumber が空の場合はクラス内の最小未使用座席を割り当てる
type PassengerInput struct {
	PassengerID string
	SeatNumber  string
}

// BookTicketsInput は予約リクエスト
type BookTicketsInput struct {
	FlightID          string
	TicketClassID     string
	BookingCustomerID string
	Passengers        []PassengerInput
}

// BookingResult は1回の予約呼び出しの結果
type BookingResult struct {
	ConfirmationCode string
	Tickets          []*ticket.Ticket
}

// BookTickets は予約を実行する
// 台帳の減算とチケット作成は1トランザクションでコミットされ、
// 途中で失敗した場合は台帳・ストアとも予約前の状態に戻る
func (s *BookingService) BookTickets(ctx context.Context, input BookTicketsInput) (*BookingResult, error) {
	if len(input.Passengers) == 0 {
		return nil, ErrNoPassengers
	}

	// フライト確認と予約受付期限チェック
	f, err := s.flightRepo.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if !f.IsBookableAt(time.Now(), s.params.MinBookingInAdvance) {
		return nil, flight.ErrBookingWindowClosed
	}

	// 座席台帳確認（運賃はこの時点の値をチケットにスナップショットする）
	inv, err := s.invRepo.GetByFlightAndClass(ctx, input.FlightID, input.TicketClassID)
	if err != nil {
		return nil, err
	}

	// フライト×クラス単位の分散ロックで座席割り当てを直列化
	lockKey := s.buildBookingLockKey(input.FlightID, input.TicketClassID)
	var lock redisinfra.Lock
	if s.lockManager != nil {
		lock, err = s.lockManager.AcquireLockWithRetry(ctx, lockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countBooking("lock_failed")
				return nil, fmt.Errorf("座席が他のユーザーによって処理中です")
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// 確認コードを生成（有効チケットとの衝突は上限付きで再生成）
	code, err := s.generateConfirmationCode(ctx)
	if err != nil {
		return nil, err
	}

	var tickets []*ticket.Ticket
	for attempt := 0; ; attempt++ {
		tickets, err = s.allocateSeats(ctx, inv, input, code)
		if err != nil {
			s.countBooking(bookingFailureLabel(err))
			return nil, err
		}

		err = s.commitBooking(ctx, inv, tickets)
		if err == nil {
			break
		}
		// 座席競合はロック外の並行予約に負けたケース
		// 次の候補座席で1回だけ再試行する
		if errors.Is(err, ticket.ErrSeatConflict) && attempt < maxSeatConflictRetries {
			logger.Warn("座席競合が発生、再割り当てして再試行",
				zap.String("flight_id", input.FlightID),
				zap.String("ticket_class_id", input.TicketClassID),
			)
			continue
		}
		s.countBooking(bookingFailureLabel(err))
		return nil, err
	}

	s.invalidateCache(ctx, input.FlightID, input.TicketClassID)
	s.countBooking("success")
	s.publishEvent(ctx, kafkainfra.BookingEvent{
		Type:             "booking_confirmed",
		ConfirmationCode: code,
		FlightID:         input.FlightID,
		TicketClassID:    input.TicketClassID,
		SeatNumbers:      seatNumbersOf(tickets),
		OccurredAt:       time.Now(),
	})

	return &BookingResult{ConfirmationCode: code, Tickets: tickets}, nil
}

// allocateSeats は各搭乗者の座席を決定し、未払いチケットを組み立てる
// 指定座席は有効チケットとの重複を検査し、未指定はクラス範囲内の最小未使用番号を割り当てる
func (s *BookingService) allocateSeats(ctx context.Context, inv *inventory.SeatClassInventory, input BookTicketsInput, code string) ([]*ticket.Ticket, error) {
	activeSeats, err := s.ticketRepo.ActiveSeatNumbers(ctx, input.FlightID)
	if err != nil {
		return nil, fmt.Errorf("座席状況取得に失敗: %w", err)
	}
	taken := make(map[string]bool, len(activeSeats))
	for _, sn := range activeSeats {
		taken[sn] = true
	}

	var customerID *string
	if input.BookingCustomerID != "" {
		customerID = &input.BookingCustomerID
	}

	next := 1
	tickets := make([]*ticket.Ticket, 0, len(input.Passengers))
	for _, p := range input.Passengers {
		seatNumber := p.SeatNumber
		if seatNumber != "" {
			if taken[seatNumber] {
				return nil, ticket.ErrSeatConflict
			}
		} else {
			seatNumber, next, err = nextFreeSeat(inv, taken, next)
			if err != nil {
				return nil, err
			}
		}
		taken[seatNumber] = true

		t := ticket.NewTicket(input.FlightID, input.TicketClassID, p.PassengerID, customerID, seatNumber, inv.Fare, code, s.params.MaxBookingHold)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// nextFreeSeat はクラス範囲内で最小の未使用座席番号を返す
func nextFreeSeat(inv *inventory.SeatClassInventory, taken map[string]bool, from int) (string, int, error) {
	for n := from; n <= inv.TotalTickets; n++ {
		sn := inv.SeatNumberAt(n)
		if !taken[sn] {
			return sn, n + 1, nil
		}
	}
	return "", from, inventory.ErrInsufficientInventory
}

// commitBooking は台帳減算とチケット作成を1トランザクションで実行する
func (s *BookingService) commitBooking(ctx context.Context, inv *inventory.SeatClassInventory, tickets []*ticket.Ticket) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.invRepo.Reserve(ctx, tx, inv.FlightID, inv.TicketClassID, len(tickets)); err != nil {
		return err
	}
	if err := s.ticketRepo.CreateBatch(ctx, tx, tickets); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// generateConfirmationCode は有効チケットと衝突しない確認コードを生成する
func (s *BookingService) generateConfirmationCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.codeGen.Generate()
		if err != nil {
			return "", err
		}
		exists, err := s.ticketRepo.ConfirmationCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("確認コード重複チェックに失敗: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// PayTickets は確認コード配下の未払いチケットを支払済みにする
// 同一 orderID での再呼び出しは冪等（ゲートウェイの重複コールバック対策）
func (s *BookingService) PayTickets(ctx context.Context, confirmationCode, orderID string) ([]*ticket.Ticket, error) {
	tickets, err := s.ticketRepo.GetByConfirmationCode(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ticket.ErrConfirmationCodeNotFound
	}

	// 冪等性チェック: 全チケットが同一注文で支払済みならそのまま返す
	if allPaidWithOrder(tickets, orderID) {
		return tickets, nil
	}
	for _, t := range tickets {
		if t.Status != ticket.StatusUnpaid {
			return nil, ticket.ErrInvalidStateTransition
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tickets {
		if err := t.Pay(orderID); err != nil {
			return nil, err
		}
		// 未払いであることを条件に更新する
		// 読み取り後にスイーパーが期限切れにしていた場合はここで検知される
		if err := s.ticketRepo.Update(ctx, tx, t, ticket.StatusUnpaid); err != nil {
			if errors.Is(err, ticket.ErrTicketStateStale) {
				return nil, ticket.ErrInvalidStateTransition
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.publishEvent(ctx, kafkainfra.BookingEvent{
		Type:             "tickets_paid",
		ConfirmationCode: confirmationCode,
		FlightID:         tickets[0].FlightID,
		SeatNumbers:      seatNumbersOf(tickets),
		OccurredAt:       time.Now(),
	})
	return tickets, nil
}

// CancelTicket はチケットをキャンセルし、座席を台帳へ返却する
// キャンセル済み・期限切れチケットへの呼び出しは成功扱いの no-op
// 読み取り後に並行遷移（期限切れ・支払）へ負けた場合は読み直して1回だけ再試行する
func (s *BookingService) CancelTicket(ctx context.Context, ticketID string) error {
	for attempt := 0; ; attempt++ {
		err := s.cancelOnce(ctx, ticketID)
		if errors.Is(err, ticket.ErrTicketStateStale) && attempt < 1 {
			continue
		}
		return err
	}
}

func (s *BookingService) cancelOnce(ctx context.Context, ticketID string) error {
	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.IsTerminal() {
		return nil
	}
	from := t.Status
	if err := t.Cancel(); err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 読み取り時の状態を条件に更新する
	// 条件不一致なら座席返却は行わない（先に遷移した側が返却済み）
	if err := s.ticketRepo.Update(ctx, tx, t, from); err != nil {
		return err
	}
	if err := s.releaseSeat(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, t.FlightID, t.TicketClassID)
	s.publishEvent(ctx, kafkainfra.BookingEvent{
		Type:             "ticket_cancelled",
		ConfirmationCode: t.ConfirmationCode,
		FlightID:         t.FlightID,
		TicketClassID:    t.TicketClassID,
		SeatNumbers:      []string{t.SeatNumber},
		OccurredAt:       time.Now(),
	})
	return nil
}

// ExpireHeldTickets は保持期限切れの未払いチケットを期限切れにし、座席を返却する
// 状態更新と台帳返却はチケット単位の1トランザクションで行う
func (s *BookingService) ExpireHeldTickets(ctx context.Context) (int, error) {
	expired, err := s.ticketRepo.GetExpiredUnpaid(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("期限切れチケット取得に失敗: %w", err)
	}

	count := 0
	for _, t := range expired {
		if t.Status != ticket.StatusUnpaid {
			continue
		}
		if err := s.expireOne(ctx, t); err != nil {
			// 取得後にキャンセル・支払が先行したチケットはスキップ
			if errors.Is(err, ticket.ErrTicketStateStale) {
				continue
			}
			logger.Error("チケット期限切れ処理に失敗",
				zap.String("ticket_id", t.ID),
				zap.Error(err),
			)
			continue
		}
		count++
		s.invalidateCache(ctx, t.FlightID, t.TicketClassID)
	}
	if count > 0 {
		if m := metrics.Get(); m != nil {
			m.ExpiredHoldsTotal.Add(float64(count))
		}
	}
	return count, nil
}

func (s *BookingService) expireOne(ctx context.Context, t *ticket.Ticket) error {
	if err := t.Expire(); err != nil {
		return err
	}
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 未払いのままであることを条件に更新する
	// 並行するキャンセルに負けた場合は返却せず終了する
	if err := s.ticketRepo.Update(ctx, tx, t, ticket.StatusUnpaid); err != nil {
		return err
	}
	if err := s.releaseSeat(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// releaseSeat は1席を台帳へ返却する
// 総席数超過は他所のバグを示す整合性エラーなので、握りつぶさずログして返す
func (s *BookingService) releaseSeat(ctx context.Context, tx transaction.Tx, t *ticket.Ticket) error {
	err := s.invRepo.Release(ctx, tx, t.FlightID, t.TicketClassID, 1)
	if err != nil {
		if errors.Is(err, inventory.ErrInventoryOverRelease) {
			logger.Error("内部整合性エラー: 残席数が総席数を超過",
				zap.String("flight_id", t.FlightID),
				zap.String("ticket_class_id", t.TicketClassID),
				zap.String("ticket_id", t.ID),
			)
		}
		return err
	}
	return nil
}

// IsSeatAvailable は座席が有効チケットに占有されていないかを返す
func (s *BookingService) IsSeatAvailable(ctx context.Context, flightID, seatNumber string) (bool, error) {
	taken, err := s.ticketRepo.SeatTaken(ctx, flightID, seatNumber)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// GetTicket はIDからチケットを取得する
func (s *BookingService) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, id)
}

// GetBooking は確認コードから予約内容を取得する
func (s *BookingService) GetBooking(ctx context.Context, confirmationCode string) ([]*ticket.Ticket, error) {
	tickets, err := s.ticketRepo.GetByConfirmationCode(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ticket.ErrConfirmationCodeNotFound
	}
	return tickets, nil
}

// GetPassengerTickets は搭乗者のチケット一覧を取得する
func (s *BookingService) GetPassengerTickets(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.ticketRepo.GetByPassengerID(ctx, passengerID, limit, offset)
}

// buildBookingLockKey はフライト×クラスからロックキーを生成する
// 複数クラスをまたぐ場合もキー順が一定になるよう固定フォーマットにする
func (s *BookingService) buildBookingLockKey(flightID, ticketClassID string) string {
	return fmt.Sprintf("booking:%s:%s", flightID, ticketClassID)
}

func (s *BookingService) invalidateCache(ctx context.Context, flightID, ticketClassID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, flightID, ticketClassID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *BookingService) publishEvent(ctx context.Context, event kafkainfra.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("予約イベント配信エラー", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func bookingFailureLabel(err error) string {
	switch {
	case errors.Is(err, inventory.ErrInsufficientInventory):
		return "insufficient"
	case errors.Is(err, ticket.ErrSeatConflict):
		return "seat_conflict"
	default:
		return "error"
	}
}

func allPaidWithOrder(tickets []*ticket.Ticket, orderID string) bool {
	for _, t := range tickets {
		if t.Status != ticket.StatusPaid || t.OrderID == nil || *t.OrderID != orderID {
			return false
		}
	}
	return true
}

func seatNumbersOf(tickets []*ticket.Ticket) []string {
	seats := make([]string, len(tickets))
	for i, t := range tickets {
		seats[i] = t.SeatNumber
	}
	return seats
}
