package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHoldExpirer はHoldExpirerのモック
type MockHoldExpirer struct {
	mock.Mock
}

func (m *MockHoldExpirer) ExpireHeldTickets(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewHoldExpirySweeper(t *testing.T) {
	mockService := new(MockHoldExpirer)
	interval := 1 * time.Minute

	sweeper := NewHoldExpirySweeper(mockService, interval)

	assert.NotNil(t, sweeper)
	assert.Equal(t, interval, sweeper.interval)
	assert.NotNil(t, sweeper.stopCh)
	assert.NotNil(t, sweeper.doneCh)
}

func TestHoldExpirySweeper_Sweep(t *testing.T) {
	t.Run("正常に回収が実行される", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(3, nil)

		sweeper := &HoldExpirySweeper{
			bookingService: mockService,
			interval:       1 * time.Minute,
			stopCh:         make(chan struct{}),
			doneCh:         make(chan struct{}),
		}

		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("回収対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(0, nil)

		sweeper := &HoldExpirySweeper{
			bookingService: mockService,
			interval:       1 * time.Minute,
			stopCh:         make(chan struct{}),
			doneCh:         make(chan struct{}),
		}

		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(0, assert.AnError)

		sweeper := &HoldExpirySweeper{
			bookingService: mockService,
			interval:       1 * time.Minute,
			stopCh:         make(chan struct{}),
			doneCh:         make(chan struct{}),
		}

		// パニックしないことを確認
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestHoldExpirySweeper_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewHoldExpirySweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go sweeper.Start(ctx)

		time.Sleep(120 * time.Millisecond)

		sweeper.Stop()

		select {
		case <-sweeper.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewHoldExpirySweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			sweeper.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop after context cancel")
		}
	})

	t.Run("キャンセル済みコンテキストの後でもStopはブロックしない", func(t *testing.T) {
		// シャットダウン時は cancel → Stop の順で呼ばれる
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireHeldTickets", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewHoldExpirySweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		go sweeper.Start(ctx)

		time.Sleep(80 * time.Millisecond)
		cancel()

		done := make(chan struct{})
		go func() {
			sweeper.Stop()
			close(done)
		}()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("Stop did not return after context cancel")
		}
	})
}
