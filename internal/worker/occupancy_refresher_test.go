package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/metrics"
)

// MockOccupancySource はOccupancySourceのモック
type MockOccupancySource struct {
	mock.Mock
}

func (m *MockOccupancySource) Occupancy(ctx context.Context) (*application.OccupancyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.OccupancyStats), args.Error(1)
}

type recordingGauge struct {
	mu     sync.Mutex
	calls  int
	active int
	rate   float64
}

func (g *recordingGauge) SetOccupancy(active int, rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.active, g.rate = active, rate
}

func (g *recordingGauge) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestNewOccupancyRefresher(t *testing.T) {
	source := new(MockOccupancySource)
	r := NewOccupancyRefresher(source, &recordingGauge{}, time.Minute)

	assert.NotNil(t, r)
	assert.Equal(t, time.Minute, r.interval)
	assert.NotNil(t, r.stopCh)
	assert.NotNil(t, r.doneCh)
}

func TestOccupancyRefresher_Refresh(t *testing.T) {
	t.Run("集計結果をゲージに反映する", func(t *testing.T) {
		source := new(MockOccupancySource)
		source.On("Occupancy", mock.Anything).Return(&application.OccupancyStats{
			TotalRooms: 4, OccupiedRooms: 3, OccupancyRate: 75, ActiveBookings: 6,
		}, nil)
		gauge := &recordingGauge{}

		NewOccupancyRefresher(source, gauge, time.Minute).refresh(context.Background())

		assert.Equal(t, 1, gauge.calls)
		assert.Equal(t, 6, gauge.active)
		assert.Equal(t, 75.0, gauge.rate)
		source.AssertExpectations(t)
	})

	t.Run("集計に失敗した場合はゲージを更新しない", func(t *testing.T) {
		source := new(MockOccupancySource)
		source.On("Occupancy", mock.Anything).Return(nil, assert.AnError)
		gauge := &recordingGauge{}

		NewOccupancyRefresher(source, gauge, time.Minute).refresh(context.Background())

		assert.Equal(t, 0, gauge.calls)
		source.AssertExpectations(t)
	})

	t.Run("Prometheusのゲージに反映される", func(t *testing.T) {
		source := new(MockOccupancySource)
		source.On("Occupancy", mock.Anything).Return(&application.OccupancyStats{
			OccupancyRate: 50, ActiveBookings: 2,
		}, nil)
		m := metrics.NewWithRegistry(prometheus.NewRegistry())

		NewOccupancyRefresher(source, m, time.Minute).refresh(context.Background())

		assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveBookings))
		assert.Equal(t, 50.0, testutil.ToFloat64(m.OccupancyRate))
	})
}

func TestOccupancyRefresher_StartStop(t *testing.T) {
	t.Run("起動直後と定期的に集計する", func(t *testing.T) {
		source := new(MockOccupancySource)
		source.On("Occupancy", mock.Anything).Return(&application.OccupancyStats{}, nil)
		gauge := &recordingGauge{}
		r := NewOccupancyRefresher(source, gauge, 30*time.Millisecond)

		go r.Start(context.Background())
		assert.Eventually(t, func() bool { return gauge.count() >= 2 }, time.Second, 10*time.Millisecond)

		r.Stop()
		select {
		case <-r.doneCh:
		case <-time.After(time.Second):
			t.Error("refresher did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		source := new(MockOccupancySource)
		source.On("Occupancy", mock.Anything).Return(&application.OccupancyStats{}, nil).Maybe()
		r := NewOccupancyRefresher(source, &recordingGauge{}, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			r.Start(ctx)
			close(done)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("refresher did not stop after context cancel")
		}
	})
}
