package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockRateConverter is a mock of the exchange rate operations consumed by
// the expense and user services
type MockRateConverter struct {
	mock.Mock
}

// ConvertAmount mocks a single conversion
func (m *MockRateConverter) ConvertAmount(ctx context.Context, amount float64, from, to string, date *time.Time) float64 {
	args := m.Called(ctx, amount, from, to, date)
	return args.Get(0).(float64)
}

// GetBatchRates mocks a batch rate lookup
func (m *MockRateConverter) GetBatchRates(ctx context.Context, froms []string, to string, date *time.Time) map[string]float64 {
	args := m.Called(ctx, froms, to, date)
	if args.Get(0) == nil {
		return map[string]float64{}
	}
	return args.Get(0).(map[string]float64)
}
