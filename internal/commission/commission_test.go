package commission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/craudioviz/partner-portal/internal/model"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		dealValue   float64
		ratePercent float64
		want        float64
	}{
		{name: "quarter rate", dealValue: 1000, ratePercent: 25, want: 250},
		{name: "fractional rate", dealValue: 500, ratePercent: 17.5, want: 87.5},
		{name: "zero rate", dealValue: 1000, ratePercent: 0, want: 0},
		{name: "zero value", dealValue: 0, ratePercent: 25, want: 0},
		{name: "negative value passes through", dealValue: -1000, ratePercent: 25, want: -250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.dealValue, tt.ratePercent))
		})
	}
}

func TestClawbackAmount(t *testing.T) {
	tests := []struct {
		name       string
		commission float64
		days       int
		want       float64
	}{
		{name: "day 1 full clawback", commission: 200, days: 1, want: 200},
		{name: "day 90 still full", commission: 200, days: 90, want: 200},
		{name: "day 91 half", commission: 200, days: 91, want: 100},
		{name: "day 180 still half", commission: 200, days: 180, want: 100},
		{name: "day 181 vested", commission: 200, days: 181, want: 0},
		{name: "day 365 vested", commission: 200, days: 365, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClawbackAmount(tt.commission, tt.days))
		})
	}
}

func TestEligibleAt_WindowBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !eligibleAt(now.AddDate(0, 0, -89), 90, now) {
		t.Fatalf("89 days since close must be eligible")
	}
	if eligibleAt(now.AddDate(0, 0, -90), 90, now) {
		t.Fatalf("exactly 90 days since close must not be eligible")
	}
	if eligibleAt(now.AddDate(0, 0, -91), 90, now) {
		t.Fatalf("91 days since close must not be eligible")
	}
}

func TestIsClawbackEligible_WallClock(t *testing.T) {
	if !IsClawbackEligible(time.Now().AddDate(0, 0, -89), DefaultClawbackWindowDays) {
		t.Fatalf("deal closed 89 days ago must be eligible")
	}
	if IsClawbackEligible(time.Now().AddDate(0, 0, -90), DefaultClawbackWindowDays) {
		t.Fatalf("deal closed 90 days ago must not be eligible")
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{name: "two weeks ahead", deadline: now.AddDate(0, 0, 14), want: 14},
		{name: "partial day rounds up", deadline: now.Add(36 * time.Hour), want: 2},
		{name: "same instant", deadline: now, want: 0},
		{name: "overdue is negative", deadline: now.AddDate(0, 0, -3), want: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.deadline, now))
		})
	}
}

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)

	assert.Equal(t, 0.0, s.ConversionRate)
	assert.Equal(t, 0.0, s.AvgDealSize)
	assert.Equal(t, 0.0, s.TotalCommissions)
	assert.Equal(t, 0.0, s.PendingCommissions)
}

func TestStats_ConversionRounding(t *testing.T) {
	deals := []model.Deal{
		{Status: model.DealStatusPending, PaymentStatus: model.PaymentStatusPending},
		{Status: model.DealStatusActive, PaymentStatus: model.PaymentStatusPending},
		{Status: model.DealStatusCompleted, PaymentStatus: model.PaymentStatusPaid},
	}

	s := Stats(deals)
	assert.Equal(t, 66.7, s.ConversionRate)
}

func TestStats_Reductions(t *testing.T) {
	deals := []model.Deal{
		{
			Status:           model.DealStatusCompleted,
			PaymentStatus:    model.PaymentStatusPaid,
			DealValue:        1000,
			CommissionAmount: 250,
		},
		{
			Status:           model.DealStatusCompleted,
			PaymentStatus:    model.PaymentStatusPending,
			DealValue:        3000,
			CommissionAmount: 600,
		},
		{
			Status:           model.DealStatusActive,
			PaymentStatus:    model.PaymentStatusPending,
			DealValue:        500,
			CommissionAmount: 100,
		},
		{
			Status:           model.DealStatusClawback,
			PaymentStatus:    model.PaymentStatusClawback,
			DealValue:        700,
			CommissionAmount: 140,
		},
	}

	s := Stats(deals)

	assert.Equal(t, 250.0, s.TotalCommissions)
	assert.Equal(t, 700.0, s.PendingCommissions)
	assert.Equal(t, 2, s.DealsWon)
	assert.Equal(t, 1, s.ActiveDeals)
	assert.Equal(t, 2000.0, s.AvgDealSize)
	assert.Equal(t, 100.0, s.ConversionRate)
}

func TestStats_UsesStoredCommission(t *testing.T) {
	// commission_amount расходится с rate × value: для выплат действует сохранённое значение
	deals := []model.Deal{
		{
			Status:           model.DealStatusCompleted,
			PaymentStatus:    model.PaymentStatusPaid,
			DealValue:        1000,
			CommissionRate:   25,
			CommissionAmount: 300,
		},
	}

	s := Stats(deals)
	assert.Equal(t, 300.0, s.TotalCommissions)
}
