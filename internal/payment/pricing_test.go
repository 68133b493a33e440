package payment_test

import (
	"testing"
	"time"

	"learnhub/backend/internal/payment"

	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-3 * 24 * time.Hour)
	edge := now.Add(-7 * 24 * time.Hour)
	old := now.Add(-8 * 24 * time.Hour)

	tests := []struct {
		name     string
		enrolled bool
		first    *time.Time
		want     int64
		percent  int
	}{
		{"no previous enrollment", false, nil, 100000, 0},
		{"new student", false, &recent, 80000, 20},
		{"offer ends exactly now", false, &edge, 80000, 20},
		{"offer expired", false, &old, 100000, 0},
		{"already enrolled in course", true, &recent, 100000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := payment.FinalPrice(now, 100000, tt.enrolled, tt.first)
			assert.Equal(t, int64(100000), q.BaseCents)
			assert.Equal(t, tt.want, q.FinalCents)
			assert.Equal(t, tt.percent, q.DiscountPercent)
			assert.Equal(t, tt.percent != 0, q.OfferEndsAt != nil)
		})
	}
}

func TestFinalPriceRoundsDiscountToWholeUnits(t *testing.T) {
	now := time.Now()
	first := now.Add(-time.Hour)

	q := payment.FinalPrice(now, 12_345, false, &first)
	// 20% of 123.45 is 24.69, rounded down to 24.00
	assert.Equal(t, int64(9_945), q.FinalCents)
}
