// Package payment prices courses, opens gateway orders and turns verified gateway
// notifications into enrollments.
package payment

import (
	"time"

	"learnhub/backend/internal/config"
)

// Quote is the price a student pays for a course right now. Amounts are minor units.
type Quote struct {
	BaseCents       int64      `json:"base_amount"`
	FinalCents      int64      `json:"final_amount"`
	DiscountPercent int        `json:"discount_percent"`
	OfferEndsAt     *time.Time `json:"offer_ends_at,omitempty"`
}

// FinalPrice applies the new-student offer: a student whose first enrollment anywhere
// is at most config.OfferWindow old gets config.OfferPercentOff off a course they are not
// enrolled in yet. The discount is rounded down to whole currency units.
func FinalPrice(now time.Time, priceCents int64, enrolledInCourse bool, firstEnrollment *time.Time) Quote {
	q := Quote{BaseCents: priceCents, FinalCents: priceCents}
	if enrolledInCourse || firstEnrollment == nil {
		return q
	}
	ends := firstEnrollment.Add(config.OfferWindow)
	if now.After(ends) {
		return q
	}
	q.DiscountPercent = config.OfferPercentOff
	discount := priceCents * int64(config.OfferPercentOff) / 100
	discount -= discount % 100
	q.FinalCents = priceCents - discount
	q.OfferEndsAt = &ends
	return q
}
