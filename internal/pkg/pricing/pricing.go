// Package pricing computes what a wall booking costs.
package pricing

import (
	"errors"
	"time"
)

// DefaultServiceFee is added once per booking (KRW)
const DefaultServiceFee int64 = 5000

var ErrInvalidRange = errors.New("start date is after end date")

// Quote is the price breakdown of a booking
type Quote struct {
	Days       int   `json:"days"`
	DailyPrice int64 `json:"daily_price"`
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"service_fee"`
	Total      int64 `json:"total"`
}

// Days returns the number of billable days between two calendar dates.
// The count is end minus start; a booking that starts and ends on the
// same day is billed as one day.
func Days(start, end time.Time) (int, error) {
	s := truncate(start)
	e := truncate(end)
	if s.After(e) {
		return 0, ErrInvalidRange
	}
	days := int(e.Sub(s).Hours() / 24)
	if days == 0 {
		days = 1
	}
	return days, nil
}

// Calculate prices a booking from the space's daily rate
func Calculate(dailyPrice, serviceFee int64, start, end time.Time) (Quote, error) {
	days, err := Days(start, end)
	if err != nil {
		return Quote{}, err
	}
	subtotal := dailyPrice * int64(days)
	return Quote{
		Days:       days,
		DailyPrice: dailyPrice,
		Subtotal:   subtotal,
		ServiceFee: serviceFee,
		Total:      subtotal + serviceFee,
	}, nil
}

// truncate drops the clock part, keeping the calendar date in UTC
func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
