package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultDeadline(t *testing.T) {
	assert.Equal(t, day(2024, 3, 11), DefaultDeadline(day(2024, 3, 15)))
	// crosses a month boundary
	assert.Equal(t, day(2024, 2, 28), DefaultDeadline(day(2024, 3, 3)))
	// time of day is ignored
	assert.Equal(t, day(2024, 3, 11), DefaultDeadline(time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)))
}

func TestDeliveryIsOpen(t *testing.T) {
	d := Delivery{Date: day(2024, 3, 15), OrderDeadline: day(2024, 3, 11)}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"before deadline", day(2024, 3, 10), true},
		{"on deadline day", day(2024, 3, 11), true},
		{"late on deadline day", time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC), true},
		{"day after deadline", day(2024, 3, 12), false},
		{"on delivery day", day(2024, 3, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsOpen(tt.today))
		})
	}
}

func TestDeliveryOffersProduct(t *testing.T) {
	d := Delivery{Products: []Product{{ID: 1}, {ID: 3}}}

	assert.True(t, d.OffersProduct(1))
	assert.True(t, d.OffersProduct(3))
	assert.False(t, d.OffersProduct(2))
	assert.False(t, (&Delivery{}).OffersProduct(1))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := DateOf(time.Date(2024, 5, 2, 0, 30, 0, 0, loc))
	assert.Equal(t, day(2024, 5, 2), got, "calendar day is taken in the timestamp's own zone")
}
