package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

var (
	monday    = day(2026, 10, 19, 9, 30)
	tuesday   = day(2026, 10, 20, 14, 0)
	friday    = day(2026, 10, 23, 16, 45)
	saturday  = day(2026, 10, 24, 11, 0)
	nextMonWk = day(2026, 10, 26, 8, 0)
)

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"zero days", monday, 0, monday},
		{"negative days", monday, -3, monday},
		{"same week", monday, 3, day(2026, 10, 22, 9, 30)},
		{"friday skips weekend", friday, 1, day(2026, 10, 26, 16, 45)},
		{"saturday start", saturday, 1, day(2026, 10, 26, 11, 0)},
		{"full week", monday, 5, day(2026, 10, 26, 9, 30)},
		{"no value", time.Time{}, 2, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddBusinessDays(tt.start, tt.n))
		})
	}
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same monday", monday, monday, 0},
		{"same day later hour", monday, day(2026, 10, 19, 23, 0), 0},
		{"monday to tuesday", monday, tuesday, 1},
		{"monday to friday", monday, friday, 4},
		{"friday to monday", friday, nextMonWk, 1},
		{"saturday to monday", saturday, nextMonWk, 0},
		{"end before start", friday, monday, 0},
		{"missing start", time.Time{}, monday, 0},
		{"missing end", monday, time.Time{}, 0},
		{"two weeks", monday, day(2026, 11, 2, 0, 0), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessDaysBetween(tt.start, tt.end))
		})
	}
}

func TestNextMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday rolls a full week", monday, day(2026, 10, 26, 23, 59)},
		{"monday midnight", day(2026, 10, 19, 0, 0), day(2026, 10, 26, 23, 59)},
		{"tuesday is six days out", tuesday, day(2026, 10, 26, 23, 59)},
		{"friday", friday, day(2026, 10, 26, 23, 59)},
		{"sunday is next day", day(2026, 10, 25, 22, 0), day(2026, 10, 26, 23, 59)},
		{"no value", time.Time{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMonday(tt.in))
		})
	}
}
