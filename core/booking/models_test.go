package booking

import (
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending -> confirmed", from: StatusPending, to: StatusConfirmed, want: true},
		{name: "pending -> cancelled", from: StatusPending, to: StatusCancelled, want: true},
		{name: "pending -> completed", from: StatusPending, to: StatusCompleted, want: false},
		{name: "confirmed -> completed", from: StatusConfirmed, to: StatusCompleted, want: true},
		{name: "confirmed -> cancelled", from: StatusConfirmed, to: StatusCancelled, want: true},
		{name: "confirmed -> pending", from: StatusConfirmed, to: StatusPending, want: false},
		{name: "completed is terminal", from: StatusCompleted, to: StatusCancelled, want: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusConfirmed, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bk := Booking{Status: tt.from}
			if got := bk.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s) from %s = %v, want %v", tt.to, tt.from, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, time.March, 2, h, 0, 0, 0, time.UTC) }
	bk := Booking{StartsAt: at(10), EndsAt: at(12)}

	tests := []struct {
		name   string
		starts time.Time
		ends   time.Time
		want   bool
	}{
		{name: "identical", starts: at(10), ends: at(12), want: true},
		{name: "contained", starts: at(10), ends: at(11), want: true},
		{name: "straddles start", starts: at(9), ends: at(11), want: true},
		{name: "straddles end", starts: at(11), ends: at(13), want: true},
		{name: "back to back before", starts: at(8), ends: at(10), want: false},
		{name: "back to back after", starts: at(12), ends: at(14), want: false},
		{name: "disjoint", starts: at(14), ends: at(15), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bk.Overlaps(tt.starts, tt.ends); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}
