package derive

import (
	"testing"
	"time"

	"github.com/goliatone/go-formsheet/pkg/cache"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	birth := date(2000, time.June, 15)
	tests := []struct {
		name  string
		birth *time.Time
		today time.Time
		want  int
	}{
		{"day before birthday", &birth, date(2024, time.June, 14), 23},
		{"on birthday", &birth, date(2024, time.June, 15), 24},
		{"earlier month", &birth, date(2024, time.May, 30), 23},
		{"later month", &birth, date(2024, time.July, 1), 24},
		{"unset", nil, date(2024, time.June, 15), 0},
		{"future", &birth, date(1999, time.January, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(tt.birth, tt.today); got != tt.want {
				t.Fatalf("Age = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngine_UsesInjectedClock(t *testing.T) {
	clock := cache.ClockFunc(func() time.Time {
		return time.Date(2024, time.June, 14, 23, 59, 0, 0, time.UTC)
	})
	e := NewEngine(clock)
	birth := date(2000, time.June, 15)
	if got := e.Age(&birth); got != 23 {
		t.Fatalf("Age = %d, want 23", got)
	}
	if !e.Today().Equal(date(2024, time.June, 14)) {
		t.Fatalf("Today = %v", e.Today())
	}
}
