package patient

import (
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		birth *time.Time
		want  int
	}{
		{"unknown", nil, -1},
		{"birthday passed", timePtr(time.Date(1980, 3, 10, 0, 0, 0, 0, time.UTC)), 46},
		{"birthday today", timePtr(time.Date(1980, 8, 29, 0, 0, 0, 0, time.UTC)), 46},
		{"birthday pending", timePtr(time.Date(1980, 11, 2, 0, 0, 0, 0, time.UTC)), 45},
		{"newborn", timePtr(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Admission{BirthDate: tc.birth}
			if got := a.Age(now); got != tc.want {
				t.Fatalf("Age() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFilterEmpty(t *testing.T) {
	if !(Filter{}).Empty() {
		t.Fatal("zero filter should be empty")
	}
	if (Filter{Bed: "12A"}).Empty() {
		t.Fatal("filter with bed should not be empty")
	}
	if (Filter{NameTokens: []string{"silva"}}).Empty() {
		t.Fatal("filter with name tokens should not be empty")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
