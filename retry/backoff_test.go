package retry_test

import (
	"testing"
	"time"

	"github.com/xraph/tick/retry"
)

func TestConstant_IgnoresAttempt(t *testing.T) {
	c := retry.NewConstant(250 * time.Millisecond)
	for _, attempt := range []int{1, 2, 7, 40} {
		if got := c.Delay(attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestExponential_Schedule(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		max     time.Duration
		attempt int
		want    time.Duration
	}{
		{"first retry waits base", time.Second, time.Hour, 1, time.Second},
		{"second retry doubles", time.Second, time.Hour, 2, 2 * time.Second},
		{"fourth retry", time.Second, time.Hour, 4, 8 * time.Second},
		{"growth hits the cap", time.Second, 10 * time.Second, 5, 10 * time.Second},
		{"stays at the cap", time.Second, 10 * time.Second, 20, 10 * time.Second},
		{"zero max means uncapped", time.Second, 0, 7, 64 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := retry.NewExponential(tt.base, tt.max)
			if got := e.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestJittered_StaysWithinFraction(t *testing.T) {
	j := retry.NewJittered(retry.NewExponential(time.Second, time.Hour), 0.3)

	for attempt := 1; attempt <= 5; attempt++ {
		floor := time.Duration(1<<uint(attempt-1)) * time.Second
		ceiling := time.Duration(float64(floor) * 1.3)

		for range 100 {
			got := j.Delay(attempt)
			if got < floor {
				t.Errorf("Delay(%d) = %v, undercuts the base delay %v", attempt, got, floor)
			}
			if got > ceiling {
				t.Errorf("Delay(%d) = %v, exceeds base+30%% %v", attempt, got, ceiling)
			}
		}
	}
}

func TestJittered_ProducesVariance(t *testing.T) {
	j := retry.NewJittered(retry.NewExponential(time.Second, time.Minute), 0.3)

	seen := make(map[time.Duration]bool)
	for range 100 {
		seen[j.Delay(3)] = true
	}
	if len(seen) < 2 {
		t.Errorf("100 samples produced %d distinct delays, want spread", len(seen))
	}
}

func TestJittered_DelaysStrictlyIncrease(t *testing.T) {
	// With 30% proportional jitter the ceiling of attempt n (1.3 * 2^(n-1))
	// stays below the floor of attempt n+1 (2^n), so any sampled sequence
	// of delays is strictly increasing.
	j := retry.NewJittered(retry.NewExponential(time.Second, time.Hour), 0.3)

	for range 50 {
		prev := time.Duration(0)
		for attempt := 1; attempt <= 5; attempt++ {
			d := j.Delay(attempt)
			if d <= prev {
				t.Fatalf("Delay(%d) = %v, not greater than previous %v", attempt, d, prev)
			}
			prev = d
		}
	}
}
