package backoff

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.InitialDelay != 1*time.Second {
		t.Errorf("expected 1s initial delay, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("expected 30s max delay, got %v", cfg.MaxDelay)
	}
	if cfg.MaxRetries != 10 {
		t.Errorf("expected 10 max retries, got %d", cfg.MaxRetries)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults are valid", DefaultConfig(), false},
		{"zero config is valid", Config{}, false},
		{"negative initial delay", Config{InitialDelay: -1}, true},
		{"negative max delay", Config{MaxDelay: -1}, true},
		{"max below initial", Config{InitialDelay: time.Second, MaxDelay: time.Millisecond}, true},
		{"negative retries", Config{MaxRetries: -1}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestScheduler_Base(t *testing.T) {
	sched := NewScheduler(Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxRetries:   10,
	})

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped
		{6, 30 * time.Second},
		{20, 30 * time.Second},
		{-1, 1 * time.Second}, // clamped to first attempt
	}

	for _, test := range tests {
		if got := sched.Base(test.attempt); got != test.expected {
			t.Errorf("Base(%d) = %v, expected %v", test.attempt, got, test.expected)
		}
	}
}

// Delay(k) must lie within [base, base*1.2] where base is the capped
// exponential value, and be a whole number of milliseconds.
func TestScheduler_DelayJitterBounds(t *testing.T) {
	sched := NewScheduler(DefaultConfig())

	for attempt := 0; attempt < 12; attempt++ {
		base := sched.Base(attempt)
		for i := 0; i < 50; i++ {
			d := sched.Delay(attempt)
			if d < base {
				t.Fatalf("Delay(%d) = %v below base %v", attempt, d, base)
			}
			max := time.Duration(float64(base) * (1 + jitterMax))
			if d > max {
				t.Fatalf("Delay(%d) = %v above base+20%% (%v)", attempt, d, max)
			}
			if d != d.Truncate(time.Millisecond) {
				t.Fatalf("Delay(%d) = %v is not floored to whole milliseconds", attempt, d)
			}
		}
	}
}

func TestScheduler_DelayVaries(t *testing.T) {
	sched := NewScheduler(DefaultConfig())

	seen := make(map[time.Duration]bool)
	for i := 0; i < 100; i++ {
		seen[sched.Delay(3)] = true
	}
	// 100 draws over an 800ms jitter window should not collapse to one value
	if len(seen) < 2 {
		t.Errorf("expected jitter to vary delays, got %d distinct values", len(seen))
	}
}

func TestScheduler_Exhausted(t *testing.T) {
	sched := NewScheduler(Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Second})

	for attempt, want := range map[int]bool{0: false, 1: false, 2: false, 3: true, 4: true} {
		if got := sched.Exhausted(attempt); got != want {
			t.Errorf("Exhausted(%d) = %v, expected %v", attempt, got, want)
		}
	}
}

func TestScheduler_ZeroConfigUsesDefaults(t *testing.T) {
	sched := NewScheduler(Config{})
	if sched.MaxRetries() != 10 {
		t.Errorf("expected default retry ceiling 10, got %d", sched.MaxRetries())
	}
	if sched.Base(0) != 1*time.Second {
		t.Errorf("expected default initial delay 1s, got %v", sched.Base(0))
	}
}
