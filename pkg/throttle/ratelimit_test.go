package throttle

import (
	"fmt"
	"testing"
	"time"
)

// fakeClock advances manually so window math is deterministic.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestRequestThrottleAllowsUnderLimit(t *testing.T) {
	clock := newFakeClock()
	throttle := NewRequestThrottle(DefaultRequestThrottleConfig(), nil)
	throttle.now = clock.Now

	for i := 0; i < 10; i++ {
		res := throttle.Check("10.0.0.1")
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		clock.Advance(time.Second)
	}
}

func TestRequestThrottleBlocksEleventhRequest(t *testing.T) {
	clock := newFakeClock()
	throttle := NewRequestThrottle(DefaultRequestThrottleConfig(), nil)
	throttle.now = clock.Now

	for i := 0; i < 10; i++ {
		if res := throttle.Check("10.0.0.1"); !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res := throttle.Check("10.0.0.1")
	if res.Allowed {
		t.Fatalf("11th request within the window should be rejected")
	}
	if res.Reason != ReasonRateLimited {
		t.Errorf("Reason = %q, expected %q", res.Reason, ReasonRateLimited)
	}
	if res.RetryAfter != 300*time.Second {
		t.Errorf("RetryAfter = %v, expected 300s", res.RetryAfter)
	}
}

func TestRequestThrottleBlockPersistsAfterVolumeDrops(t *testing.T) {
	clock := newFakeClock()
	throttle := NewRequestThrottle(DefaultRequestThrottleConfig(), nil)
	throttle.now = clock.Now

	for i := 0; i < 11; i++ {
		throttle.Check("10.0.0.1")
	}

	// The IP stays blocked for the full 300s even with no traffic.
	clock.Advance(299 * time.Second)
	if res := throttle.Check("10.0.0.1"); res.Allowed {
		t.Fatalf("request at 299s into the block should still be rejected")
	}

	clock.Advance(2 * time.Second)
	if res := throttle.Check("10.0.0.1"); !res.Allowed {
		t.Fatalf("request after block expiry should be allowed")
	}
}

func TestRequestThrottleWindowSlides(t *testing.T) {
	clock := newFakeClock()
	throttle := NewRequestThrottle(DefaultRequestThrottleConfig(), nil)
	throttle.now = clock.Now

	for i := 0; i < 10; i++ {
		throttle.Check("10.0.0.1")
	}

	// Once the earlier requests age out of the 60s window, new traffic
	// is allowed without ever tripping the block.
	clock.Advance(61 * time.Second)
	if res := throttle.Check("10.0.0.1"); !res.Allowed {
		t.Fatalf("request after window expiry should be allowed")
	}
}

func TestRequestThrottleIsolatesIPs(t *testing.T) {
	clock := newFakeClock()
	throttle := NewRequestThrottle(DefaultRequestThrottleConfig(), nil)
	throttle.now = clock.Now

	for i := 0; i < 11; i++ {
		throttle.Check("10.0.0.1")
	}

	if res := throttle.Check("10.0.0.2"); !res.Allowed {
		t.Fatalf("a different IP must not be affected by the block")
	}
}

func TestRequestThrottleConcurrentChecks(t *testing.T) {
	throttle := NewRequestThrottle(RequestThrottleConfig{
		MaxRequests:   50,
		Window:        time.Minute,
		BlockDuration: 5 * time.Minute,
	}, nil)

	done := make(chan int)
	for w := 0; w < 10; w++ {
		go func() {
			allowed := 0
			for i := 0; i < 10; i++ {
				if throttle.Check("10.9.9.9").Allowed {
					allowed++
				}
			}
			done <- allowed
		}()
	}

	total := 0
	for w := 0; w < 10; w++ {
		total += <-done
	}

	// 100 concurrent requests against a limit of 50: exactly 50 pass.
	if total != 50 {
		t.Errorf("allowed %d requests, expected exactly 50", total)
	}
}

func TestBlacklist(t *testing.T) {
	bl := NewBlacklist([]string{"1.2.3.4", "5.6.7.8", ""})

	tests := []struct {
		ip       string
		expected bool
	}{
		{"1.2.3.4", true},
		{"5.6.7.8", true},
		{"9.9.9.9", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("ip_%s", tt.ip), func(t *testing.T) {
			if got := bl.Contains(tt.ip); got != tt.expected {
				t.Errorf("Contains(%q) = %v, expected %v", tt.ip, got, tt.expected)
			}
		})
	}
}
