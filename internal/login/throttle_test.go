package login

import (
	"testing"
	"time"
)

func TestThrottleAllowsUntilMaxAttempts(t *testing.T) {
	th := NewThrottle(3, time.Minute)
	ip := "10.0.0.1"

	for i := 0; i < 2; i++ {
		if !th.Allowed(ip) {
			t.Fatalf("attempt %d: expected allowed", i)
		}
		th.RecordFailure(ip)
	}
	if !th.Allowed(ip) {
		t.Fatal("expected allowed before reaching max attempts")
	}
}

func TestThrottleBansAfterMaxAttempts(t *testing.T) {
	th := NewThrottle(3, time.Minute)
	ip := "10.0.0.2"

	for i := 0; i < 3; i++ {
		th.RecordFailure(ip)
	}
	if th.Allowed(ip) {
		t.Fatal("expected ip to be banned after max attempts")
	}
}

func TestThrottleUnbansAfterDuration(t *testing.T) {
	th := NewThrottle(1, time.Millisecond)
	ip := "10.0.0.3"

	th.RecordFailure(ip)
	if th.Allowed(ip) {
		t.Fatal("expected ip to be banned immediately")
	}
	time.Sleep(5 * time.Millisecond)
	if !th.Allowed(ip) {
		t.Fatal("expected ban to expire")
	}
}

func TestThrottleRecordSuccessClearsFailures(t *testing.T) {
	th := NewThrottle(3, time.Minute)
	ip := "10.0.0.4"

	th.RecordFailure(ip)
	th.RecordFailure(ip)
	th.RecordSuccess(ip)
	th.RecordFailure(ip)
	th.RecordFailure(ip)
	if !th.Allowed(ip) {
		t.Fatal("expected ip to still be allowed after success reset the counter")
	}
}
