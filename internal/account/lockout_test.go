package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockoutStates(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		lockout Lockout
		want    LockState
	}{
		{"fresh", Lockout{}, LockOpen},
		{"counting", Lockout{Attempts: 3}, LockOpen},
		{"locked", Lockout{Attempts: 5, LockedUntil: &future}, Locked},
		{"expired lock", Lockout{Attempts: 5, LockedUntil: &past}, LockHalfOpen},
		{"expired lock zero attempts", Lockout{LockedUntil: &past}, LockOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lockout.State(now))
		})
	}
}

func TestLockoutFailLocksAtThreshold(t *testing.T) {
	now := time.Now()
	l := Lockout{}
	for i := 1; i < DefaultMaxFailedAttempts; i++ {
		l = l.Fail(now, DefaultMaxFailedAttempts, DefaultLockDuration)
		assert.Equal(t, i, l.Attempts)
		assert.Equal(t, LockOpen, l.State(now))
	}

	l = l.Fail(now, DefaultMaxFailedAttempts, DefaultLockDuration)
	assert.Equal(t, DefaultMaxFailedAttempts, l.Attempts)
	assert.Equal(t, Locked, l.State(now))
	assert.Equal(t, now.Add(DefaultLockDuration), *l.LockedUntil)
}

func TestLockoutFailWhileLockedIsNoop(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Hour)
	l := Lockout{Attempts: 5, LockedUntil: &until}

	next := l.Fail(now, DefaultMaxFailedAttempts, DefaultLockDuration)
	assert.Equal(t, l, next)
}

func TestLockoutFailAfterExpiryRestartsWindow(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Second)
	l := Lockout{Attempts: 5, LockedUntil: &expired}

	// The failure that finds an expired lock starts a new window at one
	// attempt; it is not a free pass and does not continue the old count.
	next := l.Fail(now, DefaultMaxFailedAttempts, DefaultLockDuration)
	assert.Equal(t, 1, next.Attempts)
	assert.Nil(t, next.LockedUntil)
	assert.Equal(t, LockOpen, next.State(now))
}

func TestLockoutReset(t *testing.T) {
	until := time.Now().Add(time.Hour)
	l := Lockout{Attempts: 4, LockedUntil: &until}
	assert.Equal(t, Lockout{}, l.Reset())
}

func TestLockStateString(t *testing.T) {
	assert.Equal(t, "open", LockOpen.String())
	assert.Equal(t, "locked", Locked.String())
	assert.Equal(t, "half-open", LockHalfOpen.String())
}
