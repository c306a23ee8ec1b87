package account

import "time"

// Default lockout policy.
const (
	DefaultMaxFailedAttempts = 5
	DefaultLockDuration      = 2 * time.Hour
)

// LockState is the state of the lockout machine for an account.
type LockState int

const (
	// LockOpen means attempts are below the threshold and no lock is active.
	LockOpen LockState = iota
	// Locked means the lock expiry lies in the future; authentication is
	// rejected without consulting the credential store.
	Locked
	// LockHalfOpen means the lock expiry has passed but the counter is
	// non-zero. It behaves as open on the next check, with the counter
	// restarted rather than carried over.
	LockHalfOpen
)

func (s LockState) String() string {
	switch s {
	case Locked:
		return "locked"
	case LockHalfOpen:
		return "half-open"
	default:
		return "open"
	}
}

// Lockout is the per-account failure counter plus lock expiry. It is a pure
// value; the store applies transitions atomically against the account row.
type Lockout struct {
	Attempts    int
	LockedUntil *time.Time
}

// State returns the lockout state at the given instant.
func (l Lockout) State(now time.Time) LockState {
	if l.LockedUntil != nil {
		if l.LockedUntil.After(now) {
			return Locked
		}
		if l.Attempts > 0 {
			return LockHalfOpen
		}
	}
	return LockOpen
}

// Fail returns the lockout value after one failed authentication. While
// locked the value is unchanged; an expired lock restarts the window at one
// attempt (the triggering failure is not a free pass); otherwise the counter
// increments and locks once the threshold is reached.
func (l Lockout) Fail(now time.Time, threshold int, duration time.Duration) Lockout {
	switch l.State(now) {
	case Locked:
		return l
	case LockHalfOpen:
		return Lockout{Attempts: 1}
	}
	next := Lockout{Attempts: l.Attempts + 1}
	if next.Attempts >= threshold {
		until := now.Add(duration)
		next.LockedUntil = &until
	}
	return next
}

// Reset returns the lockout value after a successful authentication: counter
// zero and no lock, regardless of prior state.
func (l Lockout) Reset() Lockout {
	return Lockout{}
}
