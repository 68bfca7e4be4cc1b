package service

import (
	"sync"
	"time"

	"referral-server/internal/config"
)

// LoginAttempt tracks failed login attempts for one key
type LoginAttempt struct {
	FailCount   int
	LastAttempt time.Time
	LockedUntil time.Time
}

// LoginLimiter locks accounts after repeated failed logins
type LoginLimiter struct {
	attempts     map[string]*LoginAttempt
	mu           sync.RWMutex
	maxAttempts  int
	lockDuration time.Duration
	resetAfter   time.Duration
}

var (
	defaultLoginLimiter *LoginLimiter
	loginLimiterOnce    sync.Once
)

// GetLoginLimiter returns the account limiter singleton
func GetLoginLimiter() *LoginLimiter {
	loginLimiterOnce.Do(func() {
		cfg := config.Get()
		defaultLoginLimiter = NewLoginLimiter(
			cfg.Security.MaxLoginAttempts,
			time.Duration(cfg.Security.LoginLockMinutes)*time.Minute,
			30*time.Minute,
		)
	})
	return defaultLoginLimiter
}

// NewLoginLimiter creates an account limiter
func NewLoginLimiter(maxAttempts int, lockDuration, resetAfter time.Duration) *LoginLimiter {
	ll := &LoginLimiter{
		attempts:     make(map[string]*LoginAttempt),
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		resetAfter:   resetAfter,
	}
	go ll.cleanup()
	return ll
}

// IsLocked reports whether the key is currently locked out
func (ll *LoginLimiter) IsLocked(key string) (bool, time.Duration) {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[key]
	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.LockedUntil) {
		return true, time.Until(attempt.LockedUntil)
	}

	return false, 0
}

// RecordFailure records a failed login, locking the key once the limit is hit
func (ll *LoginLimiter) RecordFailure(key string) (locked bool, remaining time.Duration) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	attempt, exists := ll.attempts[key]

	if !exists {
		attempt = &LoginAttempt{}
		ll.attempts[key] = attempt
	}

	if now.Sub(attempt.LastAttempt) > ll.resetAfter {
		attempt.FailCount = 0
	}

	attempt.FailCount++
	attempt.LastAttempt = now

	if attempt.FailCount >= ll.maxAttempts {
		attempt.LockedUntil = now.Add(ll.lockDuration)
		return true, ll.lockDuration
	}

	return false, 0
}

// RecordSuccess clears the failure record after a successful login
func (ll *LoginLimiter) RecordSuccess(key string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	delete(ll.attempts, key)
}

// GetRemainingAttempts returns how many attempts remain before lockout
func (ll *LoginLimiter) GetRemainingAttempts(key string) int {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[key]
	if !exists {
		return ll.maxAttempts
	}

	if time.Since(attempt.LastAttempt) > ll.resetAfter {
		return ll.maxAttempts
	}

	remaining := ll.maxAttempts - attempt.FailCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (ll *LoginLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		ll.mu.Lock()
		now := time.Now()
		for key, attempt := range ll.attempts {
			if now.After(attempt.LockedUntil) && now.Sub(attempt.LastAttempt) > ll.resetAfter {
				delete(ll.attempts, key)
			}
		}
		ll.mu.Unlock()
	}
}

// IPLoginLimiter throttles one IP trying many different accounts
type IPLoginLimiter struct {
	attempts     map[string]*LoginAttempt
	mu           sync.RWMutex
	maxAttempts  int
	lockDuration time.Duration
	resetAfter   time.Duration
}

var (
	defaultIPLimiter *IPLoginLimiter
	ipLimiterOnce    sync.Once
)

// GetIPLoginLimiter returns the IP limiter singleton
func GetIPLoginLimiter() *IPLoginLimiter {
	ipLimiterOnce.Do(func() {
		cfg := config.Get()
		defaultIPLimiter = NewIPLoginLimiter(
			cfg.Security.IPMaxAttempts,
			time.Duration(cfg.Security.IPLockMinutes)*time.Minute,
			time.Hour,
		)
	})
	return defaultIPLimiter
}

// NewIPLoginLimiter creates an IP limiter
func NewIPLoginLimiter(maxAttempts int, lockDuration, resetAfter time.Duration) *IPLoginLimiter {
	ll := &IPLoginLimiter{
		attempts:     make(map[string]*LoginAttempt),
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		resetAfter:   resetAfter,
	}
	go ll.cleanup()
	return ll
}

// IsLocked reports whether the IP is currently locked out
func (ll *IPLoginLimiter) IsLocked(ip string) (bool, time.Duration) {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[ip]
	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.LockedUntil) {
		return true, time.Until(attempt.LockedUntil)
	}

	return false, 0
}

// RecordFailure records a failed login from the IP
func (ll *IPLoginLimiter) RecordFailure(ip string) (locked bool, remaining time.Duration) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	attempt, exists := ll.attempts[ip]

	if !exists {
		attempt = &LoginAttempt{}
		ll.attempts[ip] = attempt
	}

	if now.Sub(attempt.LastAttempt) > ll.resetAfter {
		attempt.FailCount = 0
	}

	attempt.FailCount++
	attempt.LastAttempt = now

	if attempt.FailCount >= ll.maxAttempts {
		attempt.LockedUntil = now.Add(ll.lockDuration)
		return true, ll.lockDuration
	}

	return false, 0
}

// RecordSuccess decrements the counter, a shared IP is not fully cleared
func (ll *IPLoginLimiter) RecordSuccess(ip string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	if attempt, exists := ll.attempts[ip]; exists {
		attempt.FailCount--
		if attempt.FailCount <= 0 {
			delete(ll.attempts, ip)
		}
	}
}

func (ll *IPLoginLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		ll.mu.Lock()
		now := time.Now()
		for ip, attempt := range ll.attempts {
			if now.After(attempt.LockedUntil) && now.Sub(attempt.LastAttempt) > ll.resetAfter {
				delete(ll.attempts, ip)
			}
		}
		ll.mu.Unlock()
	}
}
