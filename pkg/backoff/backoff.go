// Package backoff provides the exponential backoff schedule used for stream
// reconnection.
package backoff

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Jitter bounds as fractions of the capped base delay. Each computed delay
// gains a uniform random addition in [jitterMin, jitterMax) of its value,
// avoiding synchronized retry storms across clients.
const (
	jitterMin = 0.10
	jitterMax = 0.20
)

// Config provides backoff configuration
type Config struct {
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Ceiling for the exponential growth (before jitter)
	MaxRetries   int           // Attempts before the subscription gives up
}

// DefaultConfig returns sensible defaults for stream reconnection
func DefaultConfig() Config {
	return Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxRetries:   10,
	}
}

// Validate checks configuration bounds
func (c Config) Validate() error {
	if c.InitialDelay < 0 {
		return errors.New("backoff: InitialDelay cannot be negative")
	}
	if c.MaxDelay < 0 {
		return errors.New("backoff: MaxDelay cannot be negative")
	}
	if c.MaxDelay > 0 && c.InitialDelay > 0 && c.MaxDelay < c.InitialDelay {
		return errors.New("backoff: MaxDelay must be >= InitialDelay")
	}
	if c.MaxRetries < 0 {
		return errors.New("backoff: MaxRetries cannot be negative")
	}
	return nil
}

// normalized fills zero fields with defaults
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.InitialDelay == 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	return c
}

// Scheduler computes reconnection delays for successive attempts.
//
// Unlike a self-contained retry loop, the Scheduler only does the arithmetic:
// the connection state machine owns the single retry timer and asks the
// Scheduler how long to arm it for. The zero attempt is the first retry.
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a Scheduler from cfg, applying defaults to zero fields.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg.normalized()}
}

// Config returns the normalized configuration in effect.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Base returns the deterministic delay for attempt (0-indexed) before jitter:
// min(InitialDelay * 2^attempt, MaxDelay).
func (s *Scheduler) Base(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := s.cfg.InitialDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		// Doubling past the ceiling (or overflowing) pins to MaxDelay
		if delay > s.cfg.MaxDelay || delay < 0 {
			return s.cfg.MaxDelay
		}
	}
	if delay > s.cfg.MaxDelay {
		return s.cfg.MaxDelay
	}
	return delay
}

// Delay returns the jittered delay for attempt (0-indexed): the capped base
// plus a uniform 10-20% of its value, floored to whole milliseconds.
func (s *Scheduler) Delay(attempt int) time.Duration {
	base := s.Base(attempt)

	randMu.Lock()
	frac := jitterMin + randSource.Float64()*(jitterMax-jitterMin)
	randMu.Unlock()

	jitter := time.Duration(float64(base) * frac)
	total := base + jitter
	return total.Truncate(time.Millisecond)
}

// Exhausted reports whether attempt has reached the retry ceiling.
func (s *Scheduler) Exhausted(attempt int) bool {
	return attempt >= s.cfg.MaxRetries
}

// MaxRetries returns the configured retry ceiling.
func (s *Scheduler) MaxRetries() int {
	return s.cfg.MaxRetries
}
