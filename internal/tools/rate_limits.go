// Copyright (C) 2025 the gofer authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig configures rate limits and cooldowns for tools.
type RateLimitConfig struct {
	DefaultPerMinute int
	PerTool          map[string]int
	Cooldowns        map[string]time.Duration
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
// Generous bounds: the point is to stop a looping model from hammering the
// host, not to throttle normal sequential use.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		DefaultPerMinute: 120,
	}
}

type rateLimiterSet struct {
	mu       sync.Mutex
	config   RateLimitConfig
	limiters map[string]*toolRateLimiter
}

func newRateLimiterSet(config RateLimitConfig) *rateLimiterSet {
	return &rateLimiterSet{
		config:   config,
		limiters: make(map[string]*toolRateLimiter),
	}
}

// Allow reports whether a call to the named tool may proceed right now.
func (s *rateLimiterSet) Allow(name string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	limiter, ok := s.limiters[name]
	if !ok {
		rate := s.config.DefaultPerMinute
		if perTool, found := s.config.PerTool[name]; found {
			rate = perTool
		}
		limiter = newToolRateLimiter(rate, s.config.Cooldowns[name])
		s.limiters[name] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

// Stop shuts down all limiter refill goroutines.
func (s *rateLimiterSet) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, limiter := range s.limiters {
		limiter.Stop()
	}
	s.limiters = make(map[string]*toolRateLimiter)
}

type toolRateLimiter struct {
	mu          sync.Mutex
	tokens      chan struct{}
	ticker      *time.Ticker
	stop        chan struct{}
	cooldown    time.Duration
	nextAllowed time.Time
}

func newToolRateLimiter(ratePerMinute int, cooldown time.Duration) *toolRateLimiter {
	if ratePerMinute <= 0 && cooldown <= 0 {
		return nil
	}

	rl := &toolRateLimiter{
		cooldown: cooldown,
	}

	if ratePerMinute > 0 {
		interval := time.Minute / time.Duration(ratePerMinute)
		if interval <= 0 {
			interval = time.Second
		}
		burst := ratePerMinute
		if burst < 1 {
			burst = 1
		}
		rl.tokens = make(chan struct{}, burst)
		for i := 0; i < burst; i++ {
			rl.tokens <- struct{}{}
		}
		rl.ticker = time.NewTicker(interval)
		rl.stop = make(chan struct{})
		go func() {
			for {
				select {
				case <-rl.ticker.C:
					select {
					case rl.tokens <- struct{}{}:
					default:
					}
				case <-rl.stop:
					return
				}
			}
		}()
	}

	return rl
}

func (r *toolRateLimiter) Allow() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if !r.nextAllowed.IsZero() && now.Before(r.nextAllowed) {
		return fmt.Errorf("%w: retry after %s", ErrToolInCooldown, time.Until(r.nextAllowed).Round(time.Second))
	}

	if r.tokens != nil {
		select {
		case <-r.tokens:
		default:
			return ErrToolRateLimited
		}
	}

	if r.cooldown > 0 {
		r.nextAllowed = now.Add(r.cooldown)
	}

	return nil
}

func (r *toolRateLimiter) Stop() {
	if r == nil {
		return
	}
	if r.ticker != nil {
		r.ticker.Stop()
	}
	if r.stop != nil {
		close(r.stop)
	}
}
