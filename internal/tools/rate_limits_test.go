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
	"context"
	"errors"
	"testing"
	"time"
)

func TestToolRateLimiterBurstExhaustion(t *testing.T) {
	rl := newToolRateLimiter(1, 0)
	defer rl.Stop()

	if err := rl.Allow(); err != nil {
		t.Fatalf("expected first call allowed, got %v", err)
	}
	if err := rl.Allow(); !errors.Is(err, ErrToolRateLimited) {
		t.Fatalf("expected rate limit after burst, got %v", err)
	}
}

func TestToolRateLimiterCooldown(t *testing.T) {
	rl := newToolRateLimiter(0, 50*time.Millisecond)
	defer rl.Stop()

	if err := rl.Allow(); err != nil {
		t.Fatalf("expected first call allowed, got %v", err)
	}
	if err := rl.Allow(); !errors.Is(err, ErrToolInCooldown) {
		t.Fatalf("expected cooldown rejection, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := rl.Allow(); err != nil {
		t.Fatalf("expected call allowed after cooldown, got %v", err)
	}
}

func TestToolRateLimiterDisabled(t *testing.T) {
	rl := newToolRateLimiter(0, 0)
	if rl != nil {
		t.Fatal("expected nil limiter when both bounds are disabled")
	}
	// Nil limiters are permissive no-ops.
	if err := rl.Allow(); err != nil {
		t.Fatalf("expected nil limiter to allow, got %v", err)
	}
	rl.Stop()
}

func TestRateLimiterSetPerToolOverride(t *testing.T) {
	set := newRateLimiterSet(RateLimitConfig{
		DefaultPerMinute: 120,
		PerTool:          map[string]int{"tight": 1},
	})
	defer set.Stop()

	if err := set.Allow("tight"); err != nil {
		t.Fatalf("expected first call allowed, got %v", err)
	}
	if err := set.Allow("tight"); !errors.Is(err, ErrToolRateLimited) {
		t.Fatalf("expected per-tool override to apply, got %v", err)
	}
	if err := set.Allow("other"); err != nil {
		t.Fatalf("expected default rate to allow, got %v", err)
	}
}

func TestRegistrySequentialCallsNotThrottled(t *testing.T) {
	// Default limits must not interfere with a model making a handful of
	// back-to-back calls.
	r := openRegistry(t)
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		result := r.Execute(context.Background(), "ls", map[string]interface{}{"path": dir})
		if result.Error != nil {
			t.Fatalf("call %d failed: %v", i, result.Error)
		}
	}
}
