package infra

import (
	"testing"
	"time"
)

// ── Cache ──

func TestCacheGetSet(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("table", 42)
	v, ok := c.Get("table")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if v.(int) != 42 {
		t.Errorf("Get = %v, want 42", v)
	}

	c.Invalidate("table")
	if _, ok := c.Get("table"); ok {
		t.Error("Get after Invalidate should miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("feed", "stale", -time.Second)
	if _, ok := c.Get("feed"); ok {
		t.Error("Get should miss on an expired entry")
	}
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Flush should miss")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) after Flush should miss")
	}
}

// ── DailyBudget ──

func TestDailyBudgetAllowAndSpend(t *testing.T) {
	b := NewDailyBudget(240)

	if !b.Allow(3) {
		t.Error("fresh budget should allow 3 calls")
	}

	b.Spend(238)
	if b.Allow(3) {
		t.Error("budget at 238/240 should not allow 3 more calls")
	}
	if !b.Allow(2) {
		t.Error("budget at 238/240 should still allow 2 calls")
	}

	_, used := b.Snapshot()
	if used != 238 {
		t.Errorf("Snapshot used = %d, want 238", used)
	}
}

func TestDailyBudgetResetsOnDateChange(t *testing.T) {
	b := NewDailyBudget(240)
	b.Restore("2023-01-01", 240)

	// Restored day is in the past; the counter must roll over to zero.
	if !b.Allow(3) {
		t.Error("budget restored from a previous day should reset and allow calls")
	}

	day, used := b.Snapshot()
	if used != 0 {
		t.Errorf("used after rollover = %d, want 0", used)
	}
	if day != time.Now().Format("2006-01-02") {
		t.Errorf("day after rollover = %q, want today", day)
	}
}

func TestDailyBudgetRestoreSameDay(t *testing.T) {
	b := NewDailyBudget(240)
	today := time.Now().Format("2006-01-02")
	b.Restore(today, 100)

	_, used := b.Snapshot()
	if used != 100 {
		t.Errorf("used after same-day restore = %d, want 100", used)
	}
}
