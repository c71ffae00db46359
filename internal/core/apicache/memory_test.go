package apicache

import (
	"fmt"
	"testing"
	"time"
)

func newClockedCache(maxLen int) (*Memory, *time.Time) {
	m := NewMemory(maxLen)
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestGetMissOnAbsentKey(t *testing.T) {
	m := NewMemory(10)
	if _, ok := m.Get("nope"); ok {
		t.Fatalf("expected miss")
	}
}

func TestSetThenGet(t *testing.T) {
	m, _ := newClockedCache(10)
	m.Set("k", "v", time.Minute)
	got, ok := m.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestExpiredEntryIsRemovedOnGet(t *testing.T) {
	m, now := newClockedCache(10)
	m.Set("k", "v", time.Minute)

	*now = now.Add(time.Minute) // exactly at expiry counts as expired
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expected expired miss")
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not removed, len = %d", m.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	m, _ := newClockedCache(3)
	for i := 0; i < 3; i++ {
		m.Set(fmt.Sprintf("k%d", i), i, time.Minute)
	}

	// touch k0 so k1 becomes the eviction candidate
	if _, ok := m.Get("k0"); !ok {
		t.Fatalf("k0 should be present")
	}
	m.Set("k3", 3, time.Minute)

	if _, ok := m.Get("k1"); ok {
		t.Fatalf("k1 should have been evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok := m.Get(k); !ok {
			t.Fatalf("%s should have survived", k)
		}
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestSetExistingKeyRefreshes(t *testing.T) {
	m, now := newClockedCache(10)
	m.Set("k", "old", time.Minute)
	*now = now.Add(30 * time.Second)
	m.Set("k", "new", time.Minute)

	*now = now.Add(45 * time.Second) // past the first expiry, inside the second
	got, ok := m.Get("k")
	if !ok || got != "new" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("duplicate entry for refreshed key, len = %d", m.Len())
	}
}

func TestNonPositiveTTLNeverExpires(t *testing.T) {
	m, now := newClockedCache(10)
	m.Set("k", "v", 0)

	*now = now.Add(1000 * time.Hour)
	got, ok := m.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	// still a regular resident: promotion and eviction apply
	if m.Len() != 1 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestCloseDropsEverything(t *testing.T) {
	m, _ := newClockedCache(10)
	m.Set("k", "v", time.Minute)
	m.Close()
	if m.Len() != 0 {
		t.Fatalf("close left entries behind")
	}
	if _, ok := m.Get("k"); ok {
		t.Fatalf("entry survived close")
	}
}

func TestUnboundedCacheNeverEvicts(t *testing.T) {
	m, _ := newClockedCache(0)
	for i := 0; i < 5000; i++ {
		m.Set(fmt.Sprintf("k%d", i), i, time.Minute)
	}
	if m.Len() != 5000 {
		t.Fatalf("len = %d", m.Len())
	}
}
