package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Default per-type cool-downs. Informational alerts wait a full day;
// actionable churn alerts may repeat sooner.
var defaultCooldowns = map[AlertType]time.Duration{
	AlertChampionCooling:     12 * time.Hour,
	AlertDMDisengaged:        8 * time.Hour,
	AlertBudgetHolderEngaged: 24 * time.Hour,
	AlertDMInactive:          12 * time.Hour,
	AlertChampionInactive:    24 * time.Hour,
}

// fallbackCooldown applies to alert types without a configured entry.
const fallbackCooldown = 12 * time.Hour

// ThrottleKey builds the keyed-state key for a (dealId, alertType) pair.
func ThrottleKey(dealID string, t AlertType) string {
	return dealID + ":" + string(t)
}

// Store is the injectable last-sent-timestamp store behind the throttle.
// Implementations must serialize read-modify-write per key; operations on
// distinct keys never block each other.
type Store interface {
	// LastSent returns the recorded send time for key, with ok=false when
	// no send has been recorded (or the record expired).
	LastSent(ctx context.Context, key string) (time.Time, bool, error)
	// RecordSend stores now as the last send time for key. ttl bounds how
	// long the record needs to survive; it is at least the cool-down.
	RecordSend(ctx context.Context, key string, now time.Time, ttl time.Duration) error
	// Acquire atomically records a send if and only if no unexpired record
	// exists for key. Returns true when the caller may send.
	Acquire(ctx context.Context, key string, now time.Time, cooldown time.Duration) (bool, error)
	// Reset forgets the key.
	Reset(ctx context.Context, key string) error
}

// Throttle rate-limits alerts per (deal, alert-type) pair against an
// injected store, so tests and concurrent callers can isolate state.
type Throttle struct {
	store     Store
	cooldowns map[AlertType]time.Duration
}

// NewThrottle creates a throttle over the given store. Overrides replace
// the default cool-down for the listed types.
func NewThrottle(store Store, overrides map[AlertType]time.Duration) *Throttle {
	cooldowns := make(map[AlertType]time.Duration, len(defaultCooldowns))
	for t, d := range defaultCooldowns {
		cooldowns[t] = d
	}
	for t, d := range overrides {
		if d > 0 {
			cooldowns[t] = d
		}
	}
	return &Throttle{store: store, cooldowns: cooldowns}
}

// Cooldown returns the configured cool-down for an alert type.
func (t *Throttle) Cooldown(at AlertType) time.Duration {
	if d, ok := t.cooldowns[at]; ok {
		return d
	}
	return fallbackCooldown
}

// ShouldThrottle reports whether an alert of this type for this deal is
// still inside its cool-down window.
func (t *Throttle) ShouldThrottle(ctx context.Context, dealID string, at AlertType, now time.Time) (bool, error) {
	last, ok, err := t.store.LastSent(ctx, ThrottleKey(dealID, at))
	if err != nil {
		return false, fmt.Errorf("throttle lookup %s/%s: %w", dealID, at, err)
	}
	return ok && now.Sub(last) < t.Cooldown(at), nil
}

// RecordSend marks an alert as sent, starting the cool-down window.
func (t *Throttle) RecordSend(ctx context.Context, dealID string, at AlertType, now time.Time) error {
	cd := t.Cooldown(at)
	if err := t.store.RecordSend(ctx, ThrottleKey(dealID, at), now, cd); err != nil {
		return fmt.Errorf("throttle record %s/%s: %w", dealID, at, err)
	}
	return nil
}

// Admit atomically checks and claims the send slot for an alert. This is
// the path concurrent callers use; check-then-record races are impossible.
func (t *Throttle) Admit(ctx context.Context, dealID string, at AlertType, now time.Time) (bool, error) {
	ok, err := t.store.Acquire(ctx, ThrottleKey(dealID, at), now, t.Cooldown(at))
	if err != nil {
		return false, fmt.Errorf("throttle admit %s/%s: %w", dealID, at, err)
	}
	return ok, nil
}

// MemoryStore is the in-process Store: a mutex-guarded timestamp map with
// per-record expiry. Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	sentAt    time.Time
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory throttle store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) LastSent(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return time.Time{}, false, nil
	}
	return e.sentAt, true, nil
}

func (m *MemoryStore) RecordSend(_ context.Context, key string, now time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{sentAt: now, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemoryStore) Acquire(_ context.Context, key string, now time.Time, cooldown time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && now.Sub(e.sentAt) < cooldown && !now.After(e.expiresAt) {
		return false, nil
	}
	m.entries[key] = memoryEntry{sentAt: now, expiresAt: now.Add(cooldown)}
	return true, nil
}

func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
