package holdings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard suppresses rapid duplicate holdings submissions. It is deliberately
// process-local: the window is seconds wide and exists to absorb double
// taps and client retries, not to provide cross-instance idempotency.
type Guard struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]guardEntry
	now     func() time.Time
}

type guardEntry struct {
	completed bool
	expiresAt time.Time
}

// NewGuard builds a guard with the given suppression window.
func NewGuard(ttl time.Duration) *Guard {
	return &Guard{
		ttl:     ttl,
		entries: make(map[string]guardEntry),
		now:     time.Now,
	}
}

// Fingerprint derives the request identity for one member's submission.
// Size is excluded on purpose: the legacy clients resend the same submission
// with cosmetic size edits, and those must still count as the same request
// within the window.
func Fingerprint(memberID uuid.UUID, lines []line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s|%s|%s|%d", l.item.Category, l.item.Type, l.status, l.quantity))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(memberID.String() + "\n" + strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}

// Begin registers a submission attempt. It reports true when an identical
// submission is already in flight or recently completed, in which case the
// caller acknowledges without reprocessing.
func (g *Guard) Begin(fingerprint string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	if entry, ok := g.entries[fingerprint]; ok && now.Before(entry.expiresAt) {
		return true
	}
	g.entries[fingerprint] = guardEntry{expiresAt: now.Add(g.ttl)}
	return false
}

// Complete marks a submission as processed, restarting the window so an
// immediate identical resend is acknowledged cheaply.
func (g *Guard) Complete(fingerprint string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[fingerprint] = guardEntry{completed: true, expiresAt: g.now().Add(g.ttl)}
}

// Release drops a failed submission so the member can retry immediately.
func (g *Guard) Release(fingerprint string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, fingerprint)
}

func (g *Guard) prune(now time.Time) {
	for key, entry := range g.entries {
		if !now.Before(entry.expiresAt) {
			delete(g.entries, key)
		}
	}
}
