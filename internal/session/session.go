// Package session ties a shopper's cart and wishlist to a browser session
// cookie. Stores live in memory and are the single source of truth; an
// optional snapshot store persists them across restarts with last-write-wins
// semantics.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/wishlist"
)

// CookieName is the session id cookie.
const CookieName = "storefront_session"

// Session holds the per-shopper state stores.
type Session struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
}

// SnapshotStore persists cart state outside process memory.
// LoadCart returns ok=false when no snapshot exists for the session.
// Wishlists are not snapshotted: they are cheap to rebuild and their entries
// are catalog references rather than priced state.
type SnapshotStore interface {
	SaveCart(ctx context.Context, sessionID string, items []cart.LineItem) error
	LoadCart(ctx context.Context, sessionID string) ([]cart.LineItem, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// entry pairs a session with its last access time for idle eviction.
type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager hands out sessions keyed by cookie. Snapshot persistence is best
// effort: a failing snapshot store degrades to memory-only sessions rather
// than failing shopper requests.
//
// Sessions idle longer than the cookie TTL are evicted by StartCleanup so a
// client rotating cookie values cannot grow the map without bound. An evicted
// cart is not lost when snapshots are configured: the next request with that
// cookie hydrates it from Redis again.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	snapshots SnapshotStore
	cookieTTL time.Duration
}

// NewManager creates a Manager. snapshots may be nil for memory-only sessions.
func NewManager(snapshots SnapshotStore, cookieTTL time.Duration) *Manager {
	return &Manager{
		sessions:  make(map[string]*entry),
		snapshots: snapshots,
		cookieTTL: cookieTTL,
	}
}

// Get returns the session for the request, creating it (and setting the
// cookie) when absent. A session unknown to memory is hydrated from the
// snapshot store when one exists.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	id := ""
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		id = c.Value
	}

	if id == "" {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(m.cookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{session: &Session{
			ID:       id,
			Cart:     cart.NewStore(),
			Wishlist: wishlist.NewStore(),
		}}
		m.sessions[id] = e
	}
	e.lastSeen = time.Now()
	m.mu.Unlock()

	if !ok {
		m.hydrate(r.Context(), e.session)
	}
	return e.session
}

// StartCleanup launches a goroutine that periodically evicts sessions idle
// longer than the cookie TTL. It stops when ctx is cancelled.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.evict(now)
			}
		}
	}()
}

func (m *Manager) evict(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) >= m.cookieTTL {
			delete(m.sessions, id)
		}
	}
}

// Len returns the number of in-memory sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// hydrate loads the cart snapshot into a freshly created session.
func (m *Manager) hydrate(ctx context.Context, s *Session) {
	if m.snapshots == nil {
		return
	}
	items, ok, err := m.snapshots.LoadCart(ctx, s.ID)
	if err != nil {
		zctx.From(ctx).Warn("Loading cart snapshot failed",
			zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	if ok {
		s.Cart.Replace(items)
	}
}

// Persist writes the session's current cart to the snapshot store.
// Failures are logged, not returned: the in-memory store already holds the
// authoritative state.
func (m *Manager) Persist(ctx context.Context, s *Session) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.SaveCart(ctx, s.ID, s.Cart.Items()); err != nil {
		zctx.From(ctx).Warn("Saving cart snapshot failed",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}

// Drop discards the session's snapshot, e.g. after a placed order cleared
// the cart.
func (m *Manager) Drop(ctx context.Context, s *Session) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Delete(ctx, s.ID); err != nil {
		zctx.From(ctx).Warn("Deleting session snapshot failed",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}
