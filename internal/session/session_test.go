package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewear/storefront/internal/domain/cart"
)

type memSnapshots struct {
	carts   map[string][]cart.LineItem
	saveErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{carts: make(map[string][]cart.LineItem)}
}

func (m *memSnapshots) SaveCart(_ context.Context, id string, items []cart.LineItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[id] = items
	return nil
}

func (m *memSnapshots) LoadCart(_ context.Context, id string) ([]cart.LineItem, bool, error) {
	items, ok := m.carts[id]
	return items, ok, nil
}

func (m *memSnapshots) Delete(_ context.Context, id string) error {
	delete(m.carts, id)
	return nil
}

func TestManager_GetCreatesSessionAndCookie(t *testing.T) {
	m := NewManager(nil, time.Hour)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	s := m.Get(w, r)

	require.NotNil(t, s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.Cart.Len())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, s.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestManager_GetReturnsSameSessionForCookie(t *testing.T) {
	m := NewManager(nil, time.Hour)

	w1 := httptest.NewRecorder()
	s1 := m.Get(w1, httptest.NewRequest(http.MethodGet, "/", nil))
	s1.Cart.Add(cart.LineItem{ProductID: "p1", UnitPrice: decimal.NewFromInt(10), Quantity: 1})

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: CookieName, Value: s1.ID})
	s2 := m.Get(httptest.NewRecorder(), r2)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, s2.Cart.Len())
}

func TestManager_HydratesFromSnapshot(t *testing.T) {
	snaps := newMemSnapshots()
	snaps.carts["known-session"] = []cart.LineItem{
		{ProductID: "p1", UnitPrice: decimal.NewFromInt(25), Quantity: 2},
	}
	m := NewManager(snaps, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "known-session"})
	s := m.Get(httptest.NewRecorder(), r)

	require.Equal(t, 1, s.Cart.Len())
	assert.Equal(t, "50", s.Cart.Subtotal().String())
}

func TestManager_PersistAndDrop(t *testing.T) {
	snaps := newMemSnapshots()
	m := NewManager(snaps, time.Hour)

	s := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s.Cart.Add(cart.LineItem{ProductID: "p1", UnitPrice: decimal.NewFromInt(10), Quantity: 1})

	m.Persist(context.Background(), s)
	require.Len(t, snaps.carts[s.ID], 1)

	m.Drop(context.Background(), s)
	_, ok := snaps.carts[s.ID]
	assert.False(t, ok)
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	m := NewManager(nil, time.Hour)

	stale := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	fresh := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, 2, m.Len())

	m.mu.Lock()
	m.sessions[stale.ID].lastSeen = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	m.evict(time.Now())
	assert.Equal(t, 1, m.Len())

	// The surviving entry is the recently used session.
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: CookieName, Value: fresh.ID})
	assert.Same(t, fresh, m.Get(httptest.NewRecorder(), r2))

	// The stale session is rebuilt empty on its next request.
	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	r3.AddCookie(&http.Cookie{Name: CookieName, Value: stale.ID})
	assert.NotSame(t, stale, m.Get(httptest.NewRecorder(), r3))
}

func TestManager_EvictedSessionRehydratesFromSnapshot(t *testing.T) {
	snaps := newMemSnapshots()
	m := NewManager(snaps, time.Hour)

	s := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s.Cart.Add(cart.LineItem{ProductID: "p1", UnitPrice: decimal.NewFromInt(10), Quantity: 2})
	m.Persist(context.Background(), s)

	m.evict(time.Now().Add(2 * time.Hour))
	require.Equal(t, 0, m.Len())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: s.ID})
	revived := m.Get(httptest.NewRecorder(), r)

	require.Equal(t, 1, revived.Cart.Len())
	assert.Equal(t, "20", revived.Cart.Subtotal().String())
}

func TestManager_CleanupRunsInBackground(t *testing.T) {
	m := NewManager(nil, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartCleanup(ctx, 5*time.Millisecond)

	m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestManager_PersistFailureDoesNotPanic(t *testing.T) {
	snaps := newMemSnapshots()
	snaps.saveErr = assert.AnError
	m := NewManager(snaps, time.Hour)

	s := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Best-effort persistence: the request flow must survive snapshot errors.
	m.Persist(context.Background(), s)
}
