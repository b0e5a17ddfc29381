package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/curateddiscoveries/backend/internal/models"
)

// UserLoader resolves the credential row for a user id.
type UserLoader interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// ProfileLoader resolves the profile row for a user id. A missing profile is
// (nil, nil), not an error: the session then exposes a null profile and the
// client keeps its profile-loading state.
type ProfileLoader interface {
	LookupProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// Snapshot is one immutable view of an authenticated user. Updates replace
// the whole snapshot rather than mutating it, so holders can rely on
// pointer-equality change detection.
type Snapshot struct {
	User     *models.User
	Profile  *models.Profile // nil while the profile row is missing
	LoadedAt time.Time
}

// Manager caches per-user session snapshots for this process and keeps them
// coherent with the rest of the fleet by consuming auth events from the Bus.
// Concurrent resolves for the same user coalesce into one load.
type Manager struct {
	users    UserLoader
	profiles ProfileLoader
	bus      *Bus

	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
	listeners []func(Event)

	group singleflight.Group
}

func NewManager(users UserLoader, profiles ProfileLoader, bus *Bus) *Manager {
	return &Manager{
		users:     users,
		profiles:  profiles,
		bus:       bus,
		snapshots: make(map[uuid.UUID]*Snapshot),
	}
}

// Resolve returns the cached snapshot for a user, loading it on a miss.
func (m *Manager) Resolve(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	m.mu.RLock()
	snap, ok := m.snapshots[userID]
	m.mu.RUnlock()
	if ok {
		return snap, nil
	}

	v, err, _ := m.group.Do(userID.String(), func() (interface{}, error) {
		return m.load(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Refresh reloads the snapshot from the database, bypassing the cache.
func (m *Manager) Refresh(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	m.Invalidate(userID)
	return m.Resolve(ctx, userID)
}

func (m *Manager) load(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := m.profiles.LookupProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{User: user, Profile: profile, LoadedAt: time.Now()}
	m.mu.Lock()
	m.snapshots[userID] = snap
	m.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot for a user.
func (m *Manager) Invalidate(userID uuid.UUID) {
	m.mu.Lock()
	delete(m.snapshots, userID)
	m.mu.Unlock()
}

// OnEvent registers a listener invoked for every auth event the manager
// consumes, after the cache has been updated.
func (m *Manager) OnEvent(fn func(Event)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Handle applies one auth event to the local cache and notifies listeners.
func (m *Manager) Handle(ev Event) {
	switch ev.Type {
	case EventSignedOut, EventProfileUpdated:
		m.Invalidate(ev.UserID)
	}

	m.mu.RLock()
	listeners := make([]func(Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Run consumes auth events until the context is cancelled. Without a bus
// there is nothing to consume and Run returns immediately.
func (m *Manager) Run(ctx context.Context) error {
	if m.bus == nil || m.bus.rdb == nil {
		return nil
	}

	events, closeSub, err := m.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSub(); err != nil {
			log.Printf("failed to close auth event subscription: %v", err)
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.Handle(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
