package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/session"
)

type stubLoader struct {
	mu        sync.Mutex
	userLoads int
	profiles  map[uuid.UUID]*models.Profile
	gate      chan struct{} // when set, GetUser blocks until closed
}

func (s *stubLoader) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.userLoads++
	s.mu.Unlock()
	return &models.User{ID: userID, Email: "user@example.com"}, nil
}

func (s *stubLoader) LookupProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID], nil
}

func (s *stubLoader) loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLoads
}

func TestResolveCachesSnapshot(t *testing.T) {
	userID := uuid.New()
	loader := &stubLoader{profiles: map[uuid.UUID]*models.Profile{
		userID: {UserID: userID, Username: "tester"},
	}}
	mgr := session.NewManager(loader, loader, nil)
	ctx := context.Background()

	first, err := mgr.Resolve(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, first.Profile)
	assert.Equal(t, "tester", first.Profile.Username)

	// A second resolve returns the same snapshot without hitting the
	// loaders again; callers rely on pointer equality to detect change.
	second, err := mgr.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.loads())
}

func TestResolveMissingProfileIsNil(t *testing.T) {
	loader := &stubLoader{profiles: map[uuid.UUID]*models.Profile{}}
	mgr := session.NewManager(loader, loader, nil)

	snap, err := mgr.Resolve(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, snap.User)
	assert.Nil(t, snap.Profile)
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	userID := uuid.New()
	loader := &stubLoader{profiles: map[uuid.UUID]*models.Profile{
		userID: {UserID: userID, Username: "before"},
	}}
	mgr := session.NewManager(loader, loader, nil)
	ctx := context.Background()

	first, err := mgr.Resolve(ctx, userID)
	require.NoError(t, err)

	loader.mu.Lock()
	loader.profiles[userID] = &models.Profile{UserID: userID, Username: "after"}
	loader.mu.Unlock()

	second, err := mgr.Refresh(ctx, userID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "after", second.Profile.Username)
}

func TestHandleInvalidatesAndNotifies(t *testing.T) {
	userID := uuid.New()
	loader := &stubLoader{profiles: map[uuid.UUID]*models.Profile{
		userID: {UserID: userID, Username: "tester"},
	}}
	mgr := session.NewManager(loader, loader, nil)
	ctx := context.Background()

	var events []session.Event
	mgr.OnEvent(func(ev session.Event) {
		events = append(events, ev)
	})

	first, err := mgr.Resolve(ctx, userID)
	require.NoError(t, err)

	mgr.Handle(session.Event{Type: session.EventProfileUpdated, UserID: userID})

	second, err := mgr.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, loader.loads())

	require.Len(t, events, 1)
	assert.Equal(t, session.EventProfileUpdated, events[0].Type)
	assert.Equal(t, userID, events[0].UserID)
}

func TestRunWithoutBusReturns(t *testing.T) {
	loader := &stubLoader{}
	mgr := session.NewManager(loader, loader, nil)
	assert.NoError(t, mgr.Run(context.Background()))
}

func TestConcurrentResolvesCoalesce(t *testing.T) {
	userID := uuid.New()
	loader := &stubLoader{
		profiles: map[uuid.UUID]*models.Profile{
			userID: {UserID: userID, Username: "tester"},
		},
		gate: make(chan struct{}),
	}
	mgr := session.NewManager(loader, loader, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	snaps := make([]*session.Snapshot, 8)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := mgr.Resolve(ctx, userID)
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}

	// Hold the load open until every resolver is in flight, then let the
	// single coalesced load finish.
	time.Sleep(100 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	for _, snap := range snaps[1:] {
		assert.Same(t, snaps[0], snap)
	}
	assert.Equal(t, 1, loader.loads())
}
