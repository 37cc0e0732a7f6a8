package access

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin/project-nourish/internal/model"
)

type fakeSessions struct {
	mu       sync.Mutex
	identity *model.Identity
	err      error
}

func (f *fakeSessions) set(id *model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = id
}

func (f *fakeSessions) CurrentIdentity(ctx context.Context) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, f.err
}

// fakeRoles can be made to block so a lookup stays in flight while a newer
// resolution pass completes.
type fakeRoles struct {
	mu      sync.Mutex
	roles   map[string]model.Role
	err     error
	release chan struct{} // when non-nil, RoleFor blocks until closed
}

func (f *fakeRoles) RoleFor(ctx context.Context, identity *model.Identity) (model.Role, error) {
	f.mu.Lock()
	release := f.release
	f.release = nil
	role, ok := f.roles[identity.Subject]
	err := f.err
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return model.RoleNone, err
	}
	if !ok {
		return model.RoleNone, nil
	}
	return role, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRefreshResolvesIdentityAndRole(t *testing.T) {
	sessions := &fakeSessions{identity: &model.Identity{Subject: "u1"}}
	roles := &fakeRoles{roles: map[string]model.Role{"u1": model.RoleDonor}}
	r := NewResolver(sessions, roles, testLogger())

	snap := r.Refresh(context.Background())
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "u1", snap.Identity.Subject)
	assert.Equal(t, model.RoleDonor, snap.Role)
}

func TestRefreshNoSessionSkipsRoleLookup(t *testing.T) {
	sessions := &fakeSessions{}
	roles := &fakeRoles{err: errors.New("role lookup must not run without an identity")}
	r := NewResolver(sessions, roles, testLogger())

	snap := r.Refresh(context.Background())
	assert.Nil(t, snap.Identity)
	assert.Equal(t, model.RoleNone, snap.Role)
}

func TestRefreshFailsClosedOnBackendError(t *testing.T) {
	sessions := &fakeSessions{identity: &model.Identity{Subject: "u1"}}
	roles := &fakeRoles{err: errors.New("connection refused")}
	r := NewResolver(sessions, roles, testLogger())

	snap := r.Refresh(context.Background())
	assert.Equal(t, model.RoleNone, snap.Role)
}

func TestStaleLookupResultIsDiscarded(t *testing.T) {
	sessions := &fakeSessions{identity: &model.Identity{Subject: "u1"}}
	release := make(chan struct{})
	roles := &fakeRoles{
		roles:   map[string]model.Role{"u1": model.RoleAdmin, "u2": model.RoleDonor},
		release: release,
	}
	r := NewResolver(sessions, roles, testLogger())

	// First pass blocks inside the role lookup.
	firstDone := make(chan Snapshot, 1)
	go func() {
		firstDone <- r.Refresh(context.Background())
	}()

	// Wait until the first pass is parked in RoleFor (release consumed).
	require.Eventually(t, func() bool {
		roles.mu.Lock()
		defer roles.mu.Unlock()
		return roles.release == nil
	}, time.Second, time.Millisecond)

	// The user logs out and back in as u2; a second pass completes while
	// the first is still in flight.
	sessions.set(&model.Identity{Subject: "u2"})
	snap := r.Refresh(context.Background())
	assert.Equal(t, "u2", snap.Identity.Subject)
	assert.Equal(t, model.RoleDonor, snap.Role)

	// Let the first pass finish: its result must not clobber the newer one.
	close(release)
	stale := <-firstDone
	assert.Equal(t, "u2", stale.Identity.Subject, "stale pass returns the current snapshot")
	assert.Equal(t, model.RoleDonor, r.Current().Role)
}

func TestRunRefreshesPerEvent(t *testing.T) {
	sessions := &fakeSessions{}
	roles := &fakeRoles{roles: map[string]model.Role{"u1": model.RoleDonor}}
	r := NewResolver(sessions, roles, testLogger())

	broker := NewBroker()
	events, cancel := broker.Subscribe(4)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	done := make(chan struct{})
	go func() {
		r.Run(ctx, events)
		close(done)
	}()

	// Initial pass: anonymous.
	require.Eventually(t, func() bool {
		return r.Current().Identity == nil && r.Current().Role == model.RoleNone
	}, time.Second, time.Millisecond)

	sessions.set(&model.Identity{Subject: "u1"})
	broker.Publish(Event{Kind: EventLogin})
	require.Eventually(t, func() bool {
		snap := r.Current()
		return snap.Identity != nil && snap.Role == model.RoleDonor
	}, time.Second, time.Millisecond)

	sessions.set(nil)
	broker.Publish(Event{Kind: EventLogout})
	require.Eventually(t, func() bool {
		return r.Current().Identity == nil
	}, time.Second, time.Millisecond)

	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	broker := NewBroker()
	events, cancel := broker.Subscribe(1)

	broker.Publish(Event{Kind: EventLogin})
	select {
	case ev := <-events:
		assert.Equal(t, EventLogin, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	cancel()
	cancel() // idempotent

	// Channel is closed after cancel; publishing must not panic.
	broker.Publish(Event{Kind: EventLogout})
	_, open := <-events
	assert.False(t, open)
}
