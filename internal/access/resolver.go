package access

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tahsin/project-nourish/internal/model"
)

// EventKind classifies an auth-state change.
type EventKind string

const (
	EventLogin        EventKind = "login"
	EventLogout       EventKind = "logout"
	EventTokenRefresh EventKind = "token-refresh"
)

// Event is one auth-state-change notification. Any event invalidates the
// current snapshot; the kind exists for logging.
type Event struct {
	Kind EventKind
}

// Broker fans auth events out to subscribers. Subscriptions are scoped:
// Subscribe returns a cancel function that must be called when the
// consumer goes away, so no stale callbacks outlive their view.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber with the given channel buffer.
// The returned cancel function unregisters the subscriber and closes its
// channel; calling it more than once is safe.
func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event rather than stalling
// the publisher. Consumers re-resolve the full auth state per event, so a
// dropped event is repaired by the next one.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SessionSource yields the current authenticated identity, nil when no
// valid session exists.
type SessionSource interface {
	CurrentIdentity(ctx context.Context) (*model.Identity, error)
}

// RoleSource maps an identity to its role.
type RoleSource interface {
	RoleFor(ctx context.Context, identity *model.Identity) (model.Role, error)
}

// Snapshot is one resolved (identity, role) pair. generation orders
// snapshots so late-arriving lookups for superseded passes can be
// discarded.
type Snapshot struct {
	Identity *model.Identity
	Role     model.Role

	generation uint64
}

// Resolver keeps the current auth snapshot up to date. Every auth event
// starts a fresh resolution pass; a pass whose backend lookups finish
// after a newer pass has started never overwrites the newer result.
type Resolver struct {
	sessions SessionSource
	roles    RoleSource
	logger   *slog.Logger

	mu      sync.Mutex
	gen     uint64
	current Snapshot
}

func NewResolver(sessions SessionSource, roles RoleSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		sessions: sessions,
		roles:    roles,
		logger:   logger,
		current:  Snapshot{Role: model.RoleNone},
	}
}

// Current returns the most recently applied snapshot.
func (r *Resolver) Current() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Refresh runs one resolution pass: re-reads the session, then the role,
// and applies the result only if no newer pass has started in the
// meantime. On backend failure the pass fails closed to (nil identity,
// RoleNone) so the guard redirects rather than rendering with stale state.
func (r *Resolver) Refresh(ctx context.Context) Snapshot {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	snap := Snapshot{Role: model.RoleNone, generation: gen}

	identity, err := r.sessions.CurrentIdentity(ctx)
	if err != nil {
		r.logger.Error("session resolution failed", slog.String("error", err.Error()))
		identity = nil
	}
	snap.Identity = identity

	if identity != nil {
		role, err := r.roles.RoleFor(ctx, identity)
		if err != nil {
			// RoleSource already downgrades integrity faults to RoleNone;
			// anything surfacing here is transport-level. Fail closed.
			r.logger.Error("role resolution failed",
				slog.String("subject", identity.Subject),
				slog.String("error", err.Error()),
			)
			role = model.RoleNone
		}
		snap.Role = role
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// A newer pass started while our lookups were in flight. Its
		// result wins (or will win); ours is stale and must not apply.
		return r.current
	}
	r.current = snap
	return snap
}

// Run refreshes once immediately, then once per received event, until ctx
// is cancelled or the event channel closes.
func (r *Resolver) Run(ctx context.Context, events <-chan Event) {
	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.logger.Debug("auth state changed", slog.String("kind", string(ev.Kind)))
			r.Refresh(ctx)
		}
	}
}
