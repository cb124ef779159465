package room

import (
	"context"
	"sync"
)

// State tracks the room view's directory lifecycle.
type State int

const (
	StateUnmounted State = iota
	StateLoading
	StateReady
	StateError
)

// Loader fetches the directory; the HTTP Client satisfies it.
type Loader interface {
	GetUsers(ctx context.Context) ([]User, error)
}

// Notifier surfaces a transient, user-visible notification. A failed
// directory load is recoverable; it must not take down the room view.
type Notifier interface {
	Notify(message string)
}

// Directory is the view-scoped cache of collaborator identities, loaded
// once per room-view mount and snapshotted for the resolution callbacks.
// Loads are pure reads, so an overlapping load from a rapid remount is
// harmless.
type Directory struct {
	loader   Loader
	notifier Notifier

	mu    sync.RWMutex
	users []User
	state State
}

func NewDirectory(loader Loader, notifier Notifier) *Directory {
	return &Directory{loader: loader, notifier: notifier, state: StateUnmounted}
}

// Load fetches the directory. On failure it notifies and leaves the
// directory empty; presence degrades rather than erroring. A canceled
// context (view unmounted mid-flight) discards the result silently.
func (d *Directory) Load(ctx context.Context) {
	d.setState(StateLoading)

	users, err := d.loader.GetUsers(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		d.mu.Lock()
		d.users = nil
		d.state = StateError
		d.mu.Unlock()
		if d.notifier != nil {
			d.notifier.Notify("Failed to fetch users")
		}
		return
	}

	d.mu.Lock()
	d.users = users
	d.state = StateReady
	d.mu.Unlock()
}

// Snapshot returns an immutable copy of the loaded directory in load
// order. Safe to call in any state; before Ready it is empty.
func (d *Directory) Snapshot() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snapshot := make([]User, len(d.users))
	copy(snapshot, d.users)
	return snapshot
}

func (d *Directory) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Directory) setState(state State) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
}
