// Package registry tracks which display name each live connection holds.
// The registry is purely in-memory: a restart implicitly disconnects
// everyone, so there is nothing to recover.
package registry

import (
	"errors"
	"sync"

	"github.com/samber/lo"
)

// ErrNameTaken is returned when another live connection already holds the
// requested name. Comparison is case-sensitive.
var ErrNameTaken = errors.New("username already taken")

// Outcome distinguishes a fresh join from a rename by an already-registered
// connection, so observers can tell "X joined" from "X renamed to Y".
type Outcome int

const (
	Joined Outcome = iota
	Renamed
)

// Registry maps connection IDs to claimed display names. Names are unique
// only among currently live entries; a name frees up the moment its holder
// unregisters. The zero value is not usable, construct with New.
type Registry struct {
	mu    sync.RWMutex
	names map[string]string // connection ID -> display name
}

func New() *Registry {
	return &Registry{names: make(map[string]string)}
}

// Register claims name for connID. Re-registration by a connection that
// already holds a name is a rename and reports the previous name. Claiming
// the name the connection already holds succeeds trivially.
func (r *Registry) Register(connID, name string) (Outcome, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.names {
		if n == name && id != connID {
			return Joined, "", ErrNameTaken
		}
	}

	old, had := r.names[connID]
	r.names[connID] = name
	if had {
		return Renamed, old, nil
	}
	return Joined, "", nil
}

// Unregister removes the entry for connID, reporting the name it held.
// Unregistering an unknown connection is a no-op.
func (r *Registry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[connID]
	if ok {
		delete(r.names, connID)
	}
	return name, ok
}

// Name returns the display name held by connID, if any.
func (r *Registry) Name(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.names[connID]
	return name, ok
}

// Snapshot returns the names of all currently registered connections.
// Order is unspecified.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.names)
}

// Count reports the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}
