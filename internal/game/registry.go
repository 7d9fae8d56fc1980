// internal/game/registry.go
package game

import (
	"fmt"
	"sync"
)

// room guards one session. closed is set once the session has been removed
// from the registry so late arrivals retry against a fresh room.
type room struct {
	mu      sync.Mutex
	session *Session
	closed  bool
}

// Registry owns every live room. Commands for one room run to completion under
// that room's lock; distinct rooms never contend beyond the map lookup.
//
// Lock order is room then registry.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room

	rules   Rules
	shuffle Shuffler
}

// NewRegistry returns an empty registry. Every room it creates uses rules and
// shuffle; a nil shuffle means RandomShuffle.
func NewRegistry(rules Rules, shuffle Shuffler) *Registry {
	return &Registry{
		rooms:   make(map[string]*room),
		rules:   rules,
		shuffle: shuffle,
	}
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// lookup returns the room for id, creating it when create is set.
func (r *Registry) lookup(id string, create bool) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok && create {
		rm = &room{session: NewSession(id, r.rules, r.shuffle)}
		r.rooms[id] = rm
	}
	return rm
}

// drop removes rm from the map if it is still the room registered under id.
// The caller holds rm.mu.
func (r *Registry) drop(id string, rm *room) {
	rm.closed = true
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[id] == rm {
		delete(r.rooms, id)
	}
}

// Execute runs cmd against its room. join_room creates the room on first use;
// any other command naming an unknown room is rejected. The room is destroyed
// as soon as its last player leaves.
func (r *Registry) Execute(cmd Command) Outcome {
	return r.ExecuteThen(cmd, nil)
}

// ExecuteThen is Execute with a hook. then, when non-nil, receives the outcome
// while the room is still locked, so deliveries for one room keep command order.
// then must not block or call back into the registry.
func (r *Registry) ExecuteThen(cmd Command, then func(Outcome)) Outcome {
	if then == nil {
		then = func(Outcome) {}
	}
	if err := Validate(cmd); err != nil {
		out := Rejection(cmd, err)
		then(out)
		return out
	}
	id := cmd.Head().RoomID
	create := cmd.Kind() == CmdJoinRoom

	for {
		rm := r.lookup(id, create)
		if rm == nil {
			out := Rejection(cmd, reject(NotFound, ErrRoomNotFound, "room "+id+" does not exist"))
			then(out)
			return out
		}
		out, retry := r.run(id, rm, cmd, then)
		if !retry {
			return out
		}
	}
}

func (r *Registry) run(id string, rm *room, cmd Command, then func(Outcome)) (out Outcome, retry bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return Outcome{}, true
	}

	delivered := false
	defer func() {
		if p := recover(); p != nil {
			out = Rejection(cmd, fmt.Errorf("internal error handling %s: %v", cmd.Kind(), p))
			retry = false
			if rm.session.Empty() {
				r.drop(id, rm)
			}
			if !delivered {
				then(out)
			}
		}
	}()

	out = Dispatch(rm.session, cmd)
	if rm.session.Empty() {
		r.drop(id, rm)
	}
	delivered = true
	then(out)
	return out, false
}

// WithRoom runs fn with exclusive access to the session for id. It reports
// false when no such room exists.
func (r *Registry) WithRoom(id string, fn func(*Session)) bool {
	for {
		rm := r.lookup(id, false)
		if rm == nil {
			return false
		}
		rm.mu.Lock()
		if rm.closed {
			rm.mu.Unlock()
			continue
		}
		fn(rm.session)
		rm.mu.Unlock()
		return true
	}
}
