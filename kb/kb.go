// Package kb holds the latest satellite descriptors computed by the
// server's refresh loop.
package kb

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/polageo/core"
)

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventSatelliteUpdated EventType = iota
	EventSatelliteRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSatelliteUpdated:
		return "updated"
	case EventSatelliteRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers when the registry changes.
type Event struct {
	Type      EventType
	Name      string
	Satellite *core.Satellite // nil for EventSatelliteRemoved
}

// MetricsRecorder is notified of the registry size after every change.
type MetricsRecorder interface {
	SetRegistrySize(n int)
}

// Entry is a stored descriptor and the time it was stored.
type Entry struct {
	Satellite *core.Satellite
	UpdatedAt time.Time
}

// Registry is an in-memory, thread-safe store of satellite descriptors keyed
// by name. Descriptors are immutable, so callers may share the returned
// pointers freely.
type Registry struct {
	mu sync.RWMutex

	entries map[string]Entry
	metrics MetricsRecorder
	now     func() time.Time

	subs map[int]func(Event)
	next int
}

// NewRegistry constructs an empty registry. metrics may be nil.
func NewRegistry(metrics MetricsRecorder) *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		metrics: metrics,
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
}

// Put stores sat under its name, replacing any previous descriptor.
func (r *Registry) Put(sat *core.Satellite) error {
	if sat == nil {
		return errors.New("kb: nil satellite")
	}
	r.mu.Lock()
	r.entries[sat.Name()] = Entry{Satellite: sat, UpdatedAt: r.now()}
	events := []Event{{Type: EventSatelliteUpdated, Name: sat.Name(), Satellite: sat}}
	r.commitLocked(events)
	return nil
}

// Replace swaps the whole content for sats. Names absent from sats are
// removed and subscribers see one event per change. When two descriptors
// share a name the first one wins, as it does for catalog lookups.
func (r *Registry) Replace(sats []*core.Satellite) {
	r.mu.Lock()
	now := r.now()
	keep := make(map[string]bool, len(sats))
	events := make([]Event, 0, len(sats))
	for _, sat := range sats {
		if sat == nil || keep[sat.Name()] {
			continue
		}
		keep[sat.Name()] = true
		r.entries[sat.Name()] = Entry{Satellite: sat, UpdatedAt: now}
		events = append(events, Event{Type: EventSatelliteUpdated, Name: sat.Name(), Satellite: sat})
	}
	for name := range r.entries {
		if !keep[name] {
			delete(r.entries, name)
			events = append(events, Event{Type: EventSatelliteRemoved, Name: name})
		}
	}
	r.commitLocked(events)
}

// commitLocked releases the write lock, then publishes the size and events.
func (r *Registry) commitLocked(events []Event) {
	size := len(r.entries)
	subs := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetRegistrySize(size)
	}
	// Subscribers run outside the lock and may call back into the registry.
	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
}

// Get returns the descriptor stored under name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// List returns a snapshot of all entries sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	res := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		res = append(res, e)
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Satellite.Name() < res[j].Satellite.Name() })
	return res
}

// Len returns the number of stored descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}
