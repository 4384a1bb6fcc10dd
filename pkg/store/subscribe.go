package store

import (
	"sync"

	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/reducer"
)

// subscribers holds the four listener groups. Registration is guarded
// separately from store state so listeners can subscribe or unsubscribe
// from inside a notification.
type subscribers struct {
	mu      sync.Mutex
	nextID  int
	general map[int]func()
	changes map[int]func(reducer.ChangeSummary)
	order   map[int]func([]graph.NodeID)
	conns   map[int]func()
}

func (s *subscribers) add(register func(id int)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	register(id)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.general, id)
		delete(s.changes, id)
		delete(s.order, id)
		delete(s.conns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) notify(sum reducer.ChangeSummary, order []graph.NodeID, orderChanged, connChanged bool) {
	s.mu.Lock()
	general := snapshot(s.general)
	changes := snapshot(s.changes)
	var orderFns []func([]graph.NodeID)
	if orderChanged {
		orderFns = snapshot(s.order)
	}
	var connFns []func()
	if connChanged {
		connFns = snapshot(s.conns)
	}
	s.mu.Unlock()

	for _, fn := range general {
		fn()
	}
	for _, fn := range changes {
		fn(sum)
	}
	for _, fn := range orderFns {
		fn(order)
	}
	for _, fn := range connFns {
		fn()
	}
}

func snapshot[F any](m map[int]F) []F {
	out := make([]F, 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

// Subscribe registers a listener fired after every committed mutation.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	return s.subs.add(func(id int) {
		if s.subs.general == nil {
			s.subs.general = map[int]func(){}
		}
		s.subs.general[id] = fn
	})
}

// SubscribeToChanges registers a listener receiving each committed
// change summary.
func (s *Store) SubscribeToChanges(fn func(reducer.ChangeSummary)) func() {
	return s.subs.add(func(id int) {
		if s.subs.changes == nil {
			s.subs.changes = map[int]func(reducer.ChangeSummary){}
		}
		s.subs.changes[id] = fn
	})
}

// SubscribeToSortedNodeIDs registers a listener fired only when the
// render order actually changed.
func (s *Store) SubscribeToSortedNodeIDs(fn func([]graph.NodeID)) func() {
	return s.subs.add(func(id int) {
		if s.subs.order == nil {
			s.subs.order = map[int]func([]graph.NodeID){}
		}
		s.subs.order[id] = fn
	})
}

// SubscribeToConnectionDerived registers a listener fired only when a
// connection-derived cache changed.
func (s *Store) SubscribeToConnectionDerived(fn func()) func() {
	return s.subs.add(func(id int) {
		if s.subs.conns == nil {
			s.subs.conns = map[int]func(){}
		}
		s.subs.conns[id] = fn
	})
}
