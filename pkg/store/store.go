// Package store owns one document and linearizes every mutation through
// a single dispatch step: apply the action, classify the change,
// invalidate the port memo, refresh the derived caches, then notify
// subscribers. All four subscriber groups observe the same committed
// revision because the whole step runs under one dispatch lock.
package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/clipboard"
	"github.com/chazu/patchboard/pkg/derived"
	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/ports"
	"github.com/chazu/patchboard/pkg/reducer"
)

// LoadFunc supplies a document from external storage.
type LoadFunc func(ctx context.Context) (*graph.Revision, error)

// SaveFunc persists a document to external storage.
type SaveFunc func(ctx context.Context, rev *graph.Revision) error

// ChangeFunc receives each locally committed revision in controlled
// mode so the external owner can round-trip it.
type ChangeFunc func(rev *graph.Revision)

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger sets the logger for I/O and reconciliation events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithLoader installs the async document loader.
func WithLoader(fn LoadFunc) Option {
	return func(s *Store) { s.loader = fn }
}

// WithSaver installs the async document saver.
func WithSaver(fn SaveFunc) Option {
	return func(s *Store) { s.saver = fn }
}

// Controlled puts the store in controlled mode: an external owner holds
// the authoritative revision, receives each local commit through
// onChange, and echoes it back via SetExternalRevision. Until the echo
// arrives the store serves the locally computed revision.
func Controlled(onChange ChangeFunc) Option {
	return func(s *Store) {
		s.controlled = true
		s.onChange = onChange
	}
}

// Store is the owned document store. One store owns one resolver and
// one derived-cache maintainer; neither is shared across stores.
type Store struct {
	// dispatchMu serializes whole dispatch steps, mutation through
	// notification. Listeners may read store state but must not
	// dispatch from inside a notification.
	dispatchMu sync.Mutex

	// mu guards the fields below.
	mu       sync.RWMutex
	rev      *graph.Revision
	pending  *graph.Revision // controlled-mode local override, nil when idle
	resolver *ports.Resolver
	caches   *derived.Maintainer

	catalog    *catalog.Catalog
	clip       *clipboard.Clipboard
	log        *slog.Logger
	controlled bool
	onChange   ChangeFunc

	loader  LoadFunc
	saver   SaveFunc
	loading atomic.Bool
	saving  atomic.Bool

	subs subscribers
}

// New builds a store over an empty document.
func New(cat *catalog.Catalog, opts ...Option) *Store {
	var isGroup graph.GroupPredicate
	if cat != nil {
		isGroup = cat.IsGroup
	}
	s := &Store{
		rev:      graph.NewRevision(),
		resolver: ports.NewResolver(),
		caches:   derived.NewMaintainer(isGroup),
		catalog:  cat,
		clip:     clipboard.New(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) env() reducer.Env {
	return reducer.Env{
		Catalog:   s.catalog,
		Ports:     s.resolver,
		Clipboard: s.clip,
	}
}

// current returns the revision to serve: the pending local override
// while a controlled-mode round trip is in flight, otherwise the
// committed revision. Callers hold s.mu.
func (s *Store) current() *graph.Revision {
	if s.pending != nil {
		return s.pending
	}
	return s.rev
}

// State returns the current revision snapshot. Safe to call from
// notification listeners.
func (s *Store) State() *graph.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current()
}

// NodeByID returns the node or nil. Missing ids are not an error.
func (s *Store) NodeByID(id graph.NodeID) *graph.Node {
	return s.State().Node(id)
}

// NodePorts resolves the ports of one node. A missing node yields
// (nil, nil); a node whose type is absent from the catalog is a hard
// configuration error carrying ports.ErrNoDefinition.
func (s *Store) NodePorts(id graph.NodeID) ([]graph.Port, error) {
	s.mu.RLock()
	rev := s.current()
	resolver := s.resolver
	s.mu.RUnlock()

	node := rev.Node(id)
	if node == nil {
		return nil, nil
	}
	var def *catalog.TypeDef
	if s.catalog != nil {
		def = s.catalog.Lookup(node.Type)
	}
	return resolver.Resolve(node, def)
}

// SortedNodeIDs returns the cached render order.
func (s *Store) SortedNodeIDs() []graph.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caches.SortedNodeIDs()
}

// ConnectedPorts returns the cached set of connected port keys.
func (s *Store) ConnectedPorts() map[graph.PortKey]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caches.ConnectedPorts()
}

// ConnectedPortIDsByNode returns the cached per-node connected-port
// sets.
func (s *Store) ConnectedPortIDsByNode() map[graph.NodeID]map[graph.PortID]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caches.ConnectedPortIDsByNode()
}

// Dispatch runs one action through the full pipeline. Actions that
// leave the revision untouched commit nothing and notify nobody.
func (s *Store) Dispatch(act reducer.Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	base := s.current()
	next := reducer.Apply(base, act, s.env())
	if next == base {
		s.mu.Unlock()
		return
	}
	sum := reducer.Classify(base, next, act)
	s.invalidatePorts(sum)
	orderChanged, connChanged := s.caches.Update(next, sum)
	if s.controlled {
		s.pending = next
	} else {
		s.rev = next
	}
	order := s.caches.SortedNodeIDs()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(next)
	}
	s.subs.notify(sum, order, orderChanged, connChanged)
}

// invalidatePorts scopes resolver invalidation to the summary: exact
// ids when available, full clear otherwise. Caller holds s.mu.
func (s *Store) invalidatePorts(sum reducer.ChangeSummary) {
	if !sum.AffectsPorts {
		return
	}
	if sum.FullResync || (len(sum.ChangedNodeIDs) == 0 && len(sum.RemovedNodeIDs) == 0) {
		s.resolver.ClearCache()
		return
	}
	for _, id := range sum.ChangedNodeIDs {
		s.resolver.ClearNodeCache(id)
	}
	for _, id := range sum.RemovedNodeIDs {
		s.resolver.ClearNodeCache(id)
	}
}

// SetExternalRevision is the controlled-mode entry point for the
// external owner's value. While a local commit is pending, an echo of
// that exact revision reconciles and clears the override; any other
// value is a stale frame from before the round trip and is ignored.
// When idle, the external value is adopted as a full document
// replacement.
func (s *Store) SetExternalRevision(rev *graph.Revision) {
	if rev == nil {
		return
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if !s.controlled {
		s.mu.Unlock()
		s.log.Warn("external revision ignored: store is uncontrolled")
		return
	}
	if s.pending != nil {
		if rev != s.pending {
			s.mu.Unlock()
			s.log.Debug("stale external revision ignored during round trip")
			return
		}
		s.rev = rev
		s.pending = nil
		s.mu.Unlock()
		return
	}
	if rev == s.rev {
		s.mu.Unlock()
		return
	}
	// Idle: the external owner changed the document out from under us.
	// Adopted documents get the same membership normalization as every
	// other full replacement.
	rev = graph.NormalizeMembership(rev)
	sum := reducer.ChangeSummary{
		FullResync:         true,
		AffectsGeometry:    true,
		AffectsPorts:       true,
		AffectsNodeOrder:   true,
		AffectsConnections: true,
	}
	s.rev = rev
	s.resolver.ClearCache()
	orderChanged, connChanged := s.caches.Update(rev, sum)
	order := s.caches.SortedNodeIDs()
	s.mu.Unlock()

	s.subs.notify(sum, order, orderChanged, connChanged)
}

// Load invokes the loader once, asynchronously. A second call while one
// is in flight is ignored. Reports whether the load was started.
func (s *Store) Load(ctx context.Context) bool {
	if s.loader == nil || !s.loading.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.loading.Store(false)
		rev, err := s.loader(ctx)
		if err != nil {
			s.log.Error("document load failed", "error", err)
			return
		}
		s.Dispatch(reducer.SetDocument{Revision: rev})
	}()
	return true
}

// Save invokes the saver once, asynchronously, over the current
// revision. A second call while one is in flight is ignored. Reports
// whether the save was started.
func (s *Store) Save(ctx context.Context) bool {
	if s.saver == nil || !s.saving.CompareAndSwap(false, true) {
		return false
	}
	rev := s.State()
	go func() {
		defer s.saving.Store(false)
		if err := s.saver(ctx, rev); err != nil {
			s.log.Error("document save failed", "error", err)
		}
	}()
	return true
}
