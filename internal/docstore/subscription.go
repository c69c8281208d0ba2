package docstore

import "sync"

// Subscription is a live view of one collection query. Snapshots are
// coalesced latest-wins through a capacity-1 channel: a subscriber that
// falls behind sees only the newest state, never a stale intermediate one.
// After Close returns, no further snapshot or error is delivered; callers
// rely on this to swap subscriptions without a late delivery from the old
// one overwriting newer state.
type Subscription[T any] struct {
	snapshots chan []T
	errs      chan error

	mu         sync.Mutex
	closed     bool
	unregister func()
}

func newSubscription[T any]() *Subscription[T] {
	return &Subscription[T]{
		snapshots: make(chan []T, 1),
		errs:      make(chan error, 1),
	}
}

// Snapshots returns the snapshot channel. It is closed by Close.
func (s *Subscription[T]) Snapshots() <-chan []T {
	return s.snapshots
}

// Errs returns the error channel. Query failures are delivered here; the
// subscription stays live and recovers on the next successful push.
func (s *Subscription[T]) Errs() <-chan error {
	return s.errs
}

// Close detaches the subscription from the store and closes the snapshot
// channel. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.snapshots)
	s.mu.Unlock()

	if s.unregister != nil {
		s.unregister()
	}
}

// push delivers a snapshot, replacing any pending undelivered one.
func (s *Subscription[T]) push(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- items
}

// fail delivers a query error, replacing any pending undelivered one.
func (s *Subscription[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.errs:
	default:
	}
	s.errs <- err
}

// hub fans writes out to the live subscriptions of a collection. Each
// registered function re-runs its subscription's query and pushes the
// result; broadcast runs them synchronously on the writer's goroutine so a
// successful write is immediately visible to subscribers.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]func())}
}

func (h *hub) register(collection string, fn func()) (unregister func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]func())
	}
	id := h.next
	h.next++
	h.subs[collection][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], id)
	}
}

func (h *hub) broadcast(collection string) {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs[collection]))
	for _, fn := range h.subs[collection] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
