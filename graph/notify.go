package graph

import "github.com/google/uuid"

// Subscription identifies one subscriber on a Graph's change feed.
type Subscription struct {
	id uuid.UUID
	g  *Graph
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Cancel removes the subscription from the feed. Cancelling twice is a
// no-op. A dispatch already in flight when Cancel is called may still
// deliver one final report.
func (s *Subscription) Cancel() {
	if s == nil || s.g == nil {
		return
	}
	s.g.subMu.Lock()
	defer s.g.subMu.Unlock()

	if _, ok := s.g.subs[s.id]; !ok {
		return
	}
	delete(s.g.subs, s.id)
	for i, id := range s.g.subOrder {
		if id == s.id {
			s.g.subOrder = append(s.g.subOrder[:i], s.g.subOrder[i+1:]...)
			break
		}
	}
}

// Subscribe registers fn on the graph's change feed. fn is invoked with the
// new Report after every refresh pass whose result differs from the
// previous report under value equality. Dispatch happens after the
// evaluation lock is released, so a subscriber may call back into the
// Graph; subscribers run sequentially on the refreshing goroutine in
// subscription order. A nil fn yields an inert subscription.
func (g *Graph) Subscribe(fn func(*Report)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}

	g.subMu.Lock()
	defer g.subMu.Unlock()

	id := uuid.New()
	g.subs[id] = fn
	g.subOrder = append(g.subOrder, id)
	return &Subscription{id: id, g: g}
}

// notify delivers a changed report to the current subscribers. Callers must
// not hold g.mu.
func (g *Graph) notify(r *Report) {
	g.subMu.Lock()
	fns := make([]func(*Report), 0, len(g.subOrder))
	for _, id := range g.subOrder {
		if fn, ok := g.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	g.subMu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
}
