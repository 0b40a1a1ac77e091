// Package broadcaster implements the pub/sub topic capability: a topic
// registry, a subscriber registry keyed by a process-wide unique ID, and
// non-blocking fan-out with lazy dead-subscription cleanup. It is one
// implementation of the topic capability; tests may substitute a
// simpler one.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package broadcaster

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/kvbus/kvbus/cmn"
	"github.com/kvbus/kvbus/wire"
)

// subscriberQueueCap is the bounded channel capacity each subscription's
// sender uses; must be at least 2.
const subscriberQueueCap = 4

// Subscription is a live receiver registered on a topic. Active until
// explicit Unsubscribe, a detected-dropped-receiver on the next publish,
// or Close (the Go stand-in for "the receiving stream was dropped").
type Subscription struct {
	id     uint32
	ch     chan *wire.CommandResponse
	closed atomic.Bool
}

// ID is the subscription's process-wide unique ID.
func (s *Subscription) ID() uint32 { return s.id }

// C is the channel of responses delivered to this subscription.
func (s *Subscription) C() <-chan *wire.CommandResponse { return s.ch }

// Close marks this subscription as dropped. The broadcaster detects and
// removes it on the next publish to any topic it belongs to: it is not
// removed immediately, by design (lazy GC).
func (s *Subscription) Close() { s.closed.Store(true) }

func (s *Subscription) trySend(resp *wire.CommandResponse) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.ch <- resp:
		return true
	default:
		return false
	}
}

type topicSet struct {
	mu  sync.Mutex
	ids map[uint32]struct{}
}

// Broadcaster is the concurrency-safe fan-out engine. topics and
// subscriptions are independently locked so publishes to different
// topics never contend on one global mutex.
type Broadcaster struct {
	topicsMu sync.RWMutex
	topics   map[string]*topicSet

	subsMu sync.RWMutex
	subs   map[uint32]*Subscription

	nextID atomic.Uint32
}

// New returns an empty broadcaster. The first assigned subscription ID
// is 1 (ID 0 is reserved, never assigned).
func New() *Broadcaster {
	return &Broadcaster{
		topics: make(map[string]*topicSet),
		subs:   make(map[uint32]*Subscription),
	}
}

func (b *Broadcaster) topicFor(name string, create bool) *topicSet {
	b.topicsMu.RLock()
	t, ok := b.topics[name]
	b.topicsMu.RUnlock()
	if ok || !create {
		return t
	}

	b.topicsMu.Lock()
	defer b.topicsMu.Unlock()
	if t, ok = b.topics[name]; ok {
		return t
	}
	t = &topicSet{ids: make(map[uint32]struct{})}
	b.topics[name] = t
	return t
}

// Subscribe allocates a fresh subscription on topic and immediately
// pushes a response carrying the new ID.
func (b *Broadcaster) Subscribe(topic string) *Subscription {
	id := b.nextID.Add(1)
	sub := &Subscription{id: id, ch: make(chan *wire.CommandResponse, subscriberQueueCap)}

	b.subsMu.Lock()
	b.subs[id] = sub
	b.subsMu.Unlock()

	t := b.topicFor(topic, true)
	t.mu.Lock()
	t.ids[id] = struct{}{}
	t.mu.Unlock()

	sub.ch <- wire.OK([]cmn.Value{cmn.IntValue(int64(id))}, nil)
	return sub
}

// Publish fans data out to every subscriber of topic that existed at the
// moment the publish was admitted, except those whose queue is full or
// closed; those are removed from both registries after the fan-out.
func (b *Broadcaster) Publish(topic string, values []cmn.Value) {
	t := b.topicFor(topic, false)
	if t == nil {
		return
	}

	t.mu.Lock()
	ids := make([]uint32, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	resp := wire.OK(values, nil)
	var dead []uint32
	for _, id := range ids {
		b.subsMu.RLock()
		sub, ok := b.subs[id]
		b.subsMu.RUnlock()
		if !ok || !sub.trySend(resp) {
			dead = append(dead, id)
		}
	}
	if len(dead) > 0 {
		b.removeDead(t, dead)
	}
}

func (b *Broadcaster) removeDead(t *topicSet, ids []uint32) {
	t.mu.Lock()
	for _, id := range ids {
		delete(t.ids, id)
	}
	t.mu.Unlock()

	b.subsMu.Lock()
	for _, id := range ids {
		delete(b.subs, id)
	}
	b.subsMu.Unlock()
}

// Unsubscribe removes id from topic's subscriber set and from the
// subscription registry. Fails with NotFound if neither knew the ID.
func (b *Broadcaster) Unsubscribe(topic string, id uint32) error {
	b.subsMu.Lock()
	_, subKnew := b.subs[id]
	if subKnew {
		delete(b.subs, id)
	}
	b.subsMu.Unlock()

	topicKnew := false
	if t := b.topicFor(topic, false); t != nil {
		t.mu.Lock()
		if _, ok := t.ids[id]; ok {
			topicKnew = true
			delete(t.ids, id)
		}
		t.mu.Unlock()
	}

	if !subKnew && !topicKnew {
		return cmn.NewNotFound("Not found: subscription %d", id)
	}
	return nil
}
