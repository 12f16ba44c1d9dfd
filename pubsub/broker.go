// Package pubsub implements the process-wide notification hub that
// fans account lifecycle events out to live subscribers.
//
// The broker is an explicitly constructed value, injected wherever
// events are published; there is no package-level singleton. Events
// are ephemeral: nothing is persisted, and a subscriber only ever
// sees events published while its registration is live.
package pubsub

import (
	"sync"

	"github.com/kelsara/sigil/core"
)

// Topic names an event channel subscribers register against.
type Topic string

const (
	TopicAccountCreated Topic = "account.created"
	TopicAccountUpdated Topic = "account.updated"
)

// Event is the payload delivered to subscribers. The account carried
// here is the public form: the password hash is already stripped by
// the publisher.
type Event struct {
	Topic   Topic         `json:"topic"`
	Account *core.Account `json:"account"`
}

// Filter is a serializable per-subscriber predicate. A zero Filter
// matches every event on the topic; a non-empty AccountID restricts
// delivery to events about that one account, so a subscriber never
// observes another identity's updates.
type Filter struct {
	AccountID string `json:"accountId,omitempty"`
}

// Matches reports whether ev should be delivered under f.
func (f Filter) Matches(ev Event) bool {
	if f.AccountID == "" {
		return true
	}
	return ev.Account != nil && ev.Account.ID == f.AccountID
}

// Subscription is one live registration on a topic.
type Subscription struct {
	topic  Topic
	filter Filter
	ch     chan Event
	broker *Broker
}

// Topic returns the topic this subscription is registered on.
func (s *Subscription) Topic() Topic { return s.topic }

// Filter returns the registered filter value.
func (s *Subscription) Filter() Filter { return s.filter }

// Events returns the delivery channel. It is closed when the
// subscription is cancelled or the broker shuts down. Events arrive
// in publish order; events already enqueued before cancellation may
// still be read.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Cancel releases the registration. Safe to call more than once, and
// concurrently with Close; it never blocks on delivery. No deliveries
// occur after Cancel returns.
func (s *Subscription) Cancel() {
	s.broker.remove(s)
}

// DefaultBuffer is the per-subscriber channel capacity used when the
// broker is constructed with a non-positive buffer size.
const DefaultBuffer = 16

// Broker is the in-memory publish/subscribe hub keyed by topic.
type Broker struct {
	mu     sync.Mutex
	buffer int
	subs   map[Topic]map[*Subscription]struct{}
	closed bool
}

// NewBroker creates a broker whose subscribers each get a delivery
// channel with the given capacity.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[Topic]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new filtered subscriber on topic. On a closed
// broker the returned subscription is already cancelled and its
// channel closed.
func (b *Broker) Subscribe(topic Topic, filter Filter) *Subscription {
	sub := &Subscription{
		topic:  topic,
		filter: filter,
		ch:     make(chan Event, b.buffer),
		broker: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.ch)
		return sub
	}

	set, ok := b.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[topic] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish delivers ev to every current subscriber of ev.Topic whose
// filter matches. The send is non-blocking: a subscriber whose buffer
// is full misses the event rather than stalling the publisher. Within
// one subscriber, events arrive in publish order.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for sub := range b.subs[ev.Topic] {
		if !sub.filter.Matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Slow consumer: drop rather than block the mutation path.
		}
	}
}

// SubscriberCount returns the number of live registrations on topic.
func (b *Broker) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close cancels every subscription and rejects new ones. Idempotent.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	b.subs = make(map[Topic]map[*Subscription]struct{})
}

// remove is called by Subscription.Cancel. Idempotency is guarded by
// registration membership under b.mu: only the call that removes the
// subscription closes its channel, so Cancel and Close take the broker
// mutex alone and in the same order.
func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if set, ok := b.subs[sub.topic]; ok {
		if _, registered := set[sub]; registered {
			delete(set, sub)
			close(sub.ch)
			if len(set) == 0 {
				delete(b.subs, sub.topic)
			}
		}
	}
}
