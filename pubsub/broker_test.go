package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/kelsara/sigil/core"
)

func accountEvent(topic Topic, accountID string) Event {
	return Event{Topic: topic, Account: &core.Account{ID: accountID}}
}

func receiveOne(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// Requirement: a subscriber filtered on account id X receives exactly
// the updates to account X, none for other accounts, in publish order.
func TestBroker_FilteredDeliveryInOrder(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	sub := broker.Subscribe(TopicAccountUpdated, Filter{AccountID: "u1"})

	broker.Publish(accountEvent(TopicAccountUpdated, "u1"))
	broker.Publish(accountEvent(TopicAccountUpdated, "u2"))
	broker.Publish(accountEvent(TopicAccountUpdated, "u1"))

	first := receiveOne(t, sub)
	second := receiveOne(t, sub)

	if first.Account.ID != "u1" || second.Account.ID != "u1" {
		t.Errorf("expected only u1 events, got %q then %q", first.Account.ID, second.Account.ID)
	}

	select {
	case ev := <-sub.Events():
		t.Errorf("unexpected extra event for account %q", ev.Account.ID)
	default:
	}
}

// Requirement: a zero filter matches every event on the topic.
func TestBroker_ZeroFilterMatchesAll(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	sub := broker.Subscribe(TopicAccountCreated, Filter{})

	broker.Publish(accountEvent(TopicAccountCreated, "a"))
	broker.Publish(accountEvent(TopicAccountCreated, "b"))

	if got := receiveOne(t, sub).Account.ID; got != "a" {
		t.Errorf("first event = %q, want %q", got, "a")
	}
	if got := receiveOne(t, sub).Account.ID; got != "b" {
		t.Errorf("second event = %q, want %q", got, "b")
	}
}

// Requirement: events do not leak across topics.
func TestBroker_TopicIsolation(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	created := broker.Subscribe(TopicAccountCreated, Filter{})
	updated := broker.Subscribe(TopicAccountUpdated, Filter{})

	broker.Publish(accountEvent(TopicAccountCreated, "a"))

	if got := receiveOne(t, created).Topic; got != TopicAccountCreated {
		t.Errorf("topic = %q, want %q", got, TopicAccountCreated)
	}
	select {
	case ev := <-updated.Events():
		t.Errorf("updated subscriber received %q event", ev.Topic)
	default:
	}
}

// Requirement: cancellation releases the registration; no further
// deliveries occur and the channel closes.
func TestBroker_CancelStopsDelivery(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	sub := broker.Subscribe(TopicAccountUpdated, Filter{AccountID: "u1"})
	sub.Cancel()
	sub.Cancel() // idempotent

	broker.Publish(accountEvent(TopicAccountUpdated, "u1"))

	if _, ok := <-sub.Events(); ok {
		t.Error("expected closed channel after cancel")
	}
	if count := broker.SubscriberCount(TopicAccountUpdated); count != 0 {
		t.Errorf("subscriber count = %d, want 0", count)
	}
}

// Requirement: events published before registration are never replayed.
func TestBroker_NoReplayForLateSubscribers(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	broker.Publish(accountEvent(TopicAccountUpdated, "u1"))

	sub := broker.Subscribe(TopicAccountUpdated, Filter{AccountID: "u1"})

	select {
	case ev := <-sub.Events():
		t.Errorf("late subscriber received replayed event for %q", ev.Account.ID)
	default:
	}
}

// Requirement: a slow consumer loses events beyond its buffer instead
// of blocking the publisher.
func TestBroker_SlowConsumerDoesNotBlockPublish(t *testing.T) {
	broker := NewBroker(2)
	defer broker.Close()

	sub := broker.Subscribe(TopicAccountUpdated, Filter{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			broker.Publish(accountEvent(TopicAccountUpdated, "u1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow consumer")
	}

	// The buffer holds the oldest events; the rest were dropped.
	if got := len(sub.Events()); got != 2 {
		t.Errorf("buffered events = %d, want 2", got)
	}
}

// Requirement: Close cancels every subscription and rejects new ones.
func TestBroker_Close(t *testing.T) {
	broker := NewBroker(8)

	sub := broker.Subscribe(TopicAccountCreated, Filter{})
	broker.Close()
	broker.Close() // idempotent

	if _, ok := <-sub.Events(); ok {
		t.Error("expected closed channel after broker close")
	}

	late := broker.Subscribe(TopicAccountCreated, Filter{})
	if _, ok := <-late.Events(); ok {
		t.Error("expected closed channel for subscription on closed broker")
	}

	// Publishing to a closed broker is a no-op.
	broker.Publish(accountEvent(TopicAccountCreated, "a"))
}

// Requirement: cancellation never blocks the canceller, even when it
// races a broker shutdown; both complete and every channel is closed
// exactly once.
func TestBroker_ConcurrentCancelAndClose(t *testing.T) {
	const rounds = 200
	const cancellers = 8

	for round := 0; round < rounds; round++ {
		broker := NewBroker(4)

		subs := make([]*Subscription, cancellers)
		for i := range subs {
			subs[i] = broker.Subscribe(TopicAccountUpdated, Filter{AccountID: "u1"})
		}

		var wg sync.WaitGroup
		for _, sub := range subs {
			wg.Add(1)
			go func(sub *Subscription) {
				defer wg.Done()
				sub.Cancel()
				sub.Cancel()
			}(sub)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			broker.Close()
		}()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("round %d: cancel/close did not complete", round)
		}

		for i, sub := range subs {
			select {
			case _, ok := <-sub.Events():
				if ok {
					t.Fatalf("round %d: subscription %d delivered after cancel", round, i)
				}
			default:
				t.Fatalf("round %d: subscription %d channel left open", round, i)
			}
		}
	}
}

// Requirement: the filter value is stored with the registration and
// observable, not hidden captured state.
func TestSubscription_ExposesTopicAndFilter(t *testing.T) {
	broker := NewBroker(8)
	defer broker.Close()

	sub := broker.Subscribe(TopicAccountUpdated, Filter{AccountID: "u9"})

	if sub.Topic() != TopicAccountUpdated {
		t.Errorf("topic = %q, want %q", sub.Topic(), TopicAccountUpdated)
	}
	if sub.Filter().AccountID != "u9" {
		t.Errorf("filter account id = %q, want %q", sub.Filter().AccountID, "u9")
	}
}
