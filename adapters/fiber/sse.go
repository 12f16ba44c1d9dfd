package fiber

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/kelsara/sigil"
	"github.com/kelsara/sigil/pubsub"
)

// heartbeatInterval bounds how long a dead connection can hold a
// subscription: every tick flushes a comment line, and the failed
// write on a gone peer ends the stream.
const heartbeatInterval = 15 * time.Second

// accountEvents streams account-updated events for one account as
// server-sent events. The subscription is registered with an explicit
// account-id filter, so the stream never carries another identity's
// updates; it is released when the client disconnects.
func (a *Adapter) accountEvents(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		targetID := c.Params("id")

		sub := s.Events.Subscribe(pubsub.TopicAccountUpdated, pubsub.Filter{
			AccountID: targetID,
		})
		done := c.RequestCtx().Done()

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		return c.SendStreamWriter(func(w *bufio.Writer) {
			streamEvents(w, sub, done)
		})
	}
}

// streamEvents writes events to w until the subscription ends, the
// request is done, or the peer is gone. The subscription is cancelled
// on every exit path.
func streamEvents(w *bufio.Writer, sub *pubsub.Subscription, done <-chan struct{}) {
	defer sub.Cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeSSE(w *bufio.Writer, event pubsub.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, payload); err != nil {
		return err
	}
	return w.Flush()
}
