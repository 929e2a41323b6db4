// Package transport wraps the Matrix client. It owns the sync loop, delivers
// inbound room messages to a single handler, and sends replies with bounded
// retry. Reconnection is explicit state (connected / retrying / failed), not
// an exception loop.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// ErrUnavailable is returned once the retry budget is exhausted. Callers
// degrade to a user-facing "temporarily unavailable" reply.
var ErrUnavailable = errors.New("transport: temporarily unavailable")

// maxAttempts bounds both reconnection and send retries.
const maxAttempts = 3

// Connection states.
const (
	StateDisconnected int32 = iota
	StateConnected
	StateRetrying
	StateFailed
)

// Message is one inbound text message from a joined room.
type Message struct {
	RoomID  string
	Sender  string
	EventID string
	Body    string
}

// Handler receives inbound messages. It must not block the sync loop; the
// orchestrator dispatches to per-room workers.
type Handler func(msg Message)

// Sender is the outbound half, narrow so tests can fake it.
type Sender interface {
	SendText(ctx context.Context, roomID, text string) error
}

type Client struct {
	mc      *mautrix.Client
	log     zerolog.Logger
	handler Handler
	state   atomic.Int32
}

func NewClient(homeserverURL, userID, accessToken string, log zerolog.Logger) (*Client, error) {
	mc, err := mautrix.NewClient(homeserverURL, id.UserID(userID), accessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}

	c := &Client{mc: mc, log: log}

	syncer := mc.Syncer.(*mautrix.DefaultSyncer)
	// skip everything that happened while the bot was offline: missed
	// messages are not replayed
	syncer.OnSync(mc.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, c.onMessage)

	return c, nil
}

// OnMessage sets the inbound handler. Must be called before Run.
func (c *Client) OnMessage(h Handler) {
	c.handler = h
}

// Connected reports whether the sync loop currently has a live connection.
func (c *Client) Connected() bool {
	return c.state.Load() == StateConnected
}

// State returns the current connection state.
func (c *Client) State() int32 {
	return c.state.Load()
}

// Run drives the sync loop until the context is cancelled. Each disconnect
// is retried with exponential backoff up to maxAttempts; after that the
// client enters the failed state and Run returns ErrUnavailable.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0
	bo := newBackoff()

	for {
		c.state.Store(StateConnected)
		if attempt > 0 {
			c.log.Info().Int("attempt", attempt).Msg("matrix reconnected")
		}

		started := time.Now()
		err := c.mc.SyncWithContext(ctx)
		if ctx.Err() != nil {
			c.state.Store(StateDisconnected)
			return ctx.Err()
		}

		// a sync that held for a while was a real connection; the retry
		// budget applies to one outage, not the process lifetime
		if time.Since(started) > time.Minute {
			attempt = 0
			bo.Reset()
		}

		attempt++
		if attempt > maxAttempts {
			c.state.Store(StateFailed)
			c.log.Error().Err(err).Msg("matrix sync failed, retry budget exhausted")
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		c.state.Store(StateRetrying)
		wait := bo.NextBackOff()
		c.log.Warn().Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("matrix sync dropped, reconnecting")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			c.state.Store(StateDisconnected)
			return ctx.Err()
		}
	}
}

// SendText sends a plain-text message, retrying transient failures within
// the same bounded budget as the sync loop.
func (c *Client) SendText(ctx context.Context, roomID, text string) error {
	if c.state.Load() == StateFailed {
		return ErrUnavailable
	}

	op := func() error {
		_, err := c.mc.SendText(ctx, id.RoomID(roomID), text)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), maxAttempts-1), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("%w: send to %s: %v", ErrUnavailable, roomID, err)
	}
	return nil
}

func (c *Client) onMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == c.mc.UserID {
		return
	}
	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return
	}
	if c.handler == nil {
		return
	}
	c.handler(Message{
		RoomID:  evt.RoomID.String(),
		Sender:  evt.Sender.String(),
		EventID: evt.ID.String(),
		Body:    content.Body,
	})
}

func newBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}
