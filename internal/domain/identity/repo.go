package identity

import (
	"context"
	"errors"
)

// ErrNotBound is returned when no binding exists for a room or account.
var ErrNotBound = errors.New("identity: account not bound")

type BindingRepository interface {
	// GetByRoom returns the binding for a one-to-one bot room. A message in a
	// room with no binding is answered with a redirect prompt and never
	// processed as a command.
	GetByRoom(ctx context.Context, roomID string) (*Binding, error)
}
