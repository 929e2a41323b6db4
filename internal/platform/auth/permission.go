// Package auth adapts the application's permission engine for the bot. The
// bot never decides authorization itself; it asks these three questions and
// obeys the answers.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDenied is returned by callers that need to distinguish an authorization
// failure from a lookup failure.
var ErrDenied = errors.New("auth: access denied")

// PermissionGate is the narrow capability surface the bot consumes. All three
// checks are per-user decisions made by the external permission engine.
type PermissionGate interface {
	// CanSearch reports whether the user may run patient searches at all.
	CanSearch(ctx context.Context, userID uuid.UUID) (bool, error)
	// CanAppearInResults reports whether the patient may be shown to the user
	// in a numbered result list. A false drops the candidate silently.
	CanAppearInResults(ctx context.Context, userID, patientID uuid.UUID) (bool, error)
	// CanViewDetail reports whether the user may see the patient's
	// demographics. Checked again at selection time, since permissions may
	// change between search and selection.
	CanViewDetail(ctx context.Context, userID, patientID uuid.UUID) (bool, error)
}
