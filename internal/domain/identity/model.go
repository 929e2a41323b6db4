// Package identity reads the binding between external Matrix accounts and
// internal user accounts. Provisioning (creating rooms, pairing accounts)
// happens elsewhere; the bot only ever consumes the finished mapping.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Binding maps to the matrix_account table.
type Binding struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MatrixUserID string    `db:"matrix_user_id" json:"matrix_user_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
