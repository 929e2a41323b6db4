package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bindingRepoPG struct{ pool *pgxpool.Pool }

func NewBindingRepoPG(pool *pgxpool.Pool) BindingRepository {
	return &bindingRepoPG{pool: pool}
}

func (r *bindingRepoPG) GetByRoom(ctx context.Context, roomID string) (*Binding, error) {
	var b Binding
	err := r.pool.QueryRow(ctx, `
		SELECT id, matrix_user_id, room_id, user_id, created_at
		FROM matrix_account
		WHERE room_id = $1`, roomID).
		Scan(&b.ID, &b.MatrixUserID, &b.RoomID, &b.UserID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotBound
	}
	if err != nil {
		return nil, fmt.Errorf("query matrix binding: %w", err)
	}
	return &b, nil
}
