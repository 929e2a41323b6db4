package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// gatePG answers permission checks from the application's permission tables.
// The rules themselves (role grants, ward assignments) are owned and written
// by the web application; this adapter only reads their current effect.
type gatePG struct{ pool *pgxpool.Pool }

func NewGatePG(pool *pgxpool.Pool) PermissionGate {
	return &gatePG{pool: pool}
}

func (g *gatePG) CanSearch(ctx context.Context, userID uuid.UUID) (bool, error) {
	var allowed bool
	err := g.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_permission
			WHERE user_id = $1 AND permission = 'patient.search' AND active
		)`, userID).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("check search permission: %w", err)
	}
	return allowed, nil
}

func (g *gatePG) CanAppearInResults(ctx context.Context, userID, patientID uuid.UUID) (bool, error) {
	return g.patientScoped(ctx, userID, patientID, "patient.list")
}

func (g *gatePG) CanViewDetail(ctx context.Context, userID, patientID uuid.UUID) (bool, error) {
	return g.patientScoped(ctx, userID, patientID, "patient.view")
}

// patientScoped evaluates a per-patient permission: a user sees a patient
// when they hold the permission either globally or for the ward the patient
// is currently admitted to.
func (g *gatePG) patientScoped(ctx context.Context, userID, patientID uuid.UUID, perm string) (bool, error) {
	var allowed bool
	err := g.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_permission up
			WHERE up.user_id = $1 AND up.permission = $3 AND up.active
			  AND (up.ward_id IS NULL OR up.ward_id = (
				SELECT a.ward_id FROM admission a
				WHERE a.patient_id = $2 AND a.discharged_at IS NULL
				ORDER BY a.admitted_at DESC LIMIT 1
			  ))
		)`, userID, patientID, perm).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("check %s permission: %w", perm, err)
	}
	return allowed, nil
}
