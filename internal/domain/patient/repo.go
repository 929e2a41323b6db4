package patient

import (
	"context"

	"github.com/google/uuid"
)

type AdmissionRepository interface {
	// FindActive returns active admissions matching the filter. The result is
	// an unranked candidate pool; ordering is left to the caller.
	FindActive(ctx context.Context, f Filter) ([]*Admission, error)
	// GetByID returns a single admission regardless of filter, for rendering
	// details after a selection.
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
}
