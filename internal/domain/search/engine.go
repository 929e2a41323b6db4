// Package search ranks active admissions against a chat search command and
// filters the result through the permission gate before anything is numbered
// for display.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/censo/censobot/internal/domain/patient"
	"github.com/censo/censobot/internal/platform/auth"
)

// MaxResults bounds the candidate pool shown to the user. Fixed before
// permission filtering: denied candidates are dropped, never backfilled.
const MaxResults = 5

// ErrNotAuthorized means the user may not search at all.
var ErrNotAuthorized = errors.New("search: user not authorized to search")

// Candidate is one ranked, permitted admission. DisplayRank is the 1-based
// number the user replies with; Score is kept for ordering and tests only.
type Candidate struct {
	Admission   *patient.Admission
	DisplayRank int
	Score       int
}

type Engine struct {
	repo patient.AdmissionRepository
	gate auth.PermissionGate
	now  func() time.Time
}

func NewEngine(repo patient.AdmissionRepository, gate auth.PermissionGate) *Engine {
	return &Engine{repo: repo, gate: gate, now: time.Now}
}

// Search runs the full pipeline: authorization, conjunctive pre-filter at the
// data source, additive scoring, truncation to MaxResults, then per-candidate
// visibility filtering. Rank numbers are assigned last so the reply is always
// contiguous from 1.
func (e *Engine) Search(ctx context.Context, userID uuid.UUID, q Query) ([]Candidate, error) {
	allowed, err := e.gate.CanSearch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("search permission: %w", err)
	}
	if !allowed {
		return nil, ErrNotAuthorized
	}

	// an unfiltered query would rank the entire census; treat it as no match
	if q.Filter().Empty() {
		return nil, nil
	}

	pool, err := e.repo.FindActive(ctx, q.Filter())
	if err != nil {
		return nil, fmt.Errorf("admission query: %w", err)
	}

	now := e.now()
	scored := make([]Candidate, 0, len(pool))
	for _, a := range pool {
		scored = append(scored, Candidate{Admission: a, Score: scoreOf(q, a, now)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Admission.AdmittedAt.After(scored[j].Admission.AdmittedAt)
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}

	permitted := scored[:0]
	for _, c := range scored {
		ok, err := e.gate.CanAppearInResults(ctx, userID, c.Admission.PatientID)
		if err != nil {
			return nil, fmt.Errorf("visibility permission: %w", err)
		}
		if !ok {
			continue
		}
		c.DisplayRank = len(permitted) + 1
		permitted = append(permitted, c)
	}

	return permitted, nil
}
