package search

import (
	"strings"
	"time"

	"github.com/censo/censobot/internal/domain/patient"
)

// Ranking weights. Treated as tunable policy, not law: relative order is
// what matters (exact beats partial, record beats bed beats ward).
const (
	weightRecordExact   = 1000
	weightRecordPartial = 500
	weightBedExact      = 800
	weightBedPartial    = 400
	weightWardExact     = 600
	weightWardPartial   = 300
	weightNameToken     = 200
	recencyCapDays      = 50
)

// Query carries the normalized search terms extracted from a command.
type Query struct {
	RecordNumber string
	Bed          string
	Ward         string
	NameTokens   []string
}

// Filter converts the query into the repository's pre-filter form.
func (q Query) Filter() patient.Filter {
	return patient.Filter{
		RecordNumber: q.RecordNumber,
		Bed:          q.Bed,
		Ward:         q.Ward,
		NameTokens:   q.NameTokens,
	}
}

// scoreRule is one independent ranking contribution. Rules never see each
// other's output; the engine sums them.
type scoreRule func(q Query, a *patient.Admission, now time.Time) int

var rules = []scoreRule{
	scoreRecordNumber,
	scoreBed,
	scoreWard,
	scoreNameTokens,
	scoreRecency,
}

// scoreOf sums all rule contributions for one candidate.
func scoreOf(q Query, a *patient.Admission, now time.Time) int {
	total := 0
	for _, rule := range rules {
		total += rule(q, a, now)
	}
	return total
}

func scoreRecordNumber(q Query, a *patient.Admission, _ time.Time) int {
	return matchScore(q.RecordNumber, a.RecordNumber, weightRecordExact, weightRecordPartial)
}

func scoreBed(q Query, a *patient.Admission, _ time.Time) int {
	return matchScore(q.Bed, a.Bed, weightBedExact, weightBedPartial)
}

// scoreWard matches against both the ward name and its abbreviation and
// keeps the better of the two.
func scoreWard(q Query, a *patient.Admission, _ time.Time) int {
	byName := matchScore(q.Ward, a.Ward, weightWardExact, weightWardPartial)
	byAbbrev := matchScore(q.Ward, a.WardAbbrev, weightWardExact, weightWardPartial)
	if byAbbrev > byName {
		return byAbbrev
	}
	return byName
}

// scoreNameTokens awards a fixed weight per query token present in the
// patient's name.
func scoreNameTokens(q Query, a *patient.Admission, _ time.Time) int {
	if len(q.NameTokens) == 0 {
		return 0
	}
	nameTokens := strings.Fields(strings.ToLower(a.PatientName))
	total := 0
	for _, qt := range q.NameTokens {
		qt = strings.ToLower(qt)
		for _, nt := range nameTokens {
			if nt == qt {
				total += weightNameToken
				break
			}
		}
	}
	return total
}

// scoreRecency favors fresher admissions: full boost on admission day,
// fading to zero after recencyCapDays.
func scoreRecency(_ Query, a *patient.Admission, now time.Time) int {
	days := int(now.Sub(a.AdmittedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	if days >= recencyCapDays {
		return 0
	}
	return recencyCapDays - days
}

// matchScore grades one query term against one candidate field:
// case-insensitive equality earns the exact weight, containment the partial
// weight, anything else nothing. An empty term contributes nothing.
func matchScore(term, field string, exact, partial int) int {
	if term == "" || field == "" {
		return 0
	}
	term = strings.ToLower(strings.TrimSpace(term))
	field = strings.ToLower(field)
	switch {
	case field == term:
		return exact
	case strings.Contains(field, term):
		return partial
	default:
		return 0
	}
}
