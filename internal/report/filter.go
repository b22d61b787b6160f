// Package report turns projected tickets into dashboard views: filtered
// lists, KPI summaries and per-team or per-scenario sections.
package report

import (
	"slices"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

// Filter selects projections for a dashboard view. Empty Scenarios and
// Assignees match everything; empty Teams means the known teams in
// sla.Teams, so tickets of the Other team only show when asked for by name.
// Without a date range the view is live and shows open tickets only; with a
// range it shows every ticket submitted within it.
type Filter struct {
	Teams     []string
	Scenarios []string
	Assignees []string
	From      *time.Time
	To        *time.Time
}

// Live reports whether f selects the live view.
func (f Filter) Live() bool {
	return f.From == nil && f.To == nil
}

// bounds returns the inclusive submission-day range. A single bound is a
// one-day range.
func (f Filter) bounds() (string, string) {
	from, to := f.From, f.To
	if from == nil {
		from = to
	}
	if to == nil {
		to = from
	}
	return from.Format(sla.DeadlineLayout), to.Format(sla.DeadlineLayout)
}

// Apply returns the projections matching f, keeping their order.
func (f Filter) Apply(projections []model.Projection) []model.Projection {
	var from, to string
	live := f.Live()
	if !live {
		from, to = f.bounds()
	}

	teams := f.Teams
	if len(teams) == 0 {
		teams = sla.Teams
	}

	out := make([]model.Projection, 0, len(projections))
	for _, p := range projections {
		if !slices.Contains(teams, p.Team) {
			continue
		}
		if len(f.Scenarios) > 0 && !slices.Contains(f.Scenarios, p.Scenario) {
			continue
		}
		if len(f.Assignees) > 0 && !slices.Contains(f.Assignees, p.AssignedTo) {
			continue
		}
		if live {
			if !p.IsOpen {
				continue
			}
		} else if p.CreatedDay < from || p.CreatedDay > to {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Facets lists the distinct scenarios and assignees present in projections,
// sorted, for building filter controls.
func Facets(projections []model.Projection) (scenarios, assignees []string) {
	seenS := map[string]bool{}
	seenA := map[string]bool{}
	for _, p := range projections {
		if !seenS[p.Scenario] {
			seenS[p.Scenario] = true
			scenarios = append(scenarios, p.Scenario)
		}
		if !seenA[p.AssignedTo] {
			seenA[p.AssignedTo] = true
			assignees = append(assignees, p.AssignedTo)
		}
	}
	slices.Sort(scenarios)
	slices.Sort(assignees)
	return scenarios, assignees
}
