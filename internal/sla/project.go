package sla

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// DeadlineLayout formats SLA deadlines and submission days for display.
const DeadlineLayout = "2006-01-02"

// minParallelBatch is the batch size below which ProjectBatch stays on the
// calling goroutine.
const minParallelBatch = 256

// Projector derives SLA state for tickets. It holds no mutable state and is
// safe for concurrent use.
type Projector struct {
	// Location is the reporting zone used for the submission day. SLA
	// arithmetic always runs in UTC.
	Location *time.Location
}

// NewProjector returns a Projector reporting submission days in loc. A nil
// loc means UTC.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{Location: loc}
}

// ProjectBatch projects every ticket against the same reference time now.
// Tickets without a creation time are dropped; the rest keep their input
// order.
func (p *Projector) ProjectBatch(tickets []model.Ticket, now time.Time) []model.Projection {
	out := make([]model.Projection, len(tickets))
	ok := make([]bool, len(tickets))

	workers := runtime.GOMAXPROCS(0)
	if len(tickets) < minParallelBatch || workers < 2 {
		for i := range tickets {
			out[i], ok[i] = p.Project(tickets[i], now)
		}
	} else {
		chunk := (len(tickets) + workers - 1) / workers
		var wg sync.WaitGroup
		for start := 0; start < len(tickets); start += chunk {
			end := min(start+chunk, len(tickets))
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					out[i], ok[i] = p.Project(tickets[i], now)
				}
			}(start, end)
		}
		wg.Wait()
	}

	n := 0
	for i := range out {
		if ok[i] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// Project derives the SLA state of t as of now. It reports false when t has
// no creation time and cannot be projected.
func (p *Projector) Project(t model.Ticket, now time.Time) (model.Projection, bool) {
	if t.CreatedAt.IsZero() {
		return model.Projection{}, false
	}
	now = now.UTC()
	created := t.CreatedAt.UTC()

	pr := model.Projection{Ticket: t}
	pr.Team = ResolveTeam(t.RawCategory)
	pr.Scenario = ResolveScenario(t.RawSubType)
	pr.AssignedTo = MatchAssignee(t.Assignee.DisplayName)
	pr.IsOpen = IsOpen(t.State)
	pr.IsPaused = pr.IsOpen && IsPausedState(t.State)
	pr.IsMondayDeadline = IsMondayDeadline(pr.Scenario, pr.Team)
	pr.SLADays = Days(pr.Scenario, pr.Team)

	if pr.IsMondayDeadline {
		pr.SLADeadline = NextMonday(created)
	} else {
		pr.SLADeadline = AddBusinessDays(created, pr.SLADays)
	}
	pr.SLADisplay = pr.SLADeadline.Format(DeadlineLayout)

	asOf := now
	switch {
	case !pr.IsOpen:
		asOf = closurePoint(t, now)
	case pr.IsPaused:
		asOf = orNow(t.StateChangeAt, now)
	}
	pr.Elapsed = BusinessDaysBetween(created, asOf)

	if pr.IsMondayDeadline {
		if !pr.IsOpen && asOf.After(pr.SLADeadline) {
			pr.Remaining = -BusinessDaysBetween(pr.SLADeadline, asOf)
		} else {
			pr.Remaining = BusinessDaysBetween(asOf, pr.SLADeadline)
		}
	} else {
		pr.Remaining = pr.SLADays - pr.Elapsed
	}

	pr.Status = status(pr, asOf)
	pr.Progress = progress(pr.Elapsed, pr.SLADays)
	pr.TimeLeft = timeLeft(pr.Status, pr.Remaining)
	pr.CreatedDay = t.CreatedAt.In(p.Location).Format(DeadlineLayout)
	return pr, true
}

// IsOpen reports whether a tracker state is still being worked.
func IsOpen(state string) bool {
	return state != "Completed" && state != "Cancelled"
}

// IsPausedState reports whether state stops the SLA clock.
func IsPausedState(state string) bool {
	s := strings.ToLower(state)
	return strings.Contains(s, "waiting for info") || strings.Contains(s, "pending lockdown")
}

// closurePoint is when a closed ticket stopped consuming SLA time.
func closurePoint(t model.Ticket, now time.Time) time.Time {
	if t.EndDate != nil && !t.EndDate.IsZero() {
		return t.EndDate.UTC()
	}
	return orNow(t.ClosedAt, now)
}

func orNow(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return t.UTC()
}

// status evaluates closed, then paused, then remaining time. asOf is the
// closure point for closed tickets.
func status(pr model.Projection, asOf time.Time) model.Status {
	if !pr.IsOpen {
		onTime := pr.Elapsed <= pr.SLADays
		if pr.IsMondayDeadline {
			onTime = !asOf.After(pr.SLADeadline)
		}
		if onTime {
			return model.StatusCompleted
		}
		return model.StatusCompletedLate
	}
	if pr.IsPaused {
		return model.StatusPaused
	}
	return StatusForRemaining(pr.Remaining)
}

// StatusForRemaining classifies an open, unpaused ticket by its remaining
// business days.
func StatusForRemaining(remaining int) model.Status {
	switch {
	case remaining > 1:
		return model.StatusOnTrack
	case remaining >= 0:
		return model.StatusAtRisk
	default:
		return model.StatusBreached
	}
}

// progress is the share of the SLA consumed, capped at 100. A zero-day SLA
// counts as fully consumed.
func progress(elapsed, slaDays int) int {
	if slaDays <= 0 {
		return 100
	}
	return min(elapsed*100/slaDays, 100)
}

func timeLeft(s model.Status, remaining int) string {
	switch {
	case s == model.StatusPaused:
		return "Paused"
	case s == model.StatusCompleted:
		return "Done"
	case s == model.StatusCompletedLate:
		return "Late"
	case remaining < 0:
		return fmt.Sprintf("%dd overdue", -remaining)
	case remaining == 0:
		return "Due today"
	case remaining == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("%dd buffer", remaining)
	}
}
