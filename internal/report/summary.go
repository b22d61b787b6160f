package report

import "github.com/cm-sla/sla-dashboard/internal/model"

// Summarize counts the KPIs of projections. Compliance is the share of
// closed tickets finished within their SLA days, or 100 when none are
// closed.
func Summarize(projections []model.Projection) model.Summary {
	var s model.Summary
	s.Total = len(projections)
	for _, p := range projections {
		if p.IsOpen {
			s.Open++
		} else if p.Elapsed <= p.SLADays {
			s.SLAMet++
		}
		switch p.Status {
		case model.StatusOnTrack:
			s.OnTrack++
		case model.StatusAtRisk:
			s.AtRisk++
		case model.StatusBreached:
			s.Breached++
		case model.StatusPaused:
			s.Paused++
		}
	}
	s.Completed = s.Total - s.Open
	s.Compliance = 100
	if s.Completed > 0 {
		s.Compliance = float64(s.SLAMet) / float64(s.Completed) * 100
	}
	return s
}
