package report

import (
	"sort"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/sla"
)

// Section names that group whole teams rather than scenarios.
const (
	SectionSMB          = "Small-to-Medium Business (SMB)"
	SectionAcquisition  = "Acquisition & Growth"
	SectionWindowsStore = "Windows Store"
)

// Section signals.
const (
	SignalGreen  = "green"
	SignalYellow = "yellow"
	SignalRed    = "red"
)

// AlwaysShown lists the sections rendered even when empty, in display order.
var AlwaysShown = []string{
	"Customer Grouping / Hierarchy Management",
	"Personnel Changes",
	SectionAcquisition,
	SectionSMB,
	"Book Assignment Update",
	"Owned-By / Agency / Service Location Override",
	SectionWindowsStore,
	"Quota Moves",
}

type sectionInfo struct {
	description string
	info        string
}

var teamSectionInfo = map[string]sectionInfo{
	SectionSMB: {
		description: "5 working days (all SMB scenarios)",
		info: "**Bad Agency Setup**\n" +
			"- Agency / XID info, assignment info, all client info\n\n" +
			"**Missing Contacts**\n" +
			"- Client info (MAN / Adv Name)\n" +
			"- CM team to reach out to Sales leads\n\n" +
			"**Unengaged / Inactive Clients**\n" +
			"- Client info (MAN / Adv Name)\n" +
			"- Number of outreaches\n\n" +
			"**Book / Other Requests**\n" +
			"- Standard information per scenario",
	},
	SectionWindowsStore: {
		description: "3 working days (all Windows Store scenarios)",
		info: "All Windows Store change requests have a 3 working day SLA.\n\n" +
			"**Weekly Win Processing**\n" +
			"- Valid Win submissions\n\n" +
			"**Other Requests**\n" +
			"- Standard information per scenario",
	},
	SectionAcquisition: {
		description: "Win Override & Weekly Wins: by next Monday | Growth MPM: 2 working days",
		info: "**Weekly Win Processing**\n" +
			"- Submit by Friday EOD → processed Monday → reflects Wednesday EOD\n\n" +
			"**Acquisition Win Override**\n" +
			"- Advertiser details of invalid win\n" +
			"- MSX Opportunity ID\n" +
			"- Evidence & reasoning for override\n" +
			"- Must be submitted by Friday EOD\n" +
			"- Processed by next Monday\n\n" +
			"**Pre/Post Growth MPM Assignment**\n" +
			"- Advertiser information\n" +
			"- Pre or Post Qualified Win\n" +
			"- Growth team assignment\n" +
			"- Effective date (month)\n" +
			"- 2 working days\n\n" +
			"**Other A&G Requests**\n" +
			"- Standard information per scenario",
	},
}

// SectionFor returns the dashboard section a projection is listed under.
func SectionFor(p model.Projection) string {
	switch p.Team {
	case sla.TeamSMB:
		return SectionSMB
	case sla.TeamAcquisitionGrowth:
		return SectionAcquisition
	case sla.TeamWindowsStore:
		return SectionWindowsStore
	}
	return p.Scenario
}

// Sections groups projections into dashboard sections: every AlwaysShown
// section first, then sections found in the data in first-seen order.
// Tickets within a section are ordered by status urgency, then newest
// submission first.
func Sections(projections []model.Projection) []model.Section {
	groups := map[string][]model.Projection{}
	order := append([]string(nil), AlwaysShown...)
	for _, name := range AlwaysShown {
		groups[name] = nil
	}
	for _, p := range projections {
		name := SectionFor(p)
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], p)
	}

	sections := make([]model.Section, 0, len(order))
	for _, name := range order {
		tickets := groups[name]
		sortTickets(tickets)

		sec := model.Section{
			Name:    name,
			Signal:  signal(tickets),
			Total:   len(tickets),
			Tickets: tickets,
		}
		if sec.Tickets == nil {
			sec.Tickets = []model.Projection{}
		}
		for _, p := range tickets {
			if p.IsOpen {
				sec.Open++
			}
		}
		if info, ok := teamSectionInfo[name]; ok {
			sec.Description, sec.Info = info.description, info.info
		} else {
			rule := sla.RuleFor(name)
			sec.Description, sec.Info = rule.Description, rule.Info
		}
		sections = append(sections, sec)
	}
	return sections
}

func signal(tickets []model.Projection) string {
	s := SignalGreen
	for _, p := range tickets {
		switch p.Status {
		case model.StatusBreached:
			return SignalRed
		case model.StatusAtRisk:
			s = SignalYellow
		}
	}
	return s
}

func sortTickets(tickets []model.Projection) {
	sort.SliceStable(tickets, func(i, j int) bool {
		ri, rj := tickets[i].Status.Rank(), tickets[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return tickets[i].CreatedDay > tickets[j].CreatedDay
	})
}

// SortBySubmitted orders projections newest submission first, keeping the
// input order for equal days.
func SortBySubmitted(projections []model.Projection) {
	sort.SliceStable(projections, func(i, j int) bool {
		return projections[i].CreatedDay > projections[j].CreatedDay
	})
}
