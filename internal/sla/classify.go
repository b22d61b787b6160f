package sla

import (
	"strings"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// ResolveTeam maps a raw tracker category to a team. The first prefix that
// the trimmed, case-folded category starts with wins; anything else is
// TeamOther.
func ResolveTeam(category string) string {
	return resolveTeam(teamPrefixes, category)
}

func resolveTeam(prefixes []model.Mapping, category string) string {
	folded := strings.ToUpper(strings.TrimSpace(category))
	if folded == "" {
		return TeamOther
	}
	for _, p := range prefixes {
		if strings.HasPrefix(folded, strings.ToUpper(p.Key)) {
			return p.Value
		}
	}
	return TeamOther
}

// ResolveScenario maps a raw sub-type to a scenario name. A keyword matches
// when either folded string contains the other. Unmatched sub-types are
// returned unchanged so new scenarios still surface.
func ResolveScenario(subType string) string {
	return resolveScenario(scenarioKeywords, subType)
}

func resolveScenario(keywords []model.Mapping, subType string) string {
	if subType == "" || subType == "Unknown" {
		return ScenarioOther
	}
	folded := strings.ToLower(subType)
	for _, k := range keywords {
		key := strings.ToLower(k.Key)
		if strings.Contains(folded, key) || strings.Contains(key, folded) {
			return k.Value
		}
	}
	return subType
}

// MatchAssignee collapses a tracker display name such as
// "Jane Doe (Contractor)" to its short name when one is configured.
func MatchAssignee(fullName string) string {
	folded := strings.ToLower(strings.TrimSpace(fullName))
	for _, short := range assigneeShortNames {
		if strings.HasPrefix(folded, strings.ToLower(short)) {
			return short
		}
	}
	return fullName
}

// IsMondayDeadline reports whether tickets for scenario and team are due the
// next Monday instead of after a number of business days.
func IsMondayDeadline(scenario, team string) bool {
	if team != TeamAcquisitionGrowth {
		return false
	}
	for _, s := range mondayDeadlineScenarios {
		if s == scenario {
			return true
		}
	}
	return false
}
