package sla

import (
	"strings"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

// Days returns the SLA allowance in business days for a scenario handled by
// team.
//
// Precedence, highest first:
//  1. the team override: a flat team SLA, else the first override keyword
//     contained in the scenario, else the team default;
//  2. a team exception embedded in the scenario's catalog entry;
//  3. the scenario's default;
//  4. DefaultRule when the scenario is not in the catalog.
func Days(scenario, team string) int {
	return resolveDays(teamOverrides, scenarioRules, scenario, team)
}

// RuleFor returns the catalog entry for scenario, or DefaultRule.
func RuleFor(scenario string) model.ScenarioRule {
	return lookupRule(scenarioRules, scenario)
}

func resolveDays(overrides []model.TeamOverride, catalog []model.ScenarioRule, scenario, team string) int {
	if o, ok := lookupOverride(overrides, team); ok {
		if len(o.Scenarios) == 0 && o.HasDefault {
			return o.Default
		}
		folded := strings.ToLower(scenario)
		for _, kd := range o.Scenarios {
			if strings.Contains(folded, strings.ToLower(kd.Keyword)) {
				return kd.Days
			}
		}
		if o.HasDefault {
			return o.Default
		}
	}

	rule := lookupRule(catalog, scenario)
	foldedTeam := strings.ToUpper(team)
	for _, kd := range rule.TeamDays {
		if strings.Contains(foldedTeam, strings.ToUpper(kd.Keyword)) {
			return kd.Days
		}
	}
	return rule.Days
}

func lookupOverride(overrides []model.TeamOverride, team string) (model.TeamOverride, bool) {
	for _, o := range overrides {
		if o.Team == team {
			return o, true
		}
	}
	return model.TeamOverride{}, false
}

func lookupRule(catalog []model.ScenarioRule, scenario string) model.ScenarioRule {
	for _, r := range catalog {
		if r.Name == scenario {
			return r
		}
	}
	return DefaultRule
}
