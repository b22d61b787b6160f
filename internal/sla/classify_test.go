package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTeam(t *testing.T) {
	tests := map[string]string{
		"ps-123":               TeamPerformanceSolutions,
		"  PS Book of Business": TeamPerformanceSolutions,
		"Acquisition - Wins":   TeamAcquisitionGrowth,
		"smb":                  TeamSMB,
		"MATS intake":          TeamMATS,
		"windows store apps":   TeamWindowsStore,
		"AD hierarchy":         TeamAgencyDevelopment,
		"":                     TeamOther,
		"   ":                  TeamOther,
		"xyz":                  TeamOther,
		"P":                    TeamOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveTeam(in), "ResolveTeam(%q)", in)
	}
}

func TestResolveScenario(t *testing.T) {
	tests := map[string]string{
		"Quota Move":              "Quota Moves",
		"Unknown":                 ScenarioOther,
		"":                        ScenarioOther,
		"Totally Custom Thing":    "Totally Custom Thing",
		"book update in dynamics": "Book Assignment Update",
		"Personnel - leaver":      "Personnel Changes",
		"Valid Win":               "Weekly Win Processing",
		"Win Override":            "Acquisition Win Override",
		// The sub-type contained in a keyword also matches.
		"Quota": "Quota Moves",
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveScenario(in), "ResolveScenario(%q)", in)
	}
}

func TestMatchAssignee(t *testing.T) {
	assert.Equal(t, "Alioune Ba", MatchAssignee("Alioune Ba (Contractor)"))
	assert.Equal(t, "James Libby", MatchAssignee("  james libby"))
	assert.Equal(t, "Someone Else", MatchAssignee("Someone Else"))
	assert.Equal(t, "Unassigned", MatchAssignee("Unassigned"))
}

func TestIsMondayDeadline(t *testing.T) {
	assert.True(t, IsMondayDeadline("Weekly Win Processing", TeamAcquisitionGrowth))
	assert.True(t, IsMondayDeadline("Acquisition Win Override", TeamAcquisitionGrowth))
	assert.False(t, IsMondayDeadline("Weekly Win Processing", TeamWindowsStore))
	assert.False(t, IsMondayDeadline("Quota Moves", TeamAcquisitionGrowth))
}

// Every table entry used as its own probe must resolve to its own value,
// so no earlier entry shadows it with a different result.
func TestTablesHaveNoConflictingFirstMatch(t *testing.T) {
	for _, k := range scenarioKeywords {
		assert.Equal(t, k.Value, ResolveScenario(k.Key), "keyword %q is shadowed", k.Key)
	}
	for _, p := range teamPrefixes {
		assert.Equal(t, p.Value, ResolveTeam(p.Key+" probe"), "prefix %q is shadowed", p.Key)
	}
}

func TestClassificationNeverEmpty(t *testing.T) {
	probes := []string{"", " ", "Unknown", "\t\n", "🙂", "----", "a", "PSX", "Other"}
	for _, p := range probes {
		assert.NotEmpty(t, ResolveTeam(p), "team for %q", p)
		assert.NotEmpty(t, ResolveScenario(p), "scenario for %q", p)
	}
}
