package model

// Summary holds the KPI counts for a filtered set of projections.
type Summary struct {
	Total      int     `json:"total"`
	Open       int     `json:"open"`
	Completed  int     `json:"completed"`
	OnTrack    int     `json:"on_track"`
	AtRisk     int     `json:"at_risk"`
	Breached   int     `json:"breached"`
	Paused     int     `json:"paused"`
	SLAMet     int     `json:"sla_met"`
	Compliance float64 `json:"compliance_pct"`
}

// Section is one team or scenario block of the dashboard.
type Section struct {
	Name        string       `json:"name"`
	Description string       `json:"sla_description"`
	Info        string       `json:"sla_info"`
	Signal      string       `json:"signal"` // green|yellow|red
	Open        int          `json:"open"`
	Total       int          `json:"total"`
	Tickets     []Projection `json:"tickets"`
}

// ScenarioRule is the SLA definition for one scenario. TeamDays holds
// team-specific exceptions keyed by a fragment of the team name.
type ScenarioRule struct {
	Name        string        `json:"name"`
	Days        int           `json:"days"`
	TeamDays    []KeywordDays `json:"team_days,omitempty"`
	Description string        `json:"description"`
	Info        string        `json:"info"`
}

// TeamOverride replaces scenario SLAs for a whole team. When Scenarios is
// empty and HasDefault is set the team has a flat SLA.
type TeamOverride struct {
	Team       string        `json:"team"`
	Scenarios  []KeywordDays `json:"scenarios,omitempty"`
	Default    int           `json:"default,omitempty"`
	HasDefault bool          `json:"has_default"`
}

// KeywordDays pairs a case-insensitive match fragment with a day count.
type KeywordDays struct {
	Keyword string `json:"keyword"`
	Days    int    `json:"days"`
}

// Mapping pairs a match key with the normalized value it resolves to.
type Mapping struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Rules is the read-only snapshot of every classification and SLA table.
type Rules struct {
	TeamPrefixes      []Mapping      `json:"team_prefixes"`
	ScenarioKeywords  []Mapping      `json:"scenario_keywords"`
	Scenarios         []ScenarioRule `json:"scenarios"`
	DefaultRule       ScenarioRule   `json:"default_rule"`
	TeamOverrides     []TeamOverride `json:"team_overrides"`
	MondayDeadline    []string       `json:"monday_deadline_scenarios"`
	AssigneeShortList []string       `json:"assignees"`
}
