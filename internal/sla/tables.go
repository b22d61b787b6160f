package sla

import "github.com/cm-sla/sla-dashboard/internal/model"

// Team names produced by ResolveTeam.
const (
	TeamPerformanceSolutions = "Performance Solutions"
	TeamAcquisitionGrowth    = "Acquisition & Growth"
	TeamSMB                  = "SMB"
	TeamMATS                 = "MATS"
	TeamWindowsStore         = "Windows Store"
	TeamAgencyDevelopment    = "Agency Development"
	TeamOther                = "Other"
)

// Teams lists the known teams in dashboard filter order. TeamOther is not
// included.
var Teams = []string{
	TeamPerformanceSolutions,
	TeamAcquisitionGrowth,
	TeamSMB,
	TeamMATS,
	TeamWindowsStore,
	TeamAgencyDevelopment,
}

// ScenarioOther is the scenario for tickets with no usable sub-type.
const ScenarioOther = "Other"

// Category prefix -> team. Evaluated top to bottom; keep prefixes from
// overlapping.
var teamPrefixes = []model.Mapping{
	{Key: "PS", Value: TeamPerformanceSolutions},
	{Key: "Acquisition", Value: TeamAcquisitionGrowth},
	{Key: "SMB", Value: TeamSMB},
	{Key: "MATS", Value: TeamMATS},
	{Key: "Windows Store", Value: TeamWindowsStore},
	{Key: "AD", Value: TeamAgencyDevelopment},
}

// Sub-type keyword -> scenario. Evaluated top to bottom with a
// bidirectional substring test, so shorter keywords can shadow later
// entries.
var scenarioKeywords = []model.Mapping{
	// General change management
	{Key: "Grouping or HM", Value: "Customer Grouping / Hierarchy Management"},
	{Key: "Personnel", Value: "Personnel Changes"},
	{Key: "SL", Value: "Owned-By / Agency / Service Location Override"},
	{Key: "Reparenting", Value: "Owned-By / Agency / Service Location Override"},
	{Key: "Book Assignment", Value: "Book Assignment Update"},
	{Key: "Book update in Dynamics", Value: "Book Assignment Update"},
	{Key: "Book update in Tech", Value: "Book Assignment Update"},
	{Key: "Quota Move", Value: "Quota Moves"},
	{Key: "Quota Moves", Value: "Quota Moves"},
	{Key: "Channel Partner", Value: "Channel Partner Linkages"},
	// Acquisition & Growth
	{Key: "Valid Win", Value: "Weekly Win Processing"},
	{Key: "Win Override", Value: "Acquisition Win Override"},
	{Key: "Growth MPM", Value: "Pre/Post Growth MPM Assignment"},
	// Sales houses
	{Key: "New Client Nomination", Value: "New Client Nomination Processing"},
	{Key: "Hierarchy Mapping", Value: "Hierarchy Mapping"},
	{Key: "New Joiner Mapping", Value: "Mapping New Joiners to Sales Houses"},
	// SMB
	{Key: "Bad Agency Setup", Value: "Bad Agency Setup"},
	{Key: "Missing Contacts", Value: "Missing Contacts"},
	{Key: "Unengaged", Value: "Unengaged / Inactive Clients"},
}

var assigneeShortNames = []string{
	"Shanthi Sravanakumar",
	"Alioune Ba",
	"Zubair Patel",
	"James Libby",
	"Weemor Randolph",
}

var scenarioRules = []model.ScenarioRule{
	{
		Name:        "Customer Grouping / Hierarchy Management",
		Days:        4,
		Description: "4 working days",
		Info: "- Eligible evidence\n" +
			"- MAN's needing to be grouped & assigned\n" +
			"- Existing UCGID or client currently assigned\n" +
			"- Full Account Team information\n" +
			"- Effective Month\n" +
			"- Answers to any follow-up questions",
	},
	{
		Name:        "Personnel Changes",
		Days:        3,
		Description: "3 working days",
		Info: "- Personnel Change Type\n" +
			"- For new joiners – new BoB\n" +
			"- For leavers – coverage for BoB\n" +
			"- For LOA – coverage for LOA\n" +
			"- Effective date\n" +
			"- Updates to D&V offline quota contracts (if applicable)\n" +
			"- New joiners need UCM access (if applicable)",
	},
	{
		Name:        "Owned-By / Agency / Service Location Override",
		Days:        2,
		Description: "2 working days",
		Info: "- XID's / CID's impacted\n" +
			"- For agency overrides – current and new agency info\n" +
			"- For Owned-By – current and new MAN info\n" +
			"- Reason for change\n" +
			"- Answers to any follow-up questions",
	},
	{
		Name:        "Channel Partner Linkages",
		Days:        3,
		Description: "3 days to communicate + 2 days to reassign",
		Info: "- Confirmation of when client has returned to original segment " +
			"in UCMA after delinking for CM team to reassign.",
	},
	{
		Name:        "Book Assignment Update",
		Days:        2,
		TeamDays:    []model.KeywordDays{{Keyword: "MATS", Days: 4}},
		Description: "2 working days (PS) / 4 working days (MATS)",
		Info: "- Simple BoB update within business rules\n" +
			"- MATS may require longer SLA – reliant on other teams",
	},
	{
		Name:        "Quota Moves",
		Days:        3,
		Description: "3 working days",
		Info: "- XID's quota is moving to and from\n" +
			"- Amount of quota and monthly split",
	},
	{
		Name:        "Weekly Win Processing",
		Days:        3,
		Description: "Submit by Friday EOD → processed Monday → reflects Wednesday EOD",
		Info: "- Acquisition AE's submit weekly wins by Friday EOD\n" +
			"- Win processed in upcoming BoB upload",
	},
	{
		Name:        "Acquisition Win Override",
		Days:        5,
		Description: "Processed by Monday once full info received",
		Info: "- Advertiser details of invalid win\n" +
			"- MSX Opportunity ID\n" +
			"- Evidence & reasoning for override\n" +
			"- Must be submitted by Friday EOD",
	},
	{
		Name:        "Pre/Post Growth MPM Assignment",
		Days:        2,
		Description: "2 working days",
		Info: "- Advertiser information\n" +
			"- Pre or Post Qualified Win\n" +
			"- Growth team assignment\n" +
			"- Effective date (month)",
	},
	{
		Name:        "New Client Nomination Processing",
		Days:        5,
		Description: "Weekly basis up to 25th of month",
		Info:        "- Nomination through Athena with all required fields (CID, etc.)",
	},
	{
		Name:        "Hierarchy Mapping",
		Days:        5,
		Description: "Weekly basis up to 25th of month",
		Info:        "- Nomination through Athena with CID and Sales House.",
	},
	{
		Name:        "Mapping New Joiners to Sales Houses",
		Days:        3,
		Description: "3 working days",
		Info:        "- Confirmation of alias and Sales House mapping.",
	},
	{
		Name:        "Bad Agency Setup",
		Days:        5,
		Description: "5 working days",
		Info: "- Agency / XID info\n" +
			"- Assignment information\n" +
			"- All client information",
	},
	{
		Name:        "Missing Contacts",
		Days:        5,
		Description: "5 working days",
		Info: "- Client info (MAN / Adv Name)\n" +
			"- CM team to reach out to Sales leads",
	},
	{
		Name:        "Unengaged / Inactive Clients",
		Days:        5,
		Description: "5 working days",
		Info: "- Client info (MAN / Adv Name)\n" +
			"- Number of outreaches",
	},
}

// DefaultRule applies to scenarios missing from the catalog.
var DefaultRule = model.ScenarioRule{Days: 5, Description: "5 working days", Info: "N/A"}

var teamOverrides = []model.TeamOverride{
	{Team: TeamSMB, Default: 5, HasDefault: true},
	{Team: TeamWindowsStore, Default: 3, HasDefault: true},
	{
		// Win Override and Weekly Win Processing use the Monday deadline.
		Team: TeamAcquisitionGrowth,
		Scenarios: []model.KeywordDays{
			{Keyword: "Book Assignment", Days: 2},
			{Keyword: "Grouping or HM", Days: 4},
			{Keyword: "Customer Grouping / Hierarchy Management", Days: 4},
		},
	},
}

// Scenarios whose deadline is the next Monday end of day for Acquisition &
// Growth tickets.
var mondayDeadlineScenarios = []string{
	"Acquisition Win Override",
	"Weekly Win Processing",
}

// Rules returns a copy of every classification and SLA table.
func Rules() model.Rules {
	return model.Rules{
		TeamPrefixes:      append([]model.Mapping(nil), teamPrefixes...),
		ScenarioKeywords:  append([]model.Mapping(nil), scenarioKeywords...),
		Scenarios:         cloneScenarioRules(scenarioRules),
		DefaultRule:       DefaultRule,
		TeamOverrides:     cloneTeamOverrides(teamOverrides),
		MondayDeadline:    append([]string(nil), mondayDeadlineScenarios...),
		AssigneeShortList: append([]string(nil), assigneeShortNames...),
	}
}

func cloneScenarioRules(in []model.ScenarioRule) []model.ScenarioRule {
	out := make([]model.ScenarioRule, len(in))
	for i, r := range in {
		r.TeamDays = append([]model.KeywordDays(nil), r.TeamDays...)
		out[i] = r
	}
	return out
}

func cloneTeamOverrides(in []model.TeamOverride) []model.TeamOverride {
	out := make([]model.TeamOverride, len(in))
	for i, o := range in {
		o.Scenarios = append([]model.KeywordDays(nil), o.Scenarios...)
		out[i] = o
	}
	return out
}
