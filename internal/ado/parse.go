package ado

import (
	"strconv"
	"strings"
	"time"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWorkItem maps a raw work item onto a Ticket. It reports false when
// the creation date is missing or unparseable. Other unparseable dates are
// left nil.
func ParseWorkItem(item WorkItem) (model.Ticket, bool) {
	f := item.Fields
	t := model.Ticket{
		ID:            item.ID,
		Title:         stringField(f, "System.Title", ""),
		State:         stringField(f, "System.State", "Unknown"),
		Priority:      intField(f, "Microsoft.VSTS.Common.Priority"),
		ClosedAt:      timeField(f, "Microsoft.VSTS.Common.ClosedDate"),
		EndDate:       timeField(f, "Custom.EndDate"),
		StartDate:     timeField(f, "Microsoft.VSTS.Scheduling.StartDate"),
		StateChangeAt: timeField(f, "Microsoft.VSTS.Common.StateChangeDate"),
		Assignee:      identityField(f, "System.AssignedTo"),
		AreaPath:      stringField(f, "System.AreaPath", ""),
		RawCategory:   stringField(f, "Custom.Category", ""),
		RawSubType:    stringField(f, "Custom.State1", ""),
		RequestType:   stringField(f, "Custom.FeatureDescription", "Unknown"),
		RequesterName: stringField(f, "Custom.RequesterName", ""),
	}
	if t.ID == 0 {
		t.ID = intField(f, "System.Id")
	}

	created := timeField(f, "System.CreatedDate")
	if created == nil {
		return t, false
	}
	t.CreatedAt = *created
	return t, true
}

// ParseTime coerces a tracker date string to UTC. Zone-less values are
// taken as UTC. The zero time (0001-01-01) is a placeholder, not a date, and
// reports false.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.IsZero() {
				return time.Time{}, false
			}
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func stringField(f map[string]any, key, def string) string {
	switch v := f[key].(type) {
	case string:
		if v == "" {
			return def
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

func intField(f map[string]any, key string) int {
	switch v := f[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func timeField(f map[string]any, key string) *time.Time {
	s, ok := f[key].(string)
	if !ok {
		return nil
	}
	t, ok := ParseTime(s)
	if !ok {
		return nil
	}
	return &t
}

func identityField(f map[string]any, key string) model.Assignee {
	v, ok := f[key].(map[string]any)
	if !ok {
		return model.Assignee{DisplayName: model.Unassigned}
	}
	a := model.Assignee{
		DisplayName: stringField(v, "displayName", model.Unassigned),
		ID:          stringField(v, "id", ""),
	}
	return a
}
