package ado

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

func decodeItem(t *testing.T, raw string) WorkItem {
	t.Helper()
	var item WorkItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	return item
}

func TestParseWorkItem(t *testing.T) {
	item := decodeItem(t, `{
		"id": 4711,
		"fields": {
			"System.Title": "Move Contoso quota",
			"System.State": "Active",
			"System.CreatedDate": "2026-10-19T09:30:00.123Z",
			"System.AssignedTo": {"displayName": "Alioune Ba (Vendor)", "id": "guid-9"},
			"System.AreaPath": "Sales\\Change Management",
			"Microsoft.VSTS.Common.Priority": 2,
			"Microsoft.VSTS.Common.StateChangeDate": "2026-10-20T10:00:00Z",
			"Custom.EndDate": "2026-10-22",
			"Custom.Category": "PS - Sales",
			"Custom.State1": "Quota Move",
			"Custom.FeatureDescription": "Change",
			"Custom.RequesterName": "Pat"
		}
	}`)

	tk, ok := ParseWorkItem(item)
	require.True(t, ok)
	assert.Equal(t, 4711, tk.ID)
	assert.Equal(t, "Move Contoso quota", tk.Title)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 30, 0, 123000000, time.UTC), tk.CreatedAt)
	assert.Equal(t, model.Assignee{DisplayName: "Alioune Ba (Vendor)", ID: "guid-9"}, tk.Assignee)
	assert.Equal(t, 2, tk.Priority)
	require.NotNil(t, tk.EndDate)
	assert.Equal(t, time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), *tk.EndDate)
	require.NotNil(t, tk.StateChangeAt)
	assert.Nil(t, tk.ClosedAt)
	assert.Equal(t, "PS - Sales", tk.RawCategory)
	assert.Equal(t, "Quota Move", tk.RawSubType)
	assert.Equal(t, "Change", tk.RequestType)
}

func TestParseWorkItemDefaults(t *testing.T) {
	item := decodeItem(t, `{
		"fields": {
			"System.Id": 12,
			"System.CreatedDate": "2026-10-19T09:30:00-07:00",
			"System.AssignedTo": "not an identity",
			"Custom.EndDate": "someday"
		}
	}`)

	tk, ok := ParseWorkItem(item)
	require.True(t, ok)
	assert.Equal(t, 12, tk.ID)
	assert.Equal(t, "Unknown", tk.State)
	assert.Equal(t, "Unknown", tk.RequestType)
	assert.Equal(t, model.Unassigned, tk.Assignee.DisplayName)
	assert.Empty(t, tk.Assignee.ID)
	assert.Nil(t, tk.EndDate, "garbage dates become missing")
	assert.Equal(t, time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC), tk.CreatedAt)
}

func TestParseWorkItemWithoutCreatedDate(t *testing.T) {
	for _, raw := range []string{
		`{"id": 1, "fields": {}}`,
		`{"id": 1, "fields": {"System.CreatedDate": ""}}`,
		`{"id": 1, "fields": {"System.CreatedDate": "yesterday"}}`,
		`{"id": 1, "fields": {"System.CreatedDate": 1700000000}}`,
	} {
		_, ok := ParseWorkItem(decodeItem(t, raw))
		assert.False(t, ok, raw)
	}
}

func TestParseTime(t *testing.T) {
	tests := map[string]time.Time{
		"2026-10-19T09:30:00Z":       time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		"2026-10-19T09:30:00+02:00":  time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC),
		"2026-10-19T09:30:00.5":      time.Date(2026, 10, 19, 9, 30, 0, 500000000, time.UTC),
		"2026-10-19 09:30:00":        time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		" 2026-10-19 ":               time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range tests {
		got, ok := ParseTime(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, got, in)
		}
	}

	for _, in := range []string{"19/10/2026", "0001-01-01T00:00:00Z", "0001-01-01"} {
		_, ok := ParseTime(in)
		assert.False(t, ok, in)
	}
}

func TestParseWorkItemZeroEndDateFallsBackToClosedDate(t *testing.T) {
	item := decodeItem(t, `{"id": 8, "fields": {
		"System.State": "Completed",
		"System.CreatedDate": "2026-10-01T09:00:00Z",
		"Microsoft.VSTS.Common.ClosedDate": "2026-10-20T09:00:00Z",
		"Custom.EndDate": "0001-01-01T00:00:00Z",
		"Custom.Category": "PS",
		"Custom.State1": "Quota Move"
	}}`)
	tk, ok := ParseWorkItem(item)
	require.True(t, ok)
	assert.Nil(t, tk.EndDate)
	require.NotNil(t, tk.ClosedAt)
}
