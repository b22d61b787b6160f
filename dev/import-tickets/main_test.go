package main

import "testing"

func TestDecodeWorkItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array", `[{"id": 1, "fields": {"System.Title": "a"}}, {"id": 2, "fields": {}}]`, 2},
		{"batch response", `{"count": 1, "value": [{"id": 7, "fields": {"System.State": "Active"}}]}`, 1},
		{"empty array", ` [] `, 0},
	}
	for _, tt := range tests {
		items, err := decodeWorkItems([]byte(tt.input))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if len(items) != tt.want {
			t.Errorf("%s: got %d items, want %d", tt.name, len(items), tt.want)
		}
	}

	if _, err := decodeWorkItems([]byte("  ")); err == nil {
		t.Error("blank input: expected an error")
	}
	if _, err := decodeWorkItems([]byte("{not json")); err == nil {
		t.Error("bad json: expected an error")
	}
}
