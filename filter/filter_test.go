package filter

import (
	"reflect"
	"testing"

	"billing-scraper/models"
)

var records = []models.Record{
	{"email": "a@example.com", "resourceType": "pod", "action": "create"},
	{"email": "b@example.com", "resourceType": "volume", "action": "create"},
	{"email": "a@example.com", "resourceType": "pod", "action": "terminate"},
	{"email": "c@example.com", "action": "create"},
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		where    map[string]string
		expected []models.Record
	}{
		{"no filter", nil, records},
		{"one column", map[string]string{"resourceType": "pod"}, []models.Record{records[0], records[2]}},
		{"case insensitive", map[string]string{"resourceType": "POD", "action": "Create"}, []models.Record{records[0]}},
		{"missing column never matches", map[string]string{"resourceType": ""}, []models.Record{}},
		{"no match", map[string]string{"email": "z@example.com"}, []models.Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFilter(tt.where).ApplyFilters(records)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ApplyFilters() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseWhere(t *testing.T) {
	got, err := ParseWhere([]string{"resourceType=pod", " email = a@example.com ", "note="})
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}
	expected := map[string]string{"resourceType": "pod", "email": "a@example.com", "note": ""}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ParseWhere() = %v, want %v", got, expected)
	}

	for _, bad := range []string{"resourceType", "=pod"} {
		if _, err := ParseWhere([]string{bad}); err == nil {
			t.Errorf("ParseWhere(%q) expected error", bad)
		}
	}
}
