package filter

import (
	"fmt"
	"strings"

	"billing-scraper/models"
)

// Filter keeps records whose columns match every configured value
type Filter struct {
	where map[string]string
}

// NewFilter creates a new Filter. An empty where keeps everything.
func NewFilter(where map[string]string) *Filter {
	return &Filter{
		where: where,
	}
}

// ParseWhere parses "column=value" pairs as given on the command line
func ParseWhere(pairs []string) (map[string]string, error) {
	where := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		col, value, ok := strings.Cut(pair, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid filter %q, expected column=value", pair)
		}
		where[col] = strings.TrimSpace(value)
	}
	return where, nil
}

// ApplyFilters returns the records that match, in their original order
func (f *Filter) ApplyFilters(records []models.Record) []models.Record {
	if len(f.where) == 0 {
		return records
	}

	filtered := []models.Record{}
	for _, record := range records {
		if f.matches(record) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// matches compares case-insensitively; a record missing a filtered column never matches
func (f *Filter) matches(record models.Record) bool {
	for col, want := range f.where {
		got, ok := record[col]
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}
