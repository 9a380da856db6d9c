package models

import "slices"

// Record is one grid row, keyed by column id (col-id).
// A nil Record means the input could not be read as a row.
type Record map[string]string

// Page is the set of records read from one rendered page of the grid
type Page struct {
	Number    int // zero-based index in the run
	Records   []Record
	Columns   []string // column ids in document order
	Signature string   // hash of the row container markup, used to spot repeated pages
}

// Columns returns every column id present in records. Ids listed in order come
// first; the rest follow record by record, alphabetically within a record.
func Columns(records []Record, order ...string) []string {
	seen := make(map[string]bool)
	var columns []string

	for _, col := range order {
		if seen[col] {
			continue
		}
		for _, r := range records {
			if _, ok := r[col]; ok {
				seen[col] = true
				columns = append(columns, col)
				break
			}
		}
	}

	for _, r := range records {
		for _, col := range sortedKeys(r) {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	return columns
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
