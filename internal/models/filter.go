package models

import (
	"fmt"
	"strings"
	"time"
)

// FilterAll disables the client or status predicate.
const FilterAll = "All"

// SortDirection orders sorted listings.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKeyCreatedTime is the only sort key currently defined.
const SortKeyCreatedTime = "created_time"

// SortConfig selects the sort key and direction.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// FilterState is the review screen's ephemeral filter input.
type FilterState struct {
	SearchQuery  string     `json:"search_query"`
	ClientFilter string     `json:"client_filter"`
	StatusFilter string     `json:"status_filter"`
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
	CurrentPage  int        `json:"current_page"`
	Sort         SortConfig `json:"sort"`
}

// DefaultFilterState returns the state after "clear filters".
func DefaultFilterState() FilterState {
	return FilterState{
		ClientFilter: FilterAll,
		StatusFilter: FilterAll,
		CurrentPage:  1,
		Sort:         SortConfig{Key: SortKeyCreatedTime, Direction: SortDesc},
	}
}

// Clear resets every filter and the page to their defaults.
func (f *FilterState) Clear() {
	*f = DefaultFilterState()
}

// SameFilters reports whether the predicates of f and other are identical,
// ignoring page and sort.
func (f FilterState) SameFilters(other FilterState) bool {
	return f.SearchQuery == other.SearchQuery &&
		f.ClientFilter == other.ClientFilter &&
		f.StatusFilter == other.StatusFilter &&
		sameTime(f.DateFrom, other.DateFrom) &&
		sameTime(f.DateTo, other.DateTo)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ParseDateBound parses a filter date. An empty value means unbounded. A
// date-only upper bound covers the whole day.
func ParseDateBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if upper {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &t, nil
}
