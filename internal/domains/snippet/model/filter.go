package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FilterKind discriminates the filter variants a listing accepts. Each kind
// populates exactly the fields its case needs; Validate rejects anything else.
type FilterKind int

const (
	FilterStatus FilterKind = iota
	FilterTag
	FilterDateRange
	FilterSearch
	FilterOwner
)

func (k FilterKind) String() string {
	switch k {
	case FilterStatus:
		return "status"
	case FilterTag:
		return "tag"
	case FilterDateRange:
		return "date_range"
	case FilterSearch:
		return "search"
	case FilterOwner:
		return "owner"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// Filter is one listing constraint.
type Filter struct {
	Kind FilterKind

	Status  Status    // FilterStatus
	Tags    []string  // FilterTag (set intersection, any match)
	From    time.Time // FilterDateRange (zero = unbounded)
	To      time.Time // FilterDateRange (zero = unbounded)
	Search  string    // FilterSearch
	OwnerID uuid.UUID // FilterOwner
}

func StatusFilter(status Status) Filter {
	return Filter{Kind: FilterStatus, Status: status}
}

// TagFilter matches rows whose tag set intersects the given tags.
func TagFilter(tags ...string) Filter {
	return Filter{Kind: FilterTag, Tags: tags}
}

func DateRangeFilter(from, to time.Time) Filter {
	return Filter{Kind: FilterDateRange, From: from, To: to}
}

func SearchFilter(term string) Filter {
	return Filter{Kind: FilterSearch, Search: term}
}

func OwnerFilter(ownerID uuid.UUID) Filter {
	return Filter{Kind: FilterOwner, OwnerID: ownerID}
}

func (f Filter) Validate() error {
	switch f.Kind {
	case FilterStatus:
		if !f.Status.IsValid() {
			return fmt.Errorf("invalid status %q", f.Status)
		}
	case FilterTag:
		if len(f.Tags) == 0 {
			return fmt.Errorf("tag filter requires at least one tag")
		}
		for _, t := range f.Tags {
			if t == "" {
				return fmt.Errorf("tag filter contains an empty tag")
			}
		}
	case FilterDateRange:
		if f.From.IsZero() && f.To.IsZero() {
			return fmt.Errorf("date range filter requires a bound")
		}
		if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
			return fmt.Errorf("date range end before start")
		}
	case FilterSearch:
		if f.Search == "" {
			return fmt.Errorf("search filter requires a term")
		}
		if len(f.Search) > 200 {
			return fmt.Errorf("search term too long")
		}
	case FilterOwner:
		if f.OwnerID == uuid.Nil {
			return fmt.Errorf("owner filter requires an id")
		}
	default:
		return fmt.Errorf("unknown filter kind %d", f.Kind)
	}
	return nil
}

// ListQuery is the repository-level listing input: validated filters plus
// sorting and pagination, scoped to what the requester may see.
type ListQuery struct {
	Filters []Filter

	// RequesterID widens visibility to the requester's own private rows.
	// uuid.Nil means anonymous: public rows only.
	RequesterID uuid.UUID

	// SortBy must be one of SortableColumns; empty falls back to created_at.
	SortBy string
	Order  string

	Limit  int
	Offset int
}

// SortableColumns are the fields list endpoints may order by. The repository
// only interpolates column names taken from this set.
var SortableColumns = map[string]struct{}{
	"created_at":   {},
	"updated_at":   {},
	"published_at": {},
	"view_count":   {},
	"name":         {},
}

func (q ListQuery) Validate() error {
	for _, f := range q.Filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	if q.SortBy != "" {
		if _, ok := SortableColumns[q.SortBy]; !ok {
			return fmt.Errorf("unsupported sort field %q", q.SortBy)
		}
	}
	return nil
}

// ListOptions narrows and orders an owner-scoped listing.
type ListOptions struct {
	Status Status // empty = all statuses
	SortBy string
	Order  string
	Limit  int
	Offset int
}

func (o ListOptions) Validate() error {
	if o.Status != "" && !o.Status.IsValid() {
		return fmt.Errorf("invalid status %q", o.Status)
	}
	if o.SortBy != "" {
		if _, ok := SortableColumns[o.SortBy]; !ok {
			return fmt.Errorf("unsupported sort field %q", o.SortBy)
		}
	}
	return nil
}

// SearchTerm returns the search filter's term, if any. Text search is a
// dedicated query path; it cannot be combined with other filters.
func (q ListQuery) SearchTerm() (string, bool) {
	for _, f := range q.Filters {
		if f.Kind == FilterSearch {
			return f.Search, true
		}
	}
	return "", false
}
