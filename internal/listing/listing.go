package listing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bbrc/scout/internal/api"
)

// SortKey names an author column that can be sorted.
type SortKey string

const (
	SortNone       SortKey = ""
	SortName       SortKey = "name"
	SortEmail      SortKey = "email"
	SortJournal    SortKey = "journal"
	SortPaperID    SortKey = "paper_id"
	SortPaperTitle SortKey = "paper_title"
)

// SortKeys lists the sortable columns in display order.
var SortKeys = []SortKey{SortName, SortEmail, SortJournal, SortPaperID, SortPaperTitle}

// ParseSortKey accepts a column name as typed on the command line.
func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == SortNone {
		return SortNone, nil
	}
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", raw)
}

// DefaultPageSize is the number of authors shown per page.
const DefaultPageSize = 10

// Filter keeps authors whose name, email or journal contains term, ignoring
// case. The term is matched as typed, spaces included. An empty term keeps
// everything. The input is not modified.
func Filter(authors []api.Author, term string) []api.Author {
	needle := strings.ToLower(term)
	if needle == "" {
		return slices.Clone(authors)
	}
	out := make([]api.Author, 0, len(authors))
	for _, a := range authors {
		if strings.Contains(strings.ToLower(a.Name), needle) ||
			strings.Contains(strings.ToLower(a.Email), needle) ||
			strings.Contains(strings.ToLower(a.Journal), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Sorter tracks the active sort column and direction.
type Sorter struct {
	Key  SortKey
	Desc bool
}

// Toggle activates key. A new key sorts ascending; activating the current key
// flips the direction.
func (s *Sorter) Toggle(key SortKey) {
	if s.Key == key && !s.Desc {
		s.Desc = true
		return
	}
	s.Key = key
	s.Desc = false
}

// Arrow returns the direction marker for key, or "" when key is not active.
func (s Sorter) Arrow(key SortKey) string {
	if key == SortNone || s.Key != key {
		return ""
	}
	if s.Desc {
		return "↓"
	}
	return "↑"
}

func (s Sorter) String() string {
	if s.Key == SortNone {
		return "none"
	}
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return string(s.Key) + " " + dir
}

// Sort returns a sorted copy of authors. Equal keys keep their input order.
// With no active key the input order is returned unchanged.
func (s Sorter) Sort(authors []api.Author) []api.Author {
	out := slices.Clone(authors)
	if s.Key == SortNone {
		return out
	}
	field := fieldFor(s.Key)
	slices.SortStableFunc(out, func(a, b api.Author) int {
		c := strings.Compare(field(a), field(b))
		if s.Desc {
			return -c
		}
		return c
	})
	return out
}

func fieldFor(key SortKey) func(api.Author) string {
	switch key {
	case SortEmail:
		return func(a api.Author) string { return a.Email }
	case SortJournal:
		return func(a api.Author) string { return a.Journal }
	case SortPaperID:
		return func(a api.Author) string { return a.PaperID }
	case SortPaperTitle:
		return func(a api.Author) string { return a.PaperTitle }
	default:
		return func(a api.Author) string { return a.Name }
	}
}

// Page describes one page of a paginated list.
type Page struct {
	Number int // 1-based, clamped
	Total  int // 0 when the list is empty
	Start  int // slice bounds into the list
	End    int
}

// Paginate clamps page into [1, total] and computes bounds for n items.
func Paginate(n, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if n < 0 {
		n = 0
	}
	total := (n + perPage - 1) / perPage
	number := page
	if number > total {
		number = total
	}
	if number < 1 {
		number = 1
	}
	start := (number - 1) * perPage
	end := min(start+perPage, n)
	if start > n {
		start = n
	}
	return Page{Number: number, Total: total, Start: start, End: end}
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.Total }

// Query is the search, sort and page state of an author table.
type Query struct {
	Term    string
	Sorter  Sorter
	Page    int
	PerPage int
}

// NewQuery returns a query on page 1.
func NewQuery(perPage int) Query {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return Query{Page: 1, PerPage: perPage}
}

// SetTerm changes the search term and goes back to page 1.
func (q *Query) SetTerm(term string) {
	if term != q.Term {
		q.Page = 1
	}
	q.Term = term
}

// Result is a query applied to a list of authors.
type Result struct {
	Rows    []api.Author
	Matched int
	Page    Page
}

// Apply filters, sorts and pages authors. The stored page is clamped so a
// shrinking list never leaves the query on a page that no longer exists.
func (q *Query) Apply(authors []api.Author) Result {
	matched := q.Sorter.Sort(Filter(authors, q.Term))
	page := Paginate(len(matched), q.Page, q.PerPage)
	q.Page = page.Number
	return Result{
		Rows:    matched[page.Start:page.End],
		Matched: len(matched),
		Page:    page,
	}
}

// Next moves forward one page; Apply clamps overshoot.
func (q *Query) Next() { q.Page++ }

// Prev moves back one page, stopping at 1.
func (q *Query) Prev() {
	if q.Page > 1 {
		q.Page--
	}
}
