package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// DefaultTieBreak is appended to every sort so pages are stable.
const DefaultTieBreak = "-createdAt"

// Sorter turns the sort query parameter into ORDER BY terms.
//
// Each sort value is a public key, optionally prefixed with "-" for
// descending order. Values may be repeated or comma-separated; they apply in
// order and a later value for an already used key is ignored.
type Sorter struct {
	columns  map[string]string
	def      string
	tieBreak []string
}

// NewSorter builds a Sorter. columns maps public sort keys to document
// columns; def is used when the request has no sort parameter. The tie-break
// sorts (DefaultTieBreak when none are given) always come last.
func NewSorter(columns map[string]string, def string, tieBreak ...string) *Sorter {
	if len(tieBreak) == 0 {
		tieBreak = []string{DefaultTieBreak}
	}
	return &Sorter{columns: columns, def: def, tieBreak: tieBreak}
}

// Parse validates the sort parameter and returns ORDER BY terms on
// document columns.
func (s *Sorter) Parse(q url.Values) ([]string, error) {
	values := q["sort"]
	if len(values) == 0 {
		values = []string{s.def}
	}
	values = append(append([]string(nil), values...), s.tieBreak...)

	var (
		terms   []string
		unknown []string
		seen    = map[string]bool{}
	)
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			key, desc := strings.CutPrefix(item, "-")
			column, ok := s.columns[key]
			if !ok {
				unknown = append(unknown, fmt.Sprintf("%q", key))
				continue
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			dir := "ASC"
			if desc {
				dir = "DESC"
			}
			terms = append(terms, "doc."+column+" "+dir)
		}
	}

	if len(unknown) > 0 {
		return nil, domain.InvalidQueryParam("sort",
			"Query parameter \"sort\" contains the following unknown sort parameters: "+strings.Join(unknown, ", "))
	}
	return terms, nil
}

// Apply parses the sort parameter and adds the terms to p.
func (s *Sorter) Apply(p *Pipeline, q url.Values) error {
	terms, err := s.Parse(q)
	if err != nil {
		return err
	}
	p.OrderBy(terms...)
	return nil
}
