// Package query builds the SQL behind every list endpoint.
//
// A Pipeline starts from a base SELECT that produces one flattened "document"
// row per entity (its own columns plus joined and aggregated ones). Filters,
// sorting and pagination are then applied to those documents from an outer
// query, so they can reference computed columns such as places_count or
// user_name exactly like plain ones:
//
//	SELECT * FROM (<base>) AS doc WHERE <filters> ORDER BY <sort> LIMIT n OFFSET m
//
// Stages (RelatedProperties, CountRelated) extend the base SELECT; FilterFunc,
// Sorter and Paginate work on the outer query.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Args allocates named parameters for a query. Every value is bound under a
// generated name and referenced as @name in the SQL text.
type Args struct {
	named pgx.NamedArgs
	n     int
}

// Bind registers v and returns the placeholder to embed in SQL.
func (a *Args) Bind(v any) string {
	if a.named == nil {
		a.named = pgx.NamedArgs{}
	}
	a.n++
	name := "p" + strconv.Itoa(a.n)
	a.named[name] = v
	return "@" + name
}

// Named returns the arguments to pass alongside the SQL text.
func (a *Args) Named() pgx.NamedArgs {
	if a.named == nil {
		return pgx.NamedArgs{}
	}
	return a.named
}

// Stage extends the base SELECT of a pipeline.
type Stage func(p *Pipeline)

// Pipeline is a composable list query. It is not safe for concurrent
// mutation; build it on one goroutine, then run its SQL from any number.
type Pipeline struct {
	from    string
	columns []string
	joins   []string
	groupBy []string
	grouped bool

	where   []string
	orderBy []string
	limit   int
	offset  int

	args Args
}

// New starts a pipeline selecting columns from a table expression such as
// "trips t".
func New(from string, columns ...string) *Pipeline {
	return &Pipeline{from: from, columns: columns, limit: -1}
}

// With applies stages in order.
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	for _, s := range stages {
		s(p)
	}
	return p
}

// Bind registers a query argument; see Args.Bind.
func (p *Pipeline) Bind(v any) string {
	return p.args.Bind(v)
}

// Args returns the named arguments of every SQL statement built from p.
func (p *Pipeline) Args() pgx.NamedArgs {
	return p.args.Named()
}

// Where adds a predicate on document columns (prefix them with "doc.").
// Predicates are AND'ed.
func (p *Pipeline) Where(predicate string) *Pipeline {
	p.where = append(p.where, predicate)
	return p
}

// Filtered reports whether any predicate has been added.
func (p *Pipeline) Filtered() bool {
	return len(p.where) > 0
}

// OrderBy appends ORDER BY terms.
func (p *Pipeline) OrderBy(terms ...string) *Pipeline {
	p.orderBy = append(p.orderBy, terms...)
	return p
}

// Window restricts the result to limit rows after skipping offset rows.
func (p *Pipeline) Window(limit, offset int) *Pipeline {
	p.limit = limit
	p.offset = offset
	return p
}

func (p *Pipeline) base() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(p.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.from)
	for _, j := range p.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if p.grouped && len(p.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(p.groupBy, ", "))
	}
	return b.String()
}

func (p *Pipeline) whereClause() string {
	if len(p.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.where, " AND ")
}

// SQL renders the full document query.
func (p *Pipeline) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT * FROM (")
	b.WriteString(p.base())
	b.WriteString(") AS doc")
	b.WriteString(p.whereClause())
	if len(p.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(p.orderBy, ", "))
	}
	if p.limit >= 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.limit)
	}
	if p.offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", p.offset)
	}
	return b.String()
}

// CountSQL renders a count of the documents, with or without the filters.
func (p *Pipeline) CountSQL(filtered bool) string {
	q := "SELECT count(*) FROM (" + p.base() + ") AS doc"
	if filtered {
		q += p.whereClause()
	}
	return q
}

// Relation describes a to-one relation reached through a foreign key column
// of the base table.
type Relation struct {
	Table      string // related table, e.g. "users"
	Alias      string // alias of the related table, e.g. "u"
	ForeignKey string // qualified local column holding the related id, e.g. "t.user_id"
	As         string // namespace of the flattened columns, e.g. "user"
}

// RelatedProperties joins a related entity and flattens the given columns of
// it into the document as "<As>_<column>". The join is a LEFT JOIN so a
// missing related row yields NULLs rather than dropping the document.
func RelatedProperties(rel Relation, columns ...string) Stage {
	return func(p *Pipeline) {
		p.joins = append(p.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.id = %s", rel.Table, rel.Alias, rel.Alias, rel.ForeignKey))
		for _, c := range columns {
			p.columns = append(p.columns, fmt.Sprintf("%s.%s AS %s_%s", rel.Alias, c, rel.As, c))
		}
		p.groupBy = append(p.groupBy, rel.Alias+".id")
	}
}

// Count describes a to-many relation whose rows are counted per document.
type Count struct {
	Table      string // related table, e.g. "places"
	Alias      string // alias of the related table, e.g. "p"
	ForeignKey string // column of Table referencing the owner, e.g. "trip_id"
	OwnerKey   string // qualified primary key of the owner, e.g. "t.id"
	As         string // name of the count column, e.g. "places_count"
}

// CountRelated adds a column counting the related rows of each document.
// Documents without related rows count zero.
func CountRelated(c Count) Stage {
	return func(p *Pipeline) {
		p.joins = append(p.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s", c.Table, c.Alias, c.Alias, c.ForeignKey, c.OwnerKey))
		p.columns = append(p.columns, fmt.Sprintf("count(%s.id) AS %s", c.Alias, c.As))
		p.groupBy = append([]string{c.OwnerKey}, p.groupBy...)
		p.grouped = true
	}
}
