package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tells the builder how to coerce a raw filter value before it is bound
// as a query parameter.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBool
	KindTime
)

// Column declares one exposed field: the name callers use in query parameters
// and responses, the SQL column backing it, and its value kind.
type Column struct {
	Field string
	Name  string
	Kind  Kind
}

// Schema is the allowlist a builder works against. The first column is the
// identifier and is always included in projections. Fields outside the schema
// are silently dropped - callers decide exactly what is filterable, sortable,
// and projectable, so internal columns can never leak through a query string.
type Schema struct {
	Table       string
	Columns     []Column
	DefaultSort string // ORDER BY expression used when no sort is requested
}

func (s Schema) column(field string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

type predicate struct {
	expr func(placeholder string) string
	arg  any
}

// Builder composes filter, search, sort, projection, and pagination steps into
// a select statement plus a count statement. Steps chain in any order; the
// count statement reflects only the filter and search predicate, never sort,
// projection, or pagination.
type Builder struct {
	schema     Schema
	spec       Spec
	predicates []predicate
	orderBy    []string
	projection []Column
	paginated  bool
}

// New creates a Builder for a schema and a parsed Spec.
func New(schema Schema, spec Spec) *Builder {
	return &Builder{schema: schema, spec: spec}
}

// Where adds a base constraint independent of the caller's parameters, e.g.
// restricting the public catalog to in-stock items.
func (b *Builder) Where(field string, op Op, value any) *Builder {
	col, ok := b.schema.column(field)
	if !ok {
		return b
	}
	cmp := sqlOp(op)
	b.predicates = append(b.predicates, predicate{
		expr: func(ph string) string { return fmt.Sprintf("%s %s %s", col.Name, cmp, ph) },
		arg:  value,
	})
	return b
}

// Filter applies every condition from the Spec whose field is declared in the
// schema. Conditions combine with AND. A value that cannot be coerced to the
// column's kind is dropped along with its condition, the same way unknown
// fields are.
func (b *Builder) Filter() *Builder {
	for _, cond := range b.spec.Filters {
		col, ok := b.schema.column(cond.Field)
		if !ok {
			continue
		}
		arg, ok := coerceValue(col.Kind, cond.Value)
		if !ok {
			continue
		}
		cmp := sqlOp(cond.Op)
		name := col.Name
		b.predicates = append(b.predicates, predicate{
			expr: func(ph string) string { return fmt.Sprintf("%s %s %s", name, cmp, ph) },
			arg:  arg,
		})
	}
	return b
}

// Search adds a case-insensitive substring match of the keyword against any of
// the named fields (OR across fields, AND with the rest of the predicate).
// A missing keyword or an empty field list is a no-op.
func (b *Builder) Search(fields ...string) *Builder {
	if b.spec.Keyword == "" || len(fields) == 0 {
		return b
	}

	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if col, ok := b.schema.column(f); ok {
			cols = append(cols, col.Name)
		}
	}
	if len(cols) == 0 {
		return b
	}

	b.predicates = append(b.predicates, predicate{
		expr: func(ph string) string {
			parts := make([]string, len(cols))
			for i, c := range cols {
				parts[i] = fmt.Sprintf("%s ILIKE %s", c, ph)
			}
			return "(" + strings.Join(parts, " OR ") + ")"
		},
		arg: "%" + escapeLike(b.spec.Keyword) + "%",
	})
	return b
}

// Sort applies the requested multi-key ordering, falling back to the schema's
// default (newest first) when nothing usable was requested.
func (b *Builder) Sort() *Builder {
	for _, key := range b.spec.Sort {
		col, ok := b.schema.column(key.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		b.orderBy = append(b.orderBy, col.Name+" "+dir)
	}
	return b
}

// Project restricts the selected columns to the requested fields. The
// identifier column is always included. Unknown fields are dropped; when no
// requested field survives, the full column set is kept.
func (b *Builder) Project() *Builder {
	if len(b.spec.Fields) == 0 {
		return b
	}

	id := b.schema.Columns[0]
	cols := []Column{id}
	for _, f := range b.spec.Fields {
		col, ok := b.schema.column(f)
		if !ok || col.Field == id.Field {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) > 1 {
		b.projection = cols
	}
	return b
}

// Paginate enables LIMIT/OFFSET on the select statement using the Spec's
// page and limit.
func (b *Builder) Paginate() *Builder {
	b.paginated = true
	return b
}

// Columns returns the exposed field names of the select statement, in the
// order they are selected. Repositories use it to key scanned row values.
func (b *Builder) Columns() []string {
	cols := b.selectedColumns()
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Field
	}
	return fields
}

// SelectSQL renders the select statement and its arguments.
func (b *Builder) SelectSQL() (string, []any) {
	cols := b.selectedColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.schema.Table)

	where, args := b.whereClause()
	sb.WriteString(where)

	sb.WriteString(" ORDER BY ")
	if len(b.orderBy) > 0 {
		sb.WriteString(strings.Join(b.orderBy, ", "))
	} else {
		sb.WriteString(b.schema.DefaultSort)
	}

	if b.paginated {
		limit := b.spec.Limit
		offset := (b.spec.Page - 1) * limit
		sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
		args = append(args, limit, offset)
	}

	return sb.String(), args
}

// CountSQL renders the count statement over the filter+search predicate only.
func (b *Builder) CountSQL() (string, []any) {
	where, args := b.whereClause()
	return "SELECT COUNT(*) FROM " + b.schema.Table + where, args
}

// Pagination derives page metadata from the total match count.
func (b *Builder) Pagination(total int64) Pagination {
	page := b.spec.Page
	limit := b.spec.Limit

	p := Pagination{
		CurrentPage:    page,
		Limit:          limit,
		NumberOfPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalDocuments: total,
	}

	if int64(page)*int64(limit) < total {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Prev = &prev
	}

	return p
}

// Pagination is the page metadata returned alongside a shaped listing.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	Limit          int   `json:"limit"`
	NumberOfPages  int   `json:"numberOfPages"`
	TotalDocuments int64 `json:"totalDocuments"`
	Next           *int  `json:"next,omitempty"`
	Prev           *int  `json:"prev,omitempty"`
}

func (b *Builder) selectedColumns() []Column {
	if len(b.projection) > 0 {
		return b.projection
	}
	return b.schema.Columns
}

func (b *Builder) whereClause() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}

	parts := make([]string, len(b.predicates))
	args := make([]any, len(b.predicates))
	for i, p := range b.predicates {
		parts[i] = p.expr(fmt.Sprintf("$%d", i+1))
		args[i] = p.arg
	}

	return " WHERE " + strings.Join(parts, " AND "), args
}

func sqlOp(op Op) string {
	switch op {
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return "="
	}
}

// coerceValue converts a raw query-string value into a typed parameter for
// the declared column kind. A value that does not parse for a typed column
// reports false so the caller drops the condition, keeping the
// normalize-not-reject policy instead of handing the database a doomed cast.
func coerceValue(kind Kind, raw string) (any, bool) {
	switch kind {
	case KindNumeric:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, true
		}
		return nil, false
	case KindBool:
		if v, err := strconv.ParseBool(raw); err == nil {
			return v, true
		}
		return nil, false
	case KindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t, true
		}
		return nil, false
	}
	return raw, true
}

// escapeLike escapes LIKE wildcards in a keyword so user input matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
