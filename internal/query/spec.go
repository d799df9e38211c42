// Package query turns caller-supplied list parameters into SQL: filtering,
// keyword search, sorting, field projection, and pagination over a single
// table. Malformed input is normalized, never rejected.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Op is a persistence-neutral comparison operator.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLt
	OpLte
)

// suffixOps maps the `field[op]` suffix tokens callers may send.
var suffixOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// reserved parameter names that never become filter conditions
var reserved = map[string]bool{
	"page":    true,
	"sort":    true,
	"limit":   true,
	"fields":  true,
	"keyword": true,
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Condition is a single field constraint. Conditions combine with logical AND.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// SortKey is one key of a multi-key ordering.
type SortKey struct {
	Field string
	Desc  bool
}

// Spec is the parsed, request-scoped query specification.
type Spec struct {
	Filters []Condition
	Keyword string
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Parse builds a Spec from raw query parameters. Every key outside the
// reserved set becomes an equality constraint, or a range constraint when it
// carries a `[gte|gt|lte|lt]` suffix. Non-numeric or non-positive page/limit
// fall back to the defaults rather than erroring.
func Parse(values url.Values) Spec {
	spec := Spec{
		Page:  positiveIntOr(values.Get("page"), DefaultPage),
		Limit: positiveIntOr(values.Get("limit"), DefaultLimit),
	}

	spec.Keyword = strings.TrimSpace(values.Get("keyword"))

	if sort := values.Get("sort"); sort != "" {
		for _, part := range strings.Split(sort, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "-" {
				continue
			}
			key := SortKey{Field: part}
			if strings.HasPrefix(part, "-") {
				key.Field = part[1:]
				key.Desc = true
			}
			spec.Sort = append(spec.Sort, key)
		}
	}

	if fields := values.Get("fields"); fields != "" {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				spec.Fields = append(spec.Fields, f)
			}
		}
	}

	for key, vals := range values {
		if reserved[key] {
			continue
		}
		field, op := splitOperator(key)
		if field == "" {
			continue
		}
		for _, v := range vals {
			spec.Filters = append(spec.Filters, Condition{Field: field, Op: op, Value: v})
		}
	}

	return spec
}

// splitOperator rewrites a `field[op]` key into its field name and operator.
// A bare key, or one with an unknown suffix, is an equality constraint.
func splitOperator(key string) (string, Op) {
	if !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	open := strings.LastIndex(key, "[")
	if open <= 0 {
		return key, OpEq
	}
	suffix := key[open+1 : len(key)-1]
	if op, ok := suffixOps[suffix]; ok {
		return key[:open], op
	}
	return key, OpEq
}

func positiveIntOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
