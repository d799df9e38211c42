package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Defaults(t *testing.T) {
	spec := Parse(url.Values{})

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 10, spec.Limit)
	assert.Empty(t, spec.Filters)
	assert.Empty(t, spec.Sort)
	assert.Empty(t, spec.Fields)
	assert.Empty(t, spec.Keyword)
}

func TestParse_NonNumericPageAndLimitFallBack(t *testing.T) {
	values := url.Values{}
	values.Set("page", "abc")
	values.Set("limit", "ten")

	spec := Parse(values)

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 10, spec.Limit)
}

func TestParse_NonPositivePageAndLimitFallBack(t *testing.T) {
	values := url.Values{}
	values.Set("page", "0")
	values.Set("limit", "-5")

	spec := Parse(values)

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 10, spec.Limit)
}

func TestParse_RangeOperatorSuffixes(t *testing.T) {
	values := url.Values{}
	values.Set("price[gte]", "10")
	values.Set("price[lte]", "50")
	values.Set("quantity[gt]", "0")
	values.Set("createdAt[lt]", "2025-01-01")

	spec := Parse(values)

	assert.Len(t, spec.Filters, 4)
	ops := map[string]Op{}
	for _, c := range spec.Filters {
		ops[c.Field+":"+c.Value] = c.Op
	}
	assert.Equal(t, OpGte, ops["price:10"])
	assert.Equal(t, OpLte, ops["price:50"])
	assert.Equal(t, OpGt, ops["quantity:0"])
	assert.Equal(t, OpLt, ops["createdAt:2025-01-01"])
}

func TestParse_BareKeyIsEquality(t *testing.T) {
	values := url.Values{}
	values.Set("category", "books")

	spec := Parse(values)

	assert.Equal(t, []Condition{{Field: "category", Op: OpEq, Value: "books"}}, spec.Filters)
}

func TestParse_UnknownSuffixIsEquality(t *testing.T) {
	values := url.Values{}
	values.Set("price[like]", "10")

	spec := Parse(values)

	assert.Len(t, spec.Filters, 1)
	assert.Equal(t, OpEq, spec.Filters[0].Op)
}

func TestParse_ReservedKeysNeverBecomeFilters(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("limit", "5")
	values.Set("sort", "price")
	values.Set("fields", "itemName")
	values.Set("keyword", "saw")

	spec := Parse(values)

	assert.Empty(t, spec.Filters)
	assert.Equal(t, 2, spec.Page)
	assert.Equal(t, 5, spec.Limit)
	assert.Equal(t, "saw", spec.Keyword)
}

func TestParse_SortList(t *testing.T) {
	values := url.Values{}
	values.Set("sort", "-price,itemName, -createdAt")

	spec := Parse(values)

	assert.Equal(t, []SortKey{
		{Field: "price", Desc: true},
		{Field: "itemName"},
		{Field: "createdAt", Desc: true},
	}, spec.Sort)
}

func TestParse_FieldsList(t *testing.T) {
	values := url.Values{}
	values.Set("fields", "itemName, price ,category")

	spec := Parse(values)

	assert.Equal(t, []string{"itemName", "price", "category"}, spec.Fields)
}
