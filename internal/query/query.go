// Package query models listing search filters as a typed expression tree.
// Handlers parse request parameters into Params, Build turns them into a
// Query, and the listing repository compiles the tree to SQL. The tree is
// deliberately small: substring matches, an OR group, and a price range,
// joined conjunctively.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Searchable listing fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldCountry     = "country"
	FieldPrice       = "price"
	FieldCreatedAt   = "created_at"
)

// Params is the raw filter/sort selection from the request. Price bounds
// are nil when absent or non-numeric; non-numeric input is ignored rather
// than rejected.
type Params struct {
	Search   string
	Category string
	MinPrice *int
	MaxPrice *int
	Location string
	Country  string
	SortBy   string
}

// paramOrder fixes the canonical parameter order used when re-deriving
// listing URLs for filter chips.
var paramOrder = []string{"search", "category", "minPrice", "maxPrice", "location", "country", "sortBy"}

func Parse(values url.Values) Params {
	return Params{
		Search:   strings.TrimSpace(values.Get("search")),
		Category: strings.TrimSpace(values.Get("category")),
		MinPrice: parseIntParam(values.Get("minPrice")),
		MaxPrice: parseIntParam(values.Get("maxPrice")),
		Location: strings.TrimSpace(values.Get("location")),
		Country:  strings.TrimSpace(values.Get("country")),
		SortBy:   strings.TrimSpace(values.Get("sortBy")),
	}
}

func parseIntParam(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// HasFilters reports whether any filter (not sort) is active.
func (p Params) HasFilters() bool {
	return p.Search != "" || (p.Category != "" && p.Category != "all") ||
		p.MinPrice != nil || p.MaxPrice != nil || p.Location != "" || p.Country != ""
}

func (p Params) get(name string) string {
	switch name {
	case "search":
		return p.Search
	case "category":
		return p.Category
	case "minPrice":
		if p.MinPrice != nil {
			return strconv.Itoa(*p.MinPrice)
		}
	case "maxPrice":
		if p.MaxPrice != nil {
			return strconv.Itoa(*p.MaxPrice)
		}
	case "location":
		return p.Location
	case "country":
		return p.Country
	case "sortBy":
		return p.SortBy
	}
	return ""
}

// RemoveParams re-derives the listing URL with the named parameters
// dropped, preserving every other non-empty parameter in canonical order.
// Used to render removable filter chips.
func RemoveParams(p Params, names ...string) string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var qs url.Values
	for _, name := range paramOrder {
		if drop[name] {
			continue
		}
		if v := p.get(name); v != "" {
			if qs == nil {
				qs = url.Values{}
			}
			qs.Set(name, v)
		}
	}

	if qs == nil {
		return "/listings"
	}
	// url.Values.Encode sorts keys; rebuild in canonical order instead.
	var b strings.Builder
	b.WriteString("/listings?")
	first := true
	for _, name := range paramOrder {
		if v := qs.Get(name); v != "" {
			if !first {
				b.WriteByte('&')
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
			first = false
		}
	}
	return b.String()
}

// Filter is a node of the filter expression tree.
type Filter interface{ isFilter() }

// Substring matches when any listed field contains Term,
// case-insensitively.
type Substring struct {
	Fields []string
	Term   string
}

// Or matches when any child filter matches.
type Or struct {
	Filters []Filter
}

// PriceRange matches prices within the inclusive bounds; either bound may
// be absent.
type PriceRange struct {
	Min *int
	Max *int
}

func (Substring) isFilter()  {}
func (Or) isFilter()         {}
func (PriceRange) isFilter() {}

type Sort struct {
	Field string
	Desc  bool
}

// Query is a conjunction of filters plus a single sort selection.
type Query struct {
	Filters []Filter
	Sort    Sort
}

// Categories maps a category selector to the OR-matched substrings applied
// against title and description.
var Categories = map[string][]string{
	"trending":  {"trending", "popular", "hot"},
	"rooms":     {"room", "bedroom", "private"},
	"food":      {"kitchen", "restaurant", "dining"},
	"wifi":      {"wifi", "internet", "wireless"},
	"pool":      {"pool", "swimming", "swim"},
	"cities":    {"city", "urban", "downtown"},
	"beach":     {"beach", "coastal", "ocean", "sea"},
	"mountains": {"mountain", "hill", "valley"},
	"castles":   {"castle", "palace", "historic"},
	"adventure": {"adventure", "hiking", "outdoor"},
	"hiking":    {"hiking", "trail", "nature"},
}

// Build translates Params into a Query.
//
// Free-text search and category keywords each form an OR group; when both
// are present they merge into a single OR list (union, not intersection),
// matching the long-standing behavior of the search page. Price bounds and
// location/country substrings are independent AND conditions.
func Build(p Params) Query {
	q := Query{Sort: sortFor(p.SortBy)}

	var or []Filter
	if p.Search != "" {
		or = append(or, Substring{
			Fields: []string{FieldTitle, FieldDescription, FieldLocation, FieldCountry},
			Term:   p.Search,
		})
	}
	if p.Category != "" && p.Category != "all" {
		for _, kw := range Categories[p.Category] {
			or = append(or, Substring{
				Fields: []string{FieldTitle, FieldDescription},
				Term:   kw,
			})
		}
	}
	if len(or) > 0 {
		q.Filters = append(q.Filters, Or{Filters: or})
	}

	if p.MinPrice != nil || p.MaxPrice != nil {
		q.Filters = append(q.Filters, PriceRange{Min: p.MinPrice, Max: p.MaxPrice})
	}
	if p.Location != "" {
		q.Filters = append(q.Filters, Substring{Fields: []string{FieldLocation}, Term: p.Location})
	}
	if p.Country != "" {
		q.Filters = append(q.Filters, Substring{Fields: []string{FieldCountry}, Term: p.Country})
	}

	return q
}

func sortFor(sortBy string) Sort {
	switch sortBy {
	case "priceHigh":
		return Sort{Field: FieldPrice, Desc: true}
	case "priceLow":
		return Sort{Field: FieldPrice}
	case "newest":
		return Sort{Field: FieldCreatedAt, Desc: true}
	case "oldest":
		return Sort{Field: FieldCreatedAt}
	default:
		return Sort{Field: FieldTitle}
	}
}
