package resource

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query is everything a list fetch sends to the backend. Filters is sparse:
// an absent or empty key means no constraint.
type Query struct {
	Page      int
	Limit     int
	Search    string
	Filters   map[string]string
	SortBy    string
	SortOrder string
}

// Normalize fills a missing page and limit.
func (q Query) Normalize(defaultLimit int) Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
		if q.Limit <= 0 {
			q.Limit = DefaultLimit
		}
	}
	return q
}

// Clone returns a copy that shares nothing with q.
func (q Query) Clone() Query {
	if q.Filters != nil {
		filters := make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			filters[k] = v
		}
		q.Filters = filters
	}
	return q
}

// WithFilter returns a copy of q with key set to value, or removed when value
// is empty.
func (q Query) WithFilter(key, value string) Query {
	q = q.Clone()
	if value == "" {
		delete(q.Filters, key)
		return q
	}
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
	q.Filters[key] = value
	return q
}

// FilterKeys returns the active filter keys in sorted order.
func (q Query) FilterKeys() []string {
	keys := make([]string, 0, len(q.Filters))
	for k, v := range q.Filters {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Values encodes the query the way the backend reads it: page, limit, search,
// sortBy, sortOrder and one parameter per filter.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		order := strings.ToLower(q.SortOrder)
		if order != SortAsc {
			order = SortDesc
		}
		v.Set("sortOrder", order)
	}
	for _, k := range q.FilterKeys() {
		v.Set(k, q.Filters[k])
	}
	return v
}
