package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// maxEnvelopeDepth bounds how far the normalizer descends through data/body
// wrappers.
const maxEnvelopeDepth = 6

var (
	listKeys       = []string{"items", "result", "results", "docs"}
	totalKeys      = []string{"total", "totalDocuments", "totalCount", "count"}
	pageKeys       = []string{"page", "currentPage"}
	limitKeys      = []string{"limit", "pageSize"}
	totalPagesKeys = []string{"totalPages"}
	wrapperKeys    = []string{"data", "body"}
)

// Pagination is the server-side paging state of the cached list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one normalized list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Normalizer turns a raw list body into a Page. q is the query that produced
// the body and supplies the page and limit the backend did not echo.
type Normalizer[T any] func(body []byte, q Query) (Page[T], error)

// RecordDecoder turns a raw single-record body into T.
type RecordDecoder[T any] func(body []byte) (T, error)

// NormalizeEnvelope accepts the flat {items,total,page,totalPages} shape and
// the legacy {data:{result,totalDocuments,currentPage,totalPages}} shape,
// including legacy bodies nested further under data/body. A backend
// totalPages is kept verbatim; otherwise it is ceil(total/limit).
func NormalizeEnvelope[T any](body []byte, q Query) (Page[T], error) {
	var out Page[T]

	list, fields, err := findList(body)
	if err != nil {
		return out, err
	}

	items := make([]T, 0)
	if len(list) > 0 && !bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
		if err := json.Unmarshal(list, &items); err != nil {
			return out, fmt.Errorf("decode list items: %w", err)
		}
	}

	p := Pagination{Page: q.Page, Limit: q.Limit, Total: len(items)}
	if v, ok := intField(fields, pageKeys); ok && v > 0 {
		p.Page = v
	}
	if v, ok := intField(fields, limitKeys); ok && v > 0 {
		p.Limit = v
	}
	if v, ok := intField(fields, totalKeys); ok && v >= 0 {
		p.Total = v
	}
	if v, ok := intField(fields, totalPagesKeys); ok {
		p.TotalPages = v
	} else {
		p.TotalPages = totalPages(p.Total, p.Limit)
	}

	out.Items = items
	out.Pagination = p
	return out, nil
}

// Defaulted wraps a normalizer so every item passes through fill, usually an
// entity's WithDefaults.
func Defaulted[T any](n Normalizer[T], fill func(T) T) Normalizer[T] {
	return func(body []byte, q Query) (Page[T], error) {
		page, err := n(body, q)
		if err != nil {
			return page, err
		}
		for i := range page.Items {
			page.Items[i] = fill(page.Items[i])
		}
		return page, nil
	}
}

// DecodeRecord unwraps any {data: ...} or {body: ...} wrappers around a single
// record.
func DecodeRecord[T any](body []byte) (T, error) {
	var rec T
	raw := bytes.TrimSpace(body)
	for depth := 0; depth < maxEnvelopeDepth; depth++ {
		obj, ok := asObject(raw)
		if !ok {
			break
		}
		if _, hasID := obj["id"]; hasID {
			break
		}
		inner, found := firstKey(obj, wrapperKeys)
		if !found {
			break
		}
		raw = inner
	}
	if len(raw) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// findList descends through wrappers until it finds the object holding the
// list, returning the raw list and that object's fields.
func findList(body []byte) (json.RawMessage, map[string]json.RawMessage, error) {
	raw := json.RawMessage(bytes.TrimSpace(body))
	for depth := 0; depth < maxEnvelopeDepth; depth++ {
		if isArray(raw) {
			return raw, nil, nil
		}
		obj, ok := asObject(raw)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected list response")
		}
		if list, found := firstKey(obj, listKeys); found {
			return list, obj, nil
		}
		inner, found := firstKey(obj, wrapperKeys)
		if !found {
			return nil, nil, fmt.Errorf("list response has no items")
		}
		raw = inner
	}
	return nil, nil, fmt.Errorf("list response nested too deeply")
}

func asObject(raw []byte) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isArray(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '['
}

func firstKey(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return bytes.TrimSpace(v), true
		}
	}
	return nil, false
}

// intField reads the first present key as an integer. Some backends send
// counts as strings.
func intField(obj map[string]json.RawMessage, keys []string) (int, bool) {
	raw, ok := firstKey(obj, keys)
	if !ok {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.Atoi(n.String()); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
