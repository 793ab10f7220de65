// Package pagination computes the page-number strip under a list.
package pagination

import "strconv"

// MaxPages is the widest run of contiguous page numbers shown.
const MaxPages = 5

// Item is one slot of the strip: a page number or an ellipsis.
type Item struct {
	Page     int
	Ellipsis bool
}

func (i Item) String() string {
	if i.Ellipsis {
		return "..."
	}
	return strconv.Itoa(i.Page)
}

func page(n int) Item { return Item{Page: n} }

var ellipsis = Item{Ellipsis: true}

// Window returns up to MaxPages pages centered on current and clamped to
// [1, total], with the first and last page added when they fall outside the
// run and an ellipsis wherever pages are skipped. Window(5, 10) is
// 1 … 3 4 5 6 7 … 10.
func Window(current, total int) []Item {
	if total < 1 {
		return nil
	}
	current = Clamp(current, total)

	start := current - MaxPages/2
	if start < 1 {
		start = 1
	}
	end := start + MaxPages - 1
	if end > total {
		end = total
		start = end - MaxPages + 1
		if start < 1 {
			start = 1
		}
	}

	items := make([]Item, 0, MaxPages+4)
	if start > 1 {
		items = append(items, page(1))
		if start > 2 {
			items = append(items, ellipsis)
		}
	}
	for p := start; p <= end; p++ {
		items = append(items, page(p))
	}
	if end < total {
		if end < total-1 {
			items = append(items, ellipsis)
		}
		items = append(items, page(total))
	}
	return items
}

// Clamp keeps p within [1, total]. With no pages at all it returns 1.
func Clamp(p, total int) int {
	if total < 1 || p < 1 {
		return 1
	}
	if p > total {
		return total
	}
	return p
}

// Strings renders a window as "1", "...", "3" and so on.
func Strings(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}
