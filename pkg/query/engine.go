// Package query is the filter -> sort -> paginate pipeline shared by every
// order and product listing. It is pure: inputs are never mutated and the
// same Spec over the same collection always yields the same Result.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fields tells the engine how to read an item. Any selector may be nil;
// a nil selector reads as the zero value.
type Fields[T any] struct {
	Text     func(T) []string
	Category func(T) string
	Amount   func(T) decimal.Decimal
	Created  func(T) time.Time
	Views    func(T) int64
	Sales    func(T) int64
}

type Result[T any] struct {
	Items      []T `json:"items"`
	Matched    int `json:"matched"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Run applies filter, sort and paginate in that order.
func Run[T any](items []T, spec Spec, f Fields[T]) Result[T] {
	filtered := Filter(items, spec, f)
	sorted := Sort(filtered, spec.Sort, f)
	return Result[T]{
		Items:      Paginate(sorted, spec.Page, spec.PageSize),
		Matched:    len(sorted),
		Page:       spec.Page,
		PageSize:   spec.PageSize,
		TotalPages: TotalPages(len(sorted), spec.PageSize),
	}
}

// Filter keeps the items for which every active predicate holds.
func Filter[T any](items []T, spec Spec, f Fields[T]) []T {
	needle := fold(strings.TrimSpace(spec.Text))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if needle != "" && !matchText(it, needle, f) {
			continue
		}
		if spec.categoryActive() && category(it, f) != spec.Category {
			continue
		}
		if spec.Min.Valid || spec.Max.Valid {
			v := amount(it, f)
			if spec.Min.Valid && v.LessThan(spec.Min.Decimal) {
				continue
			}
			if spec.Max.Valid && v.GreaterThan(spec.Max.Decimal) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Sort returns a stably sorted copy. Unknown keys keep the input order.
func Sort[T any](items []T, key SortKey, f Fields[T]) []T {
	out := slices.Clone(items)
	var by func(a, b T) int
	switch key {
	case SortNewest:
		by = func(a, b T) int { return created(b, f).Compare(created(a, f)) }
	case SortOldest:
		by = func(a, b T) int { return created(a, f).Compare(created(b, f)) }
	case SortPriceLow:
		by = func(a, b T) int { return amount(a, f).Cmp(amount(b, f)) }
	case SortPriceHigh:
		by = func(a, b T) int { return amount(b, f).Cmp(amount(a, f)) }
	case SortPopular:
		by = func(a, b T) int { return cmp.Compare(counter(b, f.Views), counter(a, f.Views)) }
	case SortBestSelling:
		by = func(a, b T) int { return cmp.Compare(counter(b, f.Sales), counter(a, f.Sales)) }
	default:
		return out
	}
	slices.SortStableFunc(out, by)
	return out
}

// Paginate returns the items at [(page-1)*size, page*size). It does not
// clamp: pages outside the collection yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := start + min(size, len(items)-start)
	return slices.Clone(items[start:end])
}

// TotalPages is ceil(count/size) with a floor of one page.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return max(1, min(page, totalPages))
}

// PageWindow returns up to width consecutive page numbers centred on
// current where possible, for rendering pagination buttons.
func PageWindow(current, totalPages, width int) []int {
	if totalPages < 1 || width < 1 {
		return nil
	}
	n := min(width, totalPages)
	start := current - width/2
	start = max(1, min(start, totalPages-n+1))
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// Casers are stateful, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func matchText[T any](it T, needle string, f Fields[T]) bool {
	if f.Text == nil {
		return false
	}
	for _, field := range f.Text(it) {
		if field != "" && strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

func category[T any](it T, f Fields[T]) string {
	if f.Category == nil {
		return ""
	}
	return f.Category(it)
}

func amount[T any](it T, f Fields[T]) decimal.Decimal {
	if f.Amount == nil {
		return decimal.Zero
	}
	return f.Amount(it)
}

func created[T any](it T, f Fields[T]) time.Time {
	if f.Created == nil {
		return time.Time{}
	}
	return f.Created(it)
}

func counter[T any](it T, sel func(T) int64) int64 {
	if sel == nil {
		return 0
	}
	return sel(it)
}
