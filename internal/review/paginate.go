package review

import "github.com/noah-isme/pricelist-review-api/internal/models"

const (
	// MaxVisiblePages is the job and analysis table variant.
	MaxVisiblePages = 7
	// MaxVisibleProductPages is the product table variant.
	MaxVisibleProductPages = 5

	windowWidth = 3
)

// Page is the view state for one page of a list.
type Page struct {
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	// StartIndex and EndIndex bound the visible slice, end exclusive.
	StartIndex int
	EndIndex   int
	Items      []models.PageItem
}

// Paginate computes the visible window and the page-number plan. currentPage
// is 1-indexed and is not clamped: an out-of-range page yields an empty slice.
func Paginate(totalItems, pageSize, currentPage, maxVisible int) Page {
	p := Page{CurrentPage: currentPage, PageSize: pageSize, TotalItems: totalItems}
	if totalItems <= 0 || pageSize <= 0 {
		return p
	}
	p.TotalPages = (totalItems + pageSize - 1) / pageSize

	if currentPage >= 1 && currentPage <= p.TotalPages {
		p.StartIndex = (currentPage - 1) * pageSize
		p.EndIndex = p.StartIndex + pageSize
		if p.EndIndex > totalItems {
			p.EndIndex = totalItems
		}
	}

	p.Items = pageNumbers(p.TotalPages, currentPage, maxVisible)
	return p
}

// HasPrevious reports whether the previous control is enabled.
func (p Page) HasPrevious() bool {
	return p.TotalPages > 0 && p.CurrentPage > 1
}

// HasNext reports whether the next control is enabled.
func (p Page) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Pagination converts the page into the response metadata shape.
func (p Page) Pagination() *models.Pagination {
	return &models.Pagination{
		Page:        p.CurrentPage,
		PageSize:    p.PageSize,
		TotalCount:  p.TotalItems,
		TotalPages:  p.TotalPages,
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
		Pages:       p.Items,
	}
}

// Slice returns the visible part of items.
func Slice[T any](items []T, p Page) []T {
	if p.StartIndex >= p.EndIndex || p.StartIndex >= len(items) {
		return []T{}
	}
	end := p.EndIndex
	if end > len(items) {
		end = len(items)
	}
	return items[p.StartIndex:end]
}

func pageNumbers(totalPages, currentPage, maxVisible int) []models.PageItem {
	if totalPages < 1 {
		return nil
	}
	if maxVisible <= 0 {
		maxVisible = MaxVisiblePages
	}
	if totalPages <= maxVisible {
		items := make([]models.PageItem, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			items = append(items, pageItem(n, currentPage))
		}
		return items
	}

	start := currentPage - windowWidth/2
	end := start + windowWidth - 1
	if start < 2 {
		start = 2
		end = start + windowWidth - 1
	}
	if end > totalPages-1 {
		end = totalPages - 1
		start = end - windowWidth + 1
	}

	items := []models.PageItem{pageItem(1, currentPage)}
	if start > 2 {
		items = append(items, models.PageItem{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		items = append(items, pageItem(n, currentPage))
	}
	if end < totalPages-1 {
		items = append(items, models.PageItem{Ellipsis: true})
	}
	return append(items, pageItem(totalPages, currentPage))
}

func pageItem(n, current int) models.PageItem {
	return models.PageItem{Number: n, Current: n == current}
}
