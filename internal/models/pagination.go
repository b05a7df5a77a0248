package models

// PageItem is one slot in a pagination bar: a page number or an ellipsis.
// Ellipsis items are never clickable and carry no number.
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalCount  int        `json:"total_count"`
	TotalPages  int        `json:"total_pages"`
	HasPrevious bool       `json:"has_previous"`
	HasNext     bool       `json:"has_next"`
	Pages       []PageItem `json:"pages,omitempty"`
}
