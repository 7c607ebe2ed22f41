package response

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// NewPage converts src with conv and wraps the result. Items is never null in
// the JSON output.
func NewPage[S, T any](src []S, conv func(S) T, page, pageSize, total int) PageResponse[T] {
	items := make([]T, len(src))
	for i, s := range src {
		items[i] = conv(s)
	}

	return PageResponse[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  page > 0 && pageSize > 0 && page*pageSize < total,
	}
}
