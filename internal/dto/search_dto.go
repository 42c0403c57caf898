package dto

// SearchRequest carries the pagination and sorting knobs shared by every
// search endpoint. Sorting columns are whitelisted per repository; anything
// unknown falls back to id ascending.
type SearchRequest struct {
	SortColumn string `query:"sortColumn"`
	SortOrder  string `query:"sortOrder"`
	Page       int    `query:"page"`
	PageSize   int    `query:"pageSize"`
}

type SearchUserRequest struct {
	SearchRequest
	Q       string `query:"q"`
	Enabled *bool  `query:"enabled"`
}

type SearchMovieRequest struct {
	SearchRequest
	Q          string  `query:"q"`
	Studio     *int64  `query:"studio"`
	Categories []int64 `query:"categories"`
}

type SearchStudioRequest struct {
	SearchRequest
	Q string `query:"q"`
}

type SearchCategoryRequest struct {
	SearchRequest
	Q string `query:"q"`
}

type SearchResponse[T any] struct {
	Items           []T   `json:"items"`
	Page            int   `json:"page"`
	PageSize        int   `json:"pageSize"`
	TotalCount      int64 `json:"totalCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewSearchResponse[T any](items []T, page, pageSize int, totalCount int64) SearchResponse[T] {
	return SearchResponse[T]{
		Items:           items,
		Page:            page,
		PageSize:        pageSize,
		TotalCount:      totalCount,
		HasNextPage:     int64(page)*int64(pageSize) < totalCount,
		HasPreviousPage: page > 1,
	}
}
