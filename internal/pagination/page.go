// Package pagination wraps raw paged query results into stable,
// UI-consumable page descriptors.
package pagination

import (
	"math"
)

// Page describes one slice of an ordered collection. PageNumber is
// zero-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"page_number"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	HasNext       bool  `json:"has_next"`
	HasPrevious   bool  `json:"has_previous"`
}

// New builds a page descriptor from a fetched slice plus the request's
// page/size and the total row count. An empty result set reports
// first == last == true with no next/previous page.
func New[T any](content []T, pageNumber, pageSize int, totalElements int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(totalElements) / float64(pageSize)))
	}

	p := Page[T]{
		Content:       content,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: totalElements,
		TotalPages:    totalPages,
	}

	if totalPages == 0 {
		// No rows: never compute last as pageNumber == -1.
		p.First = true
		p.Last = true
		return p
	}

	p.First = pageNumber == 0
	p.Last = pageNumber == totalPages-1
	p.HasNext = pageNumber < totalPages-1
	p.HasPrevious = pageNumber > 0
	return p
}
