package table

import (
	"fmt"
	"strings"
)

// Pagination is the page metadata derived from a [Query]. It is recomputed on every call.
type Pagination struct {
	CurrentPage       int
	TotalPages        int
	FirstPageOffset   int
	PrevPageOffset    int
	NextPageOffset    int
	LastPageOffset    int
	FirstDisplayedRow int
	LastDisplayedRow  int
	Total             int
}

// Paginate derives page metadata from q. Limit must be positive.
func Paginate(q Query) Pagination {
	current := currentPage(q)
	total := totalPages(q)
	return Pagination{
		CurrentPage:       current,
		TotalPages:        total,
		FirstPageOffset:   0,
		PrevPageOffset:    max((current-2)*q.Limit, 0),
		NextPageOffset:    current * q.Limit,
		LastPageOffset:    max((total-1)*q.Limit, 0),
		FirstDisplayedRow: firstDisplayedRow(q),
		LastDisplayedRow:  min(q.Offset+q.Limit, q.Total),
		Total:             q.Total,
	}
}

func currentPage(q Query) int {
	if q.Offset == 0 {
		return 1
	}
	return q.Offset/q.Limit + 1
}

// totalPages is never below one, even for an empty listing.
func totalPages(q Query) int {
	pages := (q.Total + q.Limit - 1) / q.Limit
	return max(pages, 1)
}

func firstDisplayedRow(q Query) int {
	if q.Total == 0 {
		return 0
	}
	return q.Offset + 1
}

// summary renders the status line for kind. An empty row set is always "No results".
func summary(p Pagination, rowCount int, kind, noun string) string {
	if rowCount == 0 {
		return NoResultsSummary
	}
	if strings.EqualFold(kind, SummaryPages) {
		return fmt.Sprintf("Showing page %d of %d", p.CurrentPage, p.TotalPages)
	}
	if noun == "" {
		noun = DefaultNoun
	}
	return fmt.Sprintf("Showing %d to %d of %d %s", p.FirstDisplayedRow, p.LastDisplayedRow, p.Total, noun)
}
