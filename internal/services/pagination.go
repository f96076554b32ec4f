package services

import "strconv"

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
)

type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page/limit query values. Out-of-range values fall back to
// page 1 and a limit of 20.
func ParsePage(page, limit string) Page {
	p, _ := strconv.Atoi(page)
	l, _ := strconv.Atoi(limit)
	if p < 1 {
		p = 1
	}
	if l < 1 || l > maxPageLimit {
		l = defaultPageLimit
	}
	return Page{Page: p, Limit: l}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}
