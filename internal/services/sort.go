package services

import (
	"slices"
	"time"

	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
)

type SortOption string

const (
	SortNone       SortOption = ""
	SortDueDate    SortOption = "dueDate"
	SortPriority   SortOption = "priority"
	SortCompletion SortOption = "completion"
)

// noDueDate stands in for tasks without a due date so they sort last.
var noDueDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func ParseSortOption(raw string) (SortOption, error) {
	switch opt := SortOption(raw); opt {
	case SortNone, SortDueDate, SortPriority, SortCompletion:
		return opt, nil
	default:
		return SortNone, apperr.BadRequest(apperr.KeyInvalidSort)
	}
}

// SortTasks orders tasks in place. The sort is stable, so tasks that compare
// equal keep their incoming order.
//
//   - dueDate: closest to now first, either side of now
//   - priority: URGENT, HIGH, MEDIUM, LOW
//   - completion: PENDING, IN_PROGRESS, COMPLETED, CANCELLED
func SortTasks(tasks []models.Task, opt SortOption, now time.Time) {
	switch opt {
	case SortDueDate:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return compareDurations(dueDistance(a, now), dueDistance(b, now))
		})
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortCompletion:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return b.Status.Rank() - a.Status.Rank()
		})
	}
}

func dueDistance(t models.Task, now time.Time) time.Duration {
	due := noDueDate
	if t.DueDate != nil {
		due = *t.DueDate
	}
	d := due.Sub(now)
	if d < 0 {
		d = -d
	}
	return d
}

func compareDurations(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
