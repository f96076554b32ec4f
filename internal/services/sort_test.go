package services

import (
	"testing"
	"time"

	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestSortTasks_Priority(t *testing.T) {
	tasks := []models.Task{
		{Title: "low", Priority: models.PriorityLow},
		{Title: "urgent", Priority: models.PriorityUrgent},
		{Title: "medium", Priority: models.PriorityMedium},
		{Title: "high", Priority: models.PriorityHigh},
	}
	SortTasks(tasks, SortPriority, time.Now())
	assert.Equal(t, []string{"urgent", "high", "medium", "low"}, titles(tasks))
}

func TestSortTasks_Completion(t *testing.T) {
	tasks := []models.Task{
		{Title: "cancelled", Status: models.StatusCancelled},
		{Title: "completed", Status: models.StatusCompleted},
		{Title: "pending", Status: models.StatusPending},
		{Title: "in progress", Status: models.StatusInProgress},
	}
	SortTasks(tasks, SortCompletion, time.Now())
	assert.Equal(t, []string{"pending", "in progress", "completed", "cancelled"}, titles(tasks))
}

func TestSortTasks_DueDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	tasks := []models.Task{
		{Title: "none"},
		{Title: "next week", DueDate: at(7 * 24 * time.Hour)},
		{Title: "yesterday", DueDate: at(-24 * time.Hour)},
		{Title: "in an hour", DueDate: at(time.Hour)},
	}
	SortTasks(tasks, SortDueDate, now)
	assert.Equal(t, []string{"in an hour", "yesterday", "next week", "none"}, titles(tasks))
}

func TestSortTasks_Stable(t *testing.T) {
	tasks := []models.Task{
		{Title: "a", Priority: models.PriorityHigh},
		{Title: "b", Priority: models.PriorityLow},
		{Title: "c", Priority: models.PriorityHigh},
		{Title: "d", Priority: models.PriorityHigh},
	}
	SortTasks(tasks, SortPriority, time.Now())
	assert.Equal(t, []string{"a", "c", "d", "b"}, titles(tasks))

	SortTasks(tasks, SortNone, time.Now())
	assert.Equal(t, []string{"a", "c", "d", "b"}, titles(tasks))
}

func TestParseSortOption(t *testing.T) {
	opt, err := ParseSortOption("priority")
	require.NoError(t, err)
	assert.Equal(t, SortPriority, opt)

	opt, err = ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, opt)

	_, err = ParseSortOption("alphabetical")
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}
