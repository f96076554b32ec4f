package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_Defaults(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	f := e.family(t, alice)

	task := e.task(t, alice, f.ID, "Take out trash", 0, nil)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.DefaultCategory, task.Category)
	assert.Equal(t, 0, task.Points)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, alice.ID, task.CreatedByID)

	view := task.View()
	require.NotNil(t, view.FamilyRef)
	assert.Equal(t, f.Name, view.FamilyRef.Name)
	require.NotNil(t, view.CreatedBy)
	assert.Equal(t, "alice", view.CreatedBy.Name)
	assert.Nil(t, view.AssignedTo)
}

func TestCreateTask_Permissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice)

	_, err := e.tasks.Create(ctx, bob.ID, CreateTaskInput{FamilyID: f.ID, Title: "x"})
	requireKind(t, err, apperr.KindForbidden)

	_, err = e.tasks.Create(ctx, alice.ID, CreateTaskInput{FamilyID: f.ID, Title: "x", AssignedToID: &bob.ID})
	requireKind(t, err, apperr.KindBadRequest)

	var n int64
	require.NoError(t, e.db.Model(&models.Task{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateTask_CompletionGrantsPointsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)
	task := e.task(t, alice, f.ID, "Vacuum", 10, bob)

	res, err := e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{Status: statusPtr(models.StatusCompleted)})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Grant)
	assert.Equal(t, bob.ID, res.Grant.UserID)
	assert.Equal(t, 10, res.Grant.Points)
	assert.Equal(t, models.PointTypeEarned, res.Grant.Type)
	assert.Equal(t, "Task completed: Vacuum", res.Grant.Description)
	assert.NotNil(t, res.Task.CompletedAt)

	res, err = e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{Status: statusPtr(models.StatusCompleted)})
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Nil(t, res.Grant)

	assert.Equal(t, int64(1), e.countPoints(t, task.ID))
}

func TestUpdateTask_NoGrantWithoutAssigneeOrPoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	f := e.family(t, alice)

	unassigned := e.task(t, alice, f.ID, "a", 10, nil)
	zero := e.task(t, alice, f.ID, "b", 0, alice)

	for _, task := range []*models.Task{unassigned, zero} {
		res, err := e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{Status: statusPtr(models.StatusCompleted)})
		require.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Nil(t, res.Grant)
		assert.Zero(t, e.countPoints(t, task.ID))
	}
}

func TestUpdateTask_GrantUsesPatchedValues(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)
	task := e.task(t, alice, f.ID, "Laundry", 0, nil)

	points := 7
	res, err := e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{
		Status:       statusPtr(models.StatusCompleted),
		Points:       &points,
		AssignedToID: models.Some(bob.ID),
	})
	require.NoError(t, err)
	assert.True(t, res.Reassigned)
	require.NotNil(t, res.Grant)
	assert.Equal(t, bob.ID, res.Grant.UserID)
	assert.Equal(t, 7, res.Grant.Points)
}

func TestUpdateTask_CompletedAtTracksStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	f := e.family(t, alice)
	task := e.task(t, alice, f.ID, "Mop", 3, alice)

	steps := []models.TaskStatus{
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusPending,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusInProgress,
		models.StatusCancelled,
	}
	for _, next := range steps {
		res, err := e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{Status: statusPtr(next)})
		require.NoError(t, err)
		assert.Equal(t, next, res.Task.Status)
		assert.Equalf(t, next == models.StatusCompleted, res.Task.CompletedAt != nil, "after %s", next)
	}

	// Reopening does not reverse earlier grants.
	assert.Equal(t, int64(2), e.countPoints(t, task.ID))
}

func TestUpdateTask_ClearNullableFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task, err := e.tasks.Create(ctx, alice.ID, CreateTaskInput{FamilyID: f.ID, Title: "Shop", DueDate: &due, AssignedToID: &bob.ID})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	require.NotNil(t, task.AssignedToID)

	title := "Groceries"
	res, err := e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", res.Task.Title)
	assert.NotNil(t, res.Task.DueDate, "absent fields stay untouched")
	assert.NotNil(t, res.Task.AssignedToID)

	res, err = e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{
		DueDate:      models.Null[time.Time](),
		AssignedToID: models.Null[uuid.UUID](),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Task.DueDate)
	assert.Nil(t, res.Task.AssignedToID)
	assert.False(t, res.Reassigned)
}

func TestUpdateTask_Permissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	f := e.family(t, alice, bob)
	task := e.task(t, alice, f.ID, "Cook", 1, nil)

	title := "x"
	_, err := e.tasks.Update(ctx, carol.ID, task.ID, TaskPatch{Title: &title})
	requireKind(t, err, apperr.KindForbidden)

	_, err = e.tasks.Update(ctx, alice.ID, task.ID, TaskPatch{AssignedToID: models.Some(carol.ID)})
	requireKind(t, err, apperr.KindBadRequest)

	_, err = e.tasks.Update(ctx, alice.ID, uuid.New(), TaskPatch{Title: &title})
	requireKind(t, err, apperr.KindNotFound)
}

func TestCompleteTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)
	task := e.task(t, alice, f.ID, "Water plants", 4, bob)

	res, err := e.tasks.Complete(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, res.Task.Status)
	require.NotNil(t, res.Grant)

	_, err = e.tasks.Complete(ctx, bob.ID, task.ID)
	requireKind(t, err, apperr.KindBadRequest)
	assert.Equal(t, int64(1), e.countPoints(t, task.ID))
}

func TestDeleteTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	f := e.family(t, alice, bob, carol)

	t.Run("member who is not the creator", func(t *testing.T) {
		task := e.task(t, carol, f.ID, "Dust", 1, nil)
		_, err := e.tasks.Delete(ctx, bob.ID, task.ID)
		requireKind(t, err, apperr.KindForbidden)

		_, err = e.tasks.Get(ctx, carol.ID, task.ID)
		assert.NoError(t, err)
	})

	t.Run("creator removes task and points", func(t *testing.T) {
		task := e.task(t, bob, f.ID, "Iron", 5, bob)
		_, err := e.tasks.Complete(ctx, bob.ID, task.ID)
		require.NoError(t, err)
		require.Equal(t, int64(1), e.countPoints(t, task.ID))

		deleted, err := e.tasks.Delete(ctx, bob.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.Zero(t, e.countPoints(t, task.ID))

		_, err = e.tasks.Get(ctx, bob.ID, task.ID)
		requireKind(t, err, apperr.KindNotFound)
	})

	t.Run("admin may delete any task", func(t *testing.T) {
		task := e.task(t, carol, f.ID, "Sweep", 1, nil)
		_, err := e.tasks.Delete(ctx, alice.ID, task.ID)
		require.NoError(t, err)
	})

	t.Run("outsider", func(t *testing.T) {
		task := e.task(t, carol, f.ID, "Fold", 1, nil)
		_, err := e.tasks.Delete(ctx, e.user(t, "dave").ID, task.ID)
		requireKind(t, err, apperr.KindForbidden)
	})
}

func TestListTasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	home := e.family(t, alice)
	other := e.family(t, bob, alice)

	first := e.task(t, alice, home.ID, "first", 1, nil)
	time.Sleep(5 * time.Millisecond)
	second := e.task(t, alice, home.ID, "second", 1, nil)
	time.Sleep(5 * time.Millisecond)
	third := e.task(t, bob, other.ID, "third", 1, nil)

	all, err := e.tasks.List(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	scoped, err := e.tasks.List(ctx, alice.ID, &home.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	_, err = e.tasks.List(ctx, bob.ID, &home.ID)
	requireKind(t, err, apperr.KindForbidden)

	mine, err := e.tasks.List(ctx, e.user(t, "carol").ID, nil)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCompletionRace_GrantsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)
	task := e.task(t, alice, f.ID, "Laundry", 10, bob)

	// Both writers read the task while it is still pending.
	stale, err := e.tasks.find(ctx, task.ID)
	require.NoError(t, err)

	first, err := e.tasks.Complete(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.Task.CompletedAt)
	completedAt := *first.Task.CompletedAt
	assert.EqualValues(t, 1, e.countPoints(t, task.ID))

	completed := models.StatusCompleted

	_, err = e.tasks.apply(ctx, stale, TaskPatch{Status: &completed}, true)
	requireKind(t, err, apperr.KindBadRequest)
	assert.EqualValues(t, 1, e.countPoints(t, task.ID))

	title := "Laundry and folding"
	res, err := e.tasks.apply(ctx, stale, TaskPatch{Status: &completed, Title: &title}, false)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Nil(t, res.Grant)
	assert.Equal(t, title, res.Task.Title)
	assert.Equal(t, models.StatusCompleted, res.Task.Status)
	require.NotNil(t, res.Task.CompletedAt)
	assert.True(t, completedAt.Equal(*res.Task.CompletedAt), "the first completion keeps its timestamp")
	assert.EqualValues(t, 1, e.countPoints(t, task.ID))
}
