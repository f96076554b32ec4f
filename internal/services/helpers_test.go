package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/logging"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db            *gorm.DB
	families      *FamilyService
	ledger        *Ledger
	tasks         *TaskService
	stats         *StatsService
	activity      *ActivityService
	notifications *NotificationService
	users         *UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	tokens, err := auth.NewTokenService("test-access", "test-refresh")
	require.NoError(t, err)

	families := NewFamilyService(db)
	ledger := NewLedger(db)
	return &env{
		db:            db,
		families:      families,
		ledger:        ledger,
		tasks:         NewTaskService(db, families, ledger),
		stats:         NewStatsService(db, families, ledger),
		activity:      NewActivityService(db, families),
		notifications: NewNotificationService(db, nil, logging.Discard()),
		users:         NewUserService(db, tokens),
	}
}

// user inserts a user row directly, skipping bcrypt.
func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := models.User{Email: name + "@example.com", Name: name, Password: "x"}
	require.NoError(t, e.db.Create(&u).Error)
	return &u
}

func (e *env) family(t *testing.T, owner *models.User, members ...*models.User) *models.Family {
	t.Helper()
	ctx := context.Background()
	f, err := e.families.CreateFamily(ctx, owner.ID, "Home", nil)
	require.NoError(t, err)
	for _, m := range members {
		_, err := e.families.JoinFamily(ctx, m.ID, f.InviteCode)
		require.NoError(t, err)
	}
	return f
}

func (e *env) task(t *testing.T, creator *models.User, familyID uuid.UUID, title string, points int, assignee *models.User) *models.Task {
	t.Helper()
	in := CreateTaskInput{FamilyID: familyID, Title: title, Points: points}
	if assignee != nil {
		in.AssignedToID = &assignee.ID
	}
	task, err := e.tasks.Create(context.Background(), creator.ID, in)
	require.NoError(t, err)
	return task
}

func (e *env) countPoints(t *testing.T, taskID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.PointRecord{}).Where("task_id = ?", taskID).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperr.IsKind(err, kind), "want %s, got %v", kind, err)
}

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }
