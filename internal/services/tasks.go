package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/metrics"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTaskInput struct {
	FamilyID     uuid.UUID
	Title        string
	Description  *string
	Points       int
	Category     string
	Priority     models.Priority
	DueDate      *time.Time
	AssignedToID *uuid.UUID
}

// TaskPatch is a partial task update. Nil pointers and unset Nullables leave
// the column untouched.
type TaskPatch struct {
	Title        *string
	Description  *string
	Points       *int
	Category     *string
	Priority     *models.Priority
	Status       *models.TaskStatus
	DueDate      models.Nullable[time.Time]
	AssignedToID models.Nullable[uuid.UUID]
}

// TaskResult reports what a write did so callers can fan out side effects.
type TaskResult struct {
	Task *models.Task
	// Previous is the task as it was before the write.
	Previous models.Task
	// Completed is true only for the call that moved the task into COMPLETED.
	Completed bool
	Grant     *models.PointRecord
	// Reassigned is true when the assignee was set to a different user.
	Reassigned bool
}

type TaskService struct {
	db       *gorm.DB
	families *FamilyService
	ledger   *Ledger
	now      func() time.Time
}

func NewTaskService(db *gorm.DB, families *FamilyService, ledger *Ledger) *TaskService {
	return &TaskService{
		db:       db,
		families: families,
		ledger:   ledger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) Create(ctx context.Context, callerID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	if err := s.families.requireMember(ctx, callerID, in.FamilyID); err != nil {
		return nil, err
	}
	if in.AssignedToID != nil {
		if err := s.requireAssignee(ctx, *in.AssignedToID, in.FamilyID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		FamilyID:     in.FamilyID,
		Title:        in.Title,
		Description:  in.Description,
		Points:       in.Points,
		Category:     in.Category,
		Priority:     in.Priority,
		Status:       models.StatusPending,
		DueDate:      in.DueDate,
		AssignedToID: in.AssignedToID,
		CreatedByID:  callerID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.find(ctx, task.ID)
}

// Get returns a task visible to callerID.
func (s *TaskService) Get(ctx context.Context, callerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.families.requireMember(ctx, callerID, task.FamilyID); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks of familyID, or of every family of callerID when
// familyID is nil. Newest first.
func (s *TaskService) List(ctx context.Context, callerID uuid.UUID, familyID *uuid.UUID) ([]models.Task, error) {
	var familyIDs []uuid.UUID
	if familyID != nil {
		if err := s.families.requireMember(ctx, callerID, *familyID); err != nil {
			return nil, err
		}
		familyIDs = []uuid.UUID{*familyID}
	} else {
		ids, err := s.families.FamilyIDsFor(ctx, callerID)
		if err != nil {
			return nil, err
		}
		familyIDs = ids
	}

	tasks := []models.Task{}
	if len(familyIDs) == 0 {
		return tasks, nil
	}
	err := s.withRelations(s.db.WithContext(ctx)).
		Where("family_id IN ?", familyIDs).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

// Update applies patch. Moving a task into COMPLETED grants its points to
// the assignee in the same transaction.
func (s *TaskService) Update(ctx context.Context, callerID, taskID uuid.UUID, patch TaskPatch) (*TaskResult, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.families.requireMember(ctx, callerID, task.FamilyID); err != nil {
		return nil, err
	}
	if patch.AssignedToID.Set && !patch.AssignedToID.Null {
		if err := s.requireAssignee(ctx, patch.AssignedToID.Value, task.FamilyID); err != nil {
			return nil, err
		}
	}
	return s.apply(ctx, task, patch, false)
}

// Complete moves a task into COMPLETED. A task that is already completed is
// rejected.
func (s *TaskService) Complete(ctx context.Context, callerID, taskID uuid.UUID) (*TaskResult, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.families.requireMember(ctx, callerID, task.FamilyID); err != nil {
		return nil, err
	}
	if task.Status == models.StatusCompleted {
		return nil, apperr.BadRequest(apperr.KeyTaskAlreadyDone)
	}
	status := models.StatusCompleted
	return s.apply(ctx, task, TaskPatch{Status: &status}, true)
}

// Delete removes a task and its point records. Only the creator or a family
// ADMIN may delete.
func (s *TaskService) Delete(ctx context.Context, callerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.families.RoleOf(ctx, callerID, task.FamilyID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.Forbidden(apperr.KeyNotFamilyMember)
	}
	if task.CreatedByID != callerID && *role != models.RoleAdmin {
		return nil, apperr.Forbidden(apperr.KeyDeleteNotAllowed)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DeleteForTask(ctx, tx, task.ID); err != nil {
			return err
		}
		return tx.Where("id = ?", task.ID).Delete(&models.Task{}).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return task, nil
}

var errCompletionLost = errors.New("task completed concurrently")

func (s *TaskService) apply(ctx context.Context, task *models.Task, patch TaskPatch, strict bool) (*TaskResult, error) {
	now := s.now()
	result := &TaskResult{Previous: *task}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Points != nil {
		updates["points"] = *patch.Points
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Priority != nil {
		updates["priority"] = string(*patch.Priority)
	}
	if patch.DueDate.Set {
		updates["due_date"] = patch.DueDate.Ptr()
	}
	if patch.AssignedToID.Set {
		updates["assigned_to_id"] = patch.AssignedToID.Ptr()
		if !patch.AssignedToID.Null {
			result.Reassigned = task.AssignedToID == nil || *task.AssignedToID != patch.AssignedToID.Value
		}
	}

	completing := false
	if patch.Status != nil {
		next := *patch.Status
		switch {
		case next == models.StatusCompleted && task.Status != models.StatusCompleted:
			completing = true
			updates["status"] = string(next)
			updates["completed_at"] = now
		case next == models.StatusCompleted:
			// already completed; completedAt keeps its original value
		case next.Open():
			updates["status"] = string(next)
			updates["completed_at"] = nil
		case next == models.StatusCancelled:
			updates["status"] = string(next)
			if task.Status == models.StatusCompleted {
				updates["completed_at"] = nil
			}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if completing {
			res := tx.Model(&models.Task{}).
				Where("id = ? AND status <> ?", task.ID, models.StatusCompleted).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if strict {
					return errCompletionLost
				}
				// Another writer completed it first; keep the rest of the patch.
				completing = false
				delete(updates, "status")
				delete(updates, "completed_at")
				if len(updates) > 0 {
					if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
						return err
					}
				}
			}
		} else if len(updates) > 0 {
			if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if !completing {
			return nil
		}
		result.Completed = true

		var current models.Task
		if err := tx.Where("id = ?", task.ID).First(&current).Error; err != nil {
			return err
		}
		if current.Points <= 0 || current.AssignedToID == nil {
			return nil
		}
		grant, err := s.ledger.Grant(ctx, tx, GrantInput{
			UserID:      *current.AssignedToID,
			FamilyID:    current.FamilyID,
			TaskID:      current.ID,
			Points:      current.Points,
			Description: "Task completed: " + current.Title,
		})
		if err != nil {
			return err
		}
		result.Grant = grant
		return nil
	})
	if errors.Is(err, errCompletionLost) {
		return nil, apperr.BadRequest(apperr.KeyTaskAlreadyDone)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if result.Completed {
		points := 0
		if result.Grant != nil {
			points = result.Grant.Points
		}
		metrics.RecordCompletion(points)
	}

	result.Task, err = s.find(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TaskService) requireAssignee(ctx context.Context, assigneeID, familyID uuid.UUID) error {
	member, err := s.families.IsMember(ctx, assigneeID, familyID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.BadRequest(apperr.KeyAssigneeNotMember)
	}
	return nil
}

func (s *TaskService) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Family").Preload("AssignedTo").Preload("CreatedBy")
}

func (s *TaskService) find(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.withRelations(s.db.WithContext(ctx)).Where("id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.KeyTaskNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &task, nil
}
