package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Rank orders priorities for sorting, URGENT highest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// Rank orders statuses so unfinished work surfaces first.
func (s TaskStatus) Rank() int {
	switch s {
	case StatusPending:
		return 4
	case StatusInProgress:
		return 3
	case StatusCompleted:
		return 2
	case StatusCancelled:
		return 1
	default:
		return 0
	}
}

// Open reports whether the task still counts as pending work.
func (s TaskStatus) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

const DefaultCategory = "general"

type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FamilyID     uuid.UUID  `json:"familyId" gorm:"type:uuid;index;not null"`
	Title        string     `json:"title" gorm:"not null"`
	Description  *string    `json:"description"`
	Points       int        `json:"points" gorm:"not null;default:0"`
	Category     string     `json:"category" gorm:"not null;default:'general'"`
	Priority     Priority   `json:"priority" gorm:"not null;default:'MEDIUM'"`
	Status       TaskStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *uuid.UUID `json:"assignedToId" gorm:"type:uuid;index"`
	CreatedByID  uuid.UUID  `json:"createdById" gorm:"type:uuid;index;not null"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Family     *Family `json:"-" gorm:"foreignKey:FamilyID"`
	AssignedTo *User   `json:"-" gorm:"foreignKey:AssignedToID"`
	CreatedBy  *User   `json:"-" gorm:"foreignKey:CreatedByID"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	return nil
}

// TaskView is the response shape with related records flattened to summaries.
type TaskView struct {
	Task
	FamilyRef  *FamilyRef   `json:"family"`
	AssignedTo *UserSummary `json:"assignedTo"`
	CreatedBy  *UserSummary `json:"createdBy"`
}

func (t *Task) View() TaskView {
	v := TaskView{Task: *t}
	if t.Family != nil {
		v.FamilyRef = &FamilyRef{ID: t.Family.ID, Name: t.Family.Name}
	}
	if t.AssignedTo != nil {
		s := t.AssignedTo.Summary()
		v.AssignedTo = &s
	}
	if t.CreatedBy != nil {
		s := t.CreatedBy.Summary()
		v.CreatedBy = &s
	}
	return v
}

func TaskViews(tasks []Task) []TaskView {
	views := make([]TaskView, len(tasks))
	for i := range tasks {
		views[i] = tasks[i].View()
	}
	return views
}

// Task DTOs
type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,min=1,max=100"`
	Description  *string    `json:"description" validate:"omitempty,max=500"`
	Points       int        `json:"points" validate:"min=0,max=1000"`
	Category     string     `json:"category" validate:"omitempty,max=50"`
	Priority     Priority   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate      *time.Time `json:"dueDate"`
	FamilyID     uuid.UUID  `json:"familyId" validate:"required"`
	AssignedToID *uuid.UUID `json:"assignedToId"`
	Locale       string     `json:"locale"`
}

// UpdateTaskRequest lists every field a task update may touch. Absent fields
// are left alone; DueDate and AssignedToID accept null to clear.
type UpdateTaskRequest struct {
	Title        *string             `json:"title" validate:"omitempty,min=1,max=100"`
	Description  *string             `json:"description" validate:"omitempty,max=500"`
	Points       *int                `json:"points" validate:"omitempty,min=0,max=1000"`
	Category     *string             `json:"category" validate:"omitempty,min=1,max=50"`
	Priority     *Priority           `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status       *TaskStatus         `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	DueDate      Nullable[time.Time] `json:"dueDate" validate:"-"`
	AssignedToID Nullable[uuid.UUID] `json:"assignedToId" validate:"-"`
	Locale       string              `json:"locale"`
}
