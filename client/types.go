package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type Member struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	User   *User  `json:"user,omitempty"`
}

type Family struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	InviteCode  string   `json:"inviteCode"`
	Members     []Member `json:"members"`
	Count       struct {
		Members int64 `json:"members"`
		Tasks   int64 `json:"tasks"`
	} `json:"_count"`
}

type Task struct {
	ID           string     `json:"id"`
	FamilyID     string     `json:"familyId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Points       int        `json:"points"`
	Category     string     `json:"category"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *string    `json:"assignedToId"`
	CreatedByID  string     `json:"createdById"`
	CompletedAt  *time.Time `json:"completedAt"`
	AssignedTo   *User      `json:"assignedTo"`
	CreatedBy    *User      `json:"createdBy"`
}

type CreateTask struct {
	FamilyID     string     `json:"familyId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Points       int        `json:"points"`
	Category     string     `json:"category,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	AssignedToID *string    `json:"assignedToId,omitempty"`
}

type Stats struct {
	Overview struct {
		PendingTasks   int64 `json:"pendingTasks"`
		CompletedTasks int64 `json:"completedTasks"`
		TotalPoints    int64 `json:"totalPoints"`
		TotalTasks     int64 `json:"totalTasks"`
	} `json:"overview"`
	Personal struct {
		PendingTasks   int64 `json:"pendingTasks"`
		CompletedTasks int64 `json:"completedTasks"`
		TotalTasks     int64 `json:"totalTasks"`
	} `json:"personal"`
	RecentActivity []Task `json:"recentActivity"`
}
