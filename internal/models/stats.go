package models

type StatsOverview struct {
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	TotalPoints    int64 `json:"totalPoints"`
	TotalTasks     int64 `json:"totalTasks"`
}

type StatsPersonal struct {
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	TotalTasks     int64 `json:"totalTasks"`
}

type Stats struct {
	Overview       StatsOverview `json:"overview"`
	Personal       StatsPersonal `json:"personal"`
	RecentActivity []TaskView    `json:"recentActivity"`
}
