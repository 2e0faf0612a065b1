package types

// DashboardStats 仪表盘统计.
type DashboardStats struct {
	Projects   int64 `json:"projects"`
	LyricFiles int64 `json:"lyricFiles"`
	AudioFiles int64 `json:"audioFiles"`
}

// HealthResponse 组件健康检查结果.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// CleanupReport 清理任务结果.
type CleanupReport struct {
	OrphanObjects []string `json:"orphanObjects"`
	DanglingFiles int64    `json:"danglingFiles"`
	Errors        int      `json:"errors"`
}
