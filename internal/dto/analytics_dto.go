package dto

import (
	"time"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
)

// AdminAnalyticsResponse aggregates programme-wide metrics for administrators.
type AdminAnalyticsResponse struct {
	TotalFreshers          int64            `json:"total_freshers"`
	ActiveFreshers         int64            `json:"active_freshers"`
	Quiz                   analytics.Stats  `json:"quiz"`
	RecentQuiz             analytics.Stats  `json:"recent_quiz"`
	RecentWindowDays       int              `json:"recent_window_days"`
	DepartmentDistribution map[string]int64 `json:"department_distribution"`
	StatusDistribution     map[string]int64 `json:"status_distribution"`
	GeneratedAt            time.Time        `json:"generated_at"`
	CacheHit               bool             `json:"cache_hit"`
}

// FresherDashboardResponse is the payload of the fresher landing page.
type FresherDashboardResponse struct {
	Profile        FresherResponse       `json:"profile"`
	Stats          analytics.Stats       `json:"stats"`
	RecentAttempts []QuizAttemptResponse `json:"recent_attempts"`
	GeneratedAt    time.Time             `json:"generated_at"`
	CacheHit       bool                  `json:"cache_hit"`
}
