package domain

import "time"

type BadgeType string

const BadgeTypeMonthWinner BadgeType = "MONTH_WINNER"

// Badge is at most one per (group, type, period start).
type Badge struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	UserID      string    `json:"user_id"`
	BadgeType   BadgeType `json:"badge_type"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name,omitempty"`
}

// LeaderboardEntry is one member's approved count in a period.
type LeaderboardEntry struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Role   MemberRole `json:"role"`
	Count  int        `json:"count"`
}
