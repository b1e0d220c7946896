package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dashboard struct {
	ActiveMembers        int             `json:"active_members"`
	TrialMembers         int             `json:"trial_members"`
	PastDueMembers       int             `json:"past_due_members"`
	RevenueThisMonth     decimal.Decimal `json:"revenue_this_month"`
	PendingTransfers     int             `json:"pending_transfers"`
	AttendanceLast30Days int             `json:"attendance_last_30_days"`
	UpcomingInstances    int             `json:"upcoming_instances"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
