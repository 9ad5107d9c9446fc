package core

import "time"

// ReportStatus represents the lifecycle status of a pay transparency report
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "Draft"
	ReportStatusPublished ReportStatus = "Published"
	ReportStatusWithdrawn ReportStatus = "Withdrawn"
)

// AdminModifiedReason records why an admin last modified a report.
// It drives which mutations take a history snapshot.
type AdminModifiedReason string

const (
	ReasonYear     AdminModifiedReason = "YEAR"
	ReasonLock     AdminModifiedReason = "LOCK"
	ReasonUnlock   AdminModifiedReason = "UNLOCK"
	ReasonWithdraw AdminModifiedReason = "WITHDRAW"
)

// ValidReportTransitions defines the report state machine.
// Withdrawn is terminal and reachable only from Published.
var ValidReportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusDraft:     {ReportStatusPublished},
	ReportStatusPublished: {ReportStatusDraft, ReportStatusWithdrawn},
}

// Report represents an employer pay transparency report.
// JSON field names are part of the wire contract and must not change.
type Report struct {
	ReportID             string               `json:"report_id"`
	CompanyID            string               `json:"company_id"`
	CompanyName          string               `json:"company_name"`
	NaicsCode            string               `json:"naics_code"`
	EmployeeCountRangeID string               `json:"employee_count_range_id"`
	ReportingYear        int                  `json:"reporting_year"`
	ReportStatus         ReportStatus         `json:"report_status"`
	IsUnlocked           bool                 `json:"is_unlocked"`
	ReportUnlockDate     *time.Time           `json:"report_unlock_date,omitempty"`
	AdminModifiedReason  *AdminModifiedReason `json:"admin_modified_reason"`
	AdminModifiedDate    *time.Time           `json:"admin_modified_date"`
	AdminUserID          *string              `json:"admin_user_id"`
	AdminLastAccessDate  *time.Time           `json:"admin_last_access_date"`
	CreateDate           time.Time            `json:"create_date"`
	UpdateDate           time.Time            `json:"update_date"`
}

// ReportHistory is an immutable snapshot of a report taken immediately
// before a qualifying admin mutation. History rows are never updated.
type ReportHistory struct {
	ReportHistoryID     string               `json:"report_history_id"`
	ReportID            string               `json:"report_id"`
	CompanyID           string               `json:"company_id"`
	ReportingYear       int                  `json:"reporting_year"`
	ReportStatus        ReportStatus         `json:"report_status"`
	IsUnlocked          bool                 `json:"is_unlocked"`
	AdminModifiedReason *AdminModifiedReason `json:"admin_modified_reason"`
	AdminModifiedDate   *time.Time           `json:"admin_modified_date"`
	AdminUserID         *string              `json:"admin_user_id"`
	CreateDate          time.Time            `json:"create_date"`
	UpdateDate          time.Time            `json:"update_date"`
}

// ActionHistoryEntry is one row in the merged admin action timeline for a
// report. The current-state entry carries a nil ReportHistoryID to
// distinguish it from persisted history rows.
type ActionHistoryEntry struct {
	ReportHistoryID      *string   `json:"report_history_id"`
	Action               string    `json:"action"`
	AdminModifiedDate    time.Time `json:"admin_modified_date"`
	AdminUserDisplayName string    `json:"admin_user_display_name"`
}
