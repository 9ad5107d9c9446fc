package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"paygap/core"
	"paygap/metrics"
	"paygap/search"
	"paygap/storage"
)

// ReportSearchResult is the wire envelope for report searches
type ReportSearchResult struct {
	Reports    []core.Report `json:"reports"`
	Total      int64         `json:"total"`
	Offset     int           `json:"offset"`
	Limit      *int          `json:"limit,omitempty"`
	TotalPages int           `json:"totalPages"`
}

// ReportService is the search orchestrator and status transition engine
// for reports
type ReportService struct {
	reports      storage.ReportStore
	admins       storage.AdminUserStore
	displayNames *lru.Cache[string, string]
	logger       *zap.SugaredLogger
}

// NewReportService creates the report service
func NewReportService(reports storage.ReportStore, admins storage.AdminUserStore, logger *zap.SugaredLogger) (*ReportService, error) {
	displayNames, err := lru.New[string, string](256)
	if err != nil {
		return nil, err
	}
	return &ReportService{
		reports:      reports,
		admins:       admins,
		displayNames: displayNames,
		logger:       logger,
	}, nil
}

// SearchReports validates and translates the wire filter/sort parameters,
// applies the caller's visibility policy, and runs the paginated query
func (s *ReportService) SearchReports(ctx context.Context, offset int, limit *int, filterJSON, sortJSON string, role core.Role) (*ReportSearchResult, error) {
	offset, err := checkPage(offset, limit)
	if err != nil {
		return nil, err
	}
	predicate, orderBy, err := buildPredicate(search.ReportSchema, role, filterJSON, sortJSON)
	if err != nil {
		return nil, err
	}

	reports, total, err := s.reports.SearchReports(ctx, predicate, orderBy, offset, limit)
	if err != nil {
		return nil, err
	}

	metrics.SearchesExecuted.WithLabelValues("report").Inc()

	return &ReportSearchResult{
		Reports:    reports,
		Total:      total,
		Offset:     offset,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetReport loads one report for the admin portal and stamps the admin
// view timestamp
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*core.Report, error) {
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.reports.TouchAdminLastAccess(ctx, reportID, now); err != nil {
		return nil, err
	}
	report.AdminLastAccessDate = &now
	return report, nil
}

// resolveAdmin maps a directory GUID to an admin account, failing as a
// client fault when the identity does not resolve
func (s *ReportService) resolveAdmin(ctx context.Context, adminGUID string) (*core.AdminUser, error) {
	admin, err := s.admins.GetAdminUserByGUID(ctx, adminGUID)
	if err != nil {
		if errors.Is(err, storage.ErrAdminUserNotFound) {
			return nil, core.NewUserInputError("Unknown admin user")
		}
		return nil, err
	}
	return admin, nil
}

// snapshotOf copies a report's mutation-relevant fields into an immutable
// history row, taken before the mutation is applied
func snapshotOf(report *core.Report) *core.ReportHistory {
	return &core.ReportHistory{
		ReportHistoryID:     uuid.NewString(),
		ReportID:            report.ReportID,
		CompanyID:           report.CompanyID,
		ReportingYear:       report.ReportingYear,
		ReportStatus:        report.ReportStatus,
		IsUnlocked:          report.IsUnlocked,
		AdminModifiedReason: report.AdminModifiedReason,
		AdminModifiedDate:   report.AdminModifiedDate,
		AdminUserID:         report.AdminUserID,
		CreateDate:          report.CreateDate,
		UpdateDate:          report.UpdateDate,
	}
}

// WithdrawReport moves a published report to Withdrawn. Withdrawn is
// terminal; only published reports can be withdrawn.
func (s *ReportService) WithdrawReport(ctx context.Context, reportID, adminGUID string) (*core.Report, error) {
	admin, err := s.resolveAdmin(ctx, adminGUID)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if report.ReportStatus != core.ReportStatusPublished {
		return nil, core.NewUserInputError("Only published reports can be withdrawn")
	}

	now := time.Now().UTC()
	reason := core.ReasonWithdraw
	updated := *report
	updated.ReportStatus = core.ReportStatusWithdrawn
	updated.AdminModifiedReason = &reason
	updated.AdminModifiedDate = &now
	updated.AdminUserID = &admin.AdminUserID

	if err := s.applyMutation(ctx, &updated, snapshotOf(report), reason); err != nil {
		return nil, err
	}
	return s.reports.GetReport(ctx, reportID)
}

// ChangeReportLockStatus locks or unlocks a report for employer edits,
// stamping the unlock and modification timestamps to the current time
func (s *ReportService) ChangeReportLockStatus(ctx context.Context, reportID, adminGUID string, makeUnlocked bool) (*core.Report, error) {
	admin, err := s.resolveAdmin(ctx, adminGUID)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	reason := core.ReasonLock
	if makeUnlocked {
		reason = core.ReasonUnlock
	}
	updated := *report
	updated.IsUnlocked = makeUnlocked
	updated.ReportUnlockDate = &now
	updated.AdminModifiedReason = &reason
	updated.AdminModifiedDate = &now
	updated.AdminUserID = &admin.AdminUserID

	if err := s.applyMutation(ctx, &updated, snapshotOf(report), reason); err != nil {
		return nil, err
	}
	return s.reports.GetReport(ctx, reportID)
}

// UpdateReportReportingYear corrects a report's reporting year, enforcing
// one report per company per year
func (s *ReportService) UpdateReportReportingYear(ctx context.Context, reportID, adminGUID string, newYear int) (*core.Report, error) {
	admin, err := s.resolveAdmin(ctx, adminGUID)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if report.ReportingYear == newYear {
		return nil, core.NewUserInputError(
			fmt.Sprintf("The report is already set to the year %d.", newYear))
	}
	taken, err := s.reports.HasReportForYear(ctx, report.CompanyID, newYear, reportID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.NewUserInputError(
			fmt.Sprintf("A report for the year %d already exists for this company.", newYear))
	}

	now := time.Now().UTC()
	reason := core.ReasonYear
	updated := *report
	updated.ReportingYear = newYear
	updated.AdminModifiedReason = &reason
	updated.AdminModifiedDate = &now
	updated.AdminUserID = &admin.AdminUserID

	if err := s.applyMutation(ctx, &updated, snapshotOf(report), reason); err != nil {
		return nil, err
	}
	return s.reports.GetReport(ctx, reportID)
}

func (s *ReportService) applyMutation(ctx context.Context, updated *core.Report, snapshot *core.ReportHistory, reason core.AdminModifiedReason) error {
	if err := s.reports.ApplyAdminMutation(ctx, updated, snapshot); err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return core.ErrNotFound
		}
		return err
	}
	metrics.TransitionsApplied.WithLabelValues("report", string(reason)).Inc()
	return nil
}
