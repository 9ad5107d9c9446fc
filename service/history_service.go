package service

import (
	"context"
	"errors"
	"sort"

	"paygap/core"
	"paygap/storage"
)

// displayName resolves an admin user ID to a display name through the
// LRU cache, falling back to the raw ID when the account is gone
func (s *ReportService) displayName(ctx context.Context, adminUserID string) string {
	if name, ok := s.displayNames.Get(adminUserID); ok {
		return name
	}
	admin, err := s.admins.GetAdminUserByID(ctx, adminUserID)
	if err != nil {
		if !errors.Is(err, storage.ErrAdminUserNotFound) {
			s.logger.Warnw("Failed to resolve admin display name", "admin_user_id", adminUserID, "error", err)
		}
		return adminUserID
	}
	s.displayNames.Add(adminUserID, admin.DisplayName)
	return admin.DisplayName
}

// ReportActionHistory reconstructs the admin action timeline for a report.
// Each history row is a pre-mutation snapshot, so a snapshot's admin fields
// describe the mutation before the one that produced it; the mutation most
// recently applied lives on the report row itself. Rows with no admin
// fields carry no action and are dropped.
func (s *ReportService) ReportActionHistory(ctx context.Context, reportID string) ([]core.ActionHistoryEntry, error) {
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	entries := []core.ActionHistoryEntry{}

	if report.AdminModifiedDate != nil && report.AdminModifiedReason != nil &&
		report.AdminModifiedDate.After(report.UpdateDate) {
		entry := core.ActionHistoryEntry{
			ReportHistoryID:   nil,
			Action:            string(*report.AdminModifiedReason),
			AdminModifiedDate: *report.AdminModifiedDate,
		}
		if report.AdminUserID != nil {
			entry.AdminUserDisplayName = s.displayName(ctx, *report.AdminUserID)
		}
		entries = append(entries, entry)
	}

	rows, err := s.reports.GetReportHistory(ctx, reportID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.AdminModifiedReason == nil || row.AdminModifiedDate == nil {
			continue
		}
		id := row.ReportHistoryID
		entry := core.ActionHistoryEntry{
			ReportHistoryID:   &id,
			Action:            string(*row.AdminModifiedReason),
			AdminModifiedDate: *row.AdminModifiedDate,
		}
		if row.AdminUserID != nil {
			entry.AdminUserDisplayName = s.displayName(ctx, *row.AdminUserID)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AdminModifiedDate.After(entries[j].AdminModifiedDate)
	})
	return entries, nil
}
