package storage

import (
	"context"
	"database/sql"
	"fmt"

	"paygap/core"
)

// insertHistoryTx archives a pre-mutation report snapshot inside the
// mutation's transaction. History rows are immutable once written.
func insertHistoryTx(tx *sql.Tx, snapshot *core.ReportHistory) error {
	var reason sql.NullString
	if snapshot.AdminModifiedReason != nil {
		reason = sql.NullString{String: string(*snapshot.AdminModifiedReason), Valid: true}
	}
	_, err := tx.Exec(`
		INSERT INTO report_history (
			report_history_id, report_id, company_id, reporting_year,
			report_status, is_unlocked, admin_modified_reason,
			admin_modified_date, admin_user_id, create_date, update_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snapshot.ReportHistoryID,
		snapshot.ReportID,
		snapshot.CompanyID,
		snapshot.ReportingYear,
		string(snapshot.ReportStatus),
		boolToInt(snapshot.IsUnlocked),
		reason,
		formatNullableTime(snapshot.AdminModifiedDate),
		nullableString(snapshot.AdminUserID),
		formatTime(snapshot.CreateDate),
		formatTime(snapshot.UpdateDate),
	)
	if err != nil {
		return fmt.Errorf("failed to archive report snapshot: %w", err)
	}
	return nil
}

// GetReportHistory retrieves all snapshots for a report, newest first
func (s *SQLiteReportStorage) GetReportHistory(ctx context.Context, reportID string) ([]core.ReportHistory, error) {
	query := `
		SELECT report_history_id, report_id, company_id, reporting_year,
		       report_status, is_unlocked, admin_modified_reason,
		       admin_modified_date, admin_user_id, create_date, update_date
		FROM report_history
		WHERE report_id = ?
		ORDER BY admin_modified_date DESC
	`
	rows, err := s.sqlite.ReadDB.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report history: %w", err)
	}
	defer rows.Close()

	var snapshots []core.ReportHistory
	for rows.Next() {
		var h core.ReportHistory
		var isUnlocked int
		var reason, modifiedDate, adminUserID sql.NullString
		var createDate, updateDate string

		err := rows.Scan(
			&h.ReportHistoryID,
			&h.ReportID,
			&h.CompanyID,
			&h.ReportingYear,
			&h.ReportStatus,
			&isUnlocked,
			&reason,
			&modifiedDate,
			&adminUserID,
			&createDate,
			&updateDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		h.IsUnlocked = isUnlocked != 0
		if reason.Valid {
			mr := core.AdminModifiedReason(reason.String)
			h.AdminModifiedReason = &mr
		}
		h.AdminModifiedDate = parseNullableTime(modifiedDate)
		h.AdminUserID = stringPtr(adminUserID)
		h.CreateDate = parseTime(createDate)
		h.UpdateDate = parseTime(updateDate)
		snapshots = append(snapshots, h)
	}
	return snapshots, rows.Err()
}
