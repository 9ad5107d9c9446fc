package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paygap/core"
	"paygap/search"
)

// SQLiteReportStorage handles report persistence, including the admin
// search and the snapshot-then-update mutation path
type SQLiteReportStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteReportStorage creates report storage
func NewSQLiteReportStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteReportStorage {
	return &SQLiteReportStorage{sqlite: sqlite, logger: logger}
}

// reportColumns is the select list shared by every report query. Reports
// are always read through the companies join so company_name is available
// for filtering, sorting, and the wire payload.
const reportColumns = `r.report_id, r.company_id, c.company_name, r.naics_code,
	r.employee_count_range_id, r.reporting_year, r.report_status, r.is_unlocked,
	r.report_unlock_date, r.admin_modified_reason, r.admin_modified_date,
	r.admin_user_id, r.admin_last_access_date, r.create_date, r.update_date`

const reportFrom = `FROM reports r JOIN companies c ON c.company_id = r.company_id`

func scanReport(row interface{ Scan(...interface{}) error }) (*core.Report, error) {
	var r core.Report
	var isUnlocked int
	var unlockDate, reason, modifiedDate, adminUserID, lastAccess sql.NullString
	var createDate, updateDate string

	err := row.Scan(
		&r.ReportID,
		&r.CompanyID,
		&r.CompanyName,
		&r.NaicsCode,
		&r.EmployeeCountRangeID,
		&r.ReportingYear,
		&r.ReportStatus,
		&isUnlocked,
		&unlockDate,
		&reason,
		&modifiedDate,
		&adminUserID,
		&lastAccess,
		&createDate,
		&updateDate,
	)
	if err != nil {
		return nil, err
	}

	r.IsUnlocked = isUnlocked != 0
	r.ReportUnlockDate = parseNullableTime(unlockDate)
	if reason.Valid {
		mr := core.AdminModifiedReason(reason.String)
		r.AdminModifiedReason = &mr
	}
	r.AdminModifiedDate = parseNullableTime(modifiedDate)
	r.AdminUserID = stringPtr(adminUserID)
	r.AdminLastAccessDate = parseNullableTime(lastAccess)
	r.CreateDate = parseTime(createDate)
	r.UpdateDate = parseTime(updateDate)
	return &r, nil
}

// GetReport retrieves a single report with its company name
func (s *SQLiteReportStorage) GetReport(ctx context.Context, reportID string) (*core.Report, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.report_id = ?", reportColumns, reportFrom)
	report, err := scanReport(s.sqlite.ReadDB.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// SearchReports runs the count and data queries for a translated predicate.
// A nil limit means no page-size restriction.
func (s *SQLiteReportStorage) SearchReports(ctx context.Context, predicate *search.Predicate, orderBy string, offset int, limit *int) ([]core.Report, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	where := predicate.WhereClause()

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", reportFrom, where)
	var total int64
	if err := s.sqlite.ReadDB.QueryRowContext(ctx, countQuery, predicate.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query := fmt.Sprintf("SELECT %s %s %s %s", reportColumns, reportFrom, where, orderBy)
	args := append([]interface{}{}, predicate.Args...)
	if limit != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, *limit, offset)
	} else if offset > 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded
		query += " LIMIT -1 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := s.sqlite.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search reports: %w", err)
	}
	defer rows.Close()

	reports := []core.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, total, rows.Err()
}

// HasReportForYear reports whether the company already owns a live
// (non-withdrawn) report for the year, excluding the given report
func (s *SQLiteReportStorage) HasReportForYear(ctx context.Context, companyID string, year int, excludeReportID string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM reports
		WHERE company_id = ? AND reporting_year = ? AND report_id != ?
		  AND report_status != ?
	`
	var count int64
	err := s.sqlite.ReadDB.QueryRowContext(ctx, query,
		companyID, year, excludeReportID, string(core.ReportStatusWithdrawn)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reporting year: %w", err)
	}
	return count > 0, nil
}

// CreateReport inserts a new report row
func (s *SQLiteReportStorage) CreateReport(ctx context.Context, r *core.Report) error {
	query := `
		INSERT INTO reports (
			report_id, company_id, naics_code, employee_count_range_id,
			reporting_year, report_status, is_unlocked, report_unlock_date,
			admin_modified_reason, admin_modified_date, admin_user_id,
			admin_last_access_date, create_date, update_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var reason sql.NullString
	if r.AdminModifiedReason != nil {
		reason = sql.NullString{String: string(*r.AdminModifiedReason), Valid: true}
	}
	_, err := s.sqlite.WriteDB.ExecContext(ctx, query,
		r.ReportID,
		r.CompanyID,
		r.NaicsCode,
		r.EmployeeCountRangeID,
		r.ReportingYear,
		string(r.ReportStatus),
		boolToInt(r.IsUnlocked),
		formatNullableTime(r.ReportUnlockDate),
		reason,
		formatNullableTime(r.AdminModifiedDate),
		nullableString(r.AdminUserID),
		formatNullableTime(r.AdminLastAccessDate),
		formatTime(r.CreateDate),
		formatTime(r.UpdateDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// TouchAdminLastAccess stamps the admin view timestamp on a report
func (s *SQLiteReportStorage) TouchAdminLastAccess(ctx context.Context, reportID string, when time.Time) error {
	result, err := s.sqlite.WriteDB.ExecContext(ctx,
		"UPDATE reports SET admin_last_access_date = ? WHERE report_id = ?",
		formatTime(when), reportID)
	if err != nil {
		return fmt.Errorf("failed to stamp admin access: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ApplyAdminMutation archives the pre-mutation state and applies the
// update as one transaction. A concurrent reader never observes the update
// without its history row; failure of either half rolls back both.
func (s *SQLiteReportStorage) ApplyAdminMutation(ctx context.Context, updated *core.Report, snapshot *core.ReportHistory) error {
	tx, err := s.sqlite.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin mutation: %w", err)
	}
	defer tx.Rollback()

	if err := insertHistoryTx(tx, snapshot); err != nil {
		return err
	}

	var reason sql.NullString
	if updated.AdminModifiedReason != nil {
		reason = sql.NullString{String: string(*updated.AdminModifiedReason), Valid: true}
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE reports SET
			reporting_year = ?,
			report_status = ?,
			is_unlocked = ?,
			report_unlock_date = ?,
			admin_modified_reason = ?,
			admin_modified_date = ?,
			admin_user_id = ?
		WHERE report_id = ?
	`,
		updated.ReportingYear,
		string(updated.ReportStatus),
		boolToInt(updated.IsUnlocked),
		formatNullableTime(updated.ReportUnlockDate),
		reason,
		formatNullableTime(updated.AdminModifiedDate),
		nullableString(updated.AdminUserID),
		updated.ReportID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mutation: %w", err)
	}

	s.logger.Infow("Admin mutation applied",
		"report_id", updated.ReportID,
		"reason", reason.String,
	)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
