package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygap/core"
)

func TestSearchReportsVisibilityOverride(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")

	f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)
	f.seedReport(t, company.CompanyID, 2023, core.ReportStatusDraft)

	// A public caller asking for drafts still only sees published reports
	filters := `[{"key": "report_status", "operation": "in", "value": ["Draft"]}]`
	result, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RolePublic)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, core.ReportStatusPublished, result.Reports[0].ReportStatus)
	assert.Equal(t, int64(1), result.Total)

	// An admin caller sees what they asked for
	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, core.ReportStatusDraft, result.Reports[0].ReportStatus)
}

func TestSearchReportsFilterAndSort(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	companyA := f.seedCompany(t, "Acme Forestry")
	companyB := f.seedCompany(t, "Borealis Mining")

	f.seedReport(t, companyA.CompanyID, 2024, core.ReportStatusPublished)
	f.seedReport(t, companyA.CompanyID, 2023, core.ReportStatusPublished)
	f.seedReport(t, companyA.CompanyID, 2021, core.ReportStatusPublished)
	f.seedReport(t, companyB.CompanyID, 2021, core.ReportStatusDraft)

	// Year filter as public: the draft 2021 report stays hidden
	filters := `[{"key": "reporting_year", "operation": "eq", "value": 2021}]`
	result, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RolePublic)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, companyA.CompanyID, result.Reports[0].CompanyID)

	// Ascending year sort across the published set
	sort := `[{"field": "reporting_year", "order": "asc"}]`
	result, err = f.reportSvc.SearchReports(ctx, 0, nil, "", sort, core.RolePublic)
	require.NoError(t, err)
	require.Len(t, result.Reports, 3)
	years := []int{result.Reports[0].ReportingYear, result.Reports[1].ReportingYear, result.Reports[2].ReportingYear}
	assert.Equal(t, []int{2021, 2023, 2024}, years)

	// Substring company-name filter hits the joined companies table
	filters = `[{"key": "company_name", "operation": "like", "value": "borealis"}]`
	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "Borealis Mining", result.Reports[0].CompanyName)
}

func TestSearchReportsPagination(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	f.seedReport(t, company.CompanyID, 2022, core.ReportStatusPublished)
	f.seedReport(t, company.CompanyID, 2023, core.ReportStatusPublished)
	f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)

	result, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), "", "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 1, result.TotalPages)

	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(2), "", "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 2)
	assert.Equal(t, 2, result.TotalPages)

	result, err = f.reportSvc.SearchReports(ctx, 2, intPtr(2), "", "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 1)

	// No limit: one page, limit stays unset in the result
	result, err = f.reportSvc.SearchReports(ctx, 0, nil, "", "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 3)
	assert.Nil(t, result.Limit)
	assert.Equal(t, 1, result.TotalPages)

	// Empty result set has zero pages
	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(10), `[{"key": "reporting_year", "operation": "eq", "value": 1999}]`, "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalPages)
}

func TestSearchReportsBadInput(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	_, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), "{not json", "", core.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "Invalid query parameters", err.Error())
	assert.True(t, core.IsClientFault(err))

	_, err = f.reportSvc.SearchReports(ctx, 0, intPtr(0), "", "", core.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "Invalid limit", err.Error())

	_, err = f.reportSvc.SearchReports(ctx, 0, intPtr(-5), "", "", core.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "Invalid limit", err.Error())
}

func TestWithdrawReport(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	admin := f.seedAdmin(t, "Pat Admin")
	report := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)

	updated, err := f.reportSvc.WithdrawReport(ctx, report.ReportID, admin.GUID)
	require.NoError(t, err)
	assert.Equal(t, core.ReportStatusWithdrawn, updated.ReportStatus)
	require.NotNil(t, updated.AdminModifiedReason)
	assert.Equal(t, core.ReasonWithdraw, *updated.AdminModifiedReason)
	require.NotNil(t, updated.AdminModifiedDate)
	assert.WithinDuration(t, time.Now(), *updated.AdminModifiedDate, 5*time.Second)
	require.NotNil(t, updated.AdminUserID)
	assert.Equal(t, admin.AdminUserID, *updated.AdminUserID)

	// The pre-mutation state was archived before the update
	history, err := f.reports.GetReportHistory(ctx, report.ReportID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.ReportStatusPublished, history[0].ReportStatus)
	assert.Nil(t, history[0].AdminModifiedReason)
}

func TestWithdrawReportPreconditions(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	admin := f.seedAdmin(t, "Pat Admin")

	draft := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusDraft)
	_, err := f.reportSvc.WithdrawReport(ctx, draft.ReportID, admin.GUID)
	require.Error(t, err)
	assert.Equal(t, "Only published reports can be withdrawn", err.Error())
	assert.True(t, core.IsClientFault(err))

	published := f.seedReport(t, company.CompanyID, 2023, core.ReportStatusPublished)
	_, err = f.reportSvc.WithdrawReport(ctx, published.ReportID, "no-such-guid")
	require.Error(t, err)
	assert.Equal(t, "Unknown admin user", err.Error())

	_, err = f.reportSvc.WithdrawReport(ctx, "no-such-report", admin.GUID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestChangeReportLockStatus(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	admin := f.seedAdmin(t, "Pat Admin")
	report := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)

	updated, err := f.reportSvc.ChangeReportLockStatus(ctx, report.ReportID, admin.GUID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsUnlocked)
	require.NotNil(t, updated.AdminModifiedReason)
	assert.Equal(t, core.ReasonUnlock, *updated.AdminModifiedReason)
	require.NotNil(t, updated.ReportUnlockDate)
	assert.WithinDuration(t, time.Now(), *updated.ReportUnlockDate, 5*time.Second)
	require.NotNil(t, updated.AdminModifiedDate)
	assert.WithinDuration(t, time.Now(), *updated.AdminModifiedDate, 5*time.Second)

	updated, err = f.reportSvc.ChangeReportLockStatus(ctx, report.ReportID, admin.GUID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsUnlocked)
	assert.Equal(t, core.ReasonLock, *updated.AdminModifiedReason)

	history, err := f.reports.GetReportHistory(ctx, report.ReportID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestUpdateReportReportingYear(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	admin := f.seedAdmin(t, "Pat Admin")
	report := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)
	f.seedReport(t, company.CompanyID, 2023, core.ReportStatusPublished)
	f.seedReport(t, company.CompanyID, 2021, core.ReportStatusWithdrawn)

	_, err := f.reportSvc.UpdateReportReportingYear(ctx, report.ReportID, admin.GUID, 2024)
	require.Error(t, err)
	assert.Equal(t, "The report is already set to the year 2024.", err.Error())

	_, err = f.reportSvc.UpdateReportReportingYear(ctx, report.ReportID, admin.GUID, 2023)
	require.Error(t, err)
	assert.Equal(t, "A report for the year 2023 already exists for this company.", err.Error())

	// Withdrawn reports do not hold the year
	updated, err := f.reportSvc.UpdateReportReportingYear(ctx, report.ReportID, admin.GUID, 2021)
	require.NoError(t, err)
	assert.Equal(t, 2021, updated.ReportingYear)
	require.NotNil(t, updated.AdminModifiedReason)
	assert.Equal(t, core.ReasonYear, *updated.AdminModifiedReason)

	history, err := f.reports.GetReportHistory(ctx, report.ReportID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2024, history[0].ReportingYear)
}

func TestGetReportStampsAdminAccess(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	report := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)

	got, err := f.reportSvc.GetReport(ctx, report.ReportID)
	require.NoError(t, err)
	require.NotNil(t, got.AdminLastAccessDate)
	assert.WithinDuration(t, time.Now(), *got.AdminLastAccessDate, 5*time.Second)
	assert.Equal(t, report.ReportID, got.ReportID)
	assert.Equal(t, report.ReportingYear, got.ReportingYear)

	stored, err := f.reports.GetReport(ctx, report.ReportID)
	require.NoError(t, err)
	require.NotNil(t, stored.AdminLastAccessDate)
	assert.Equal(t, got.AdminLastAccessDate.Unix(), stored.AdminLastAccessDate.Unix())

	_, err = f.reportSvc.GetReport(ctx, "no-such-report")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The stamped timestamp is visible to the not-null filter
	filters := `[{"key": "admin_last_access_date", "operation": "not", "value": null}]`
	result, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, report.ReportID, result.Reports[0].ReportID)
}

func TestSearchReportsDateBetween(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	company := f.seedCompany(t, "Acme Forestry")
	report := f.seedReport(t, company.CompanyID, 2024, core.ReportStatusPublished)

	lo := report.UpdateDate.Add(-time.Hour).Format(time.RFC3339)
	hi := report.UpdateDate.Add(time.Hour).Format(time.RFC3339)
	filters := fmt.Sprintf(`[{"key": "update_date", "operation": "between", "value": [%q, %q]}]`, lo, hi)
	result, err := f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 1)

	// A window entirely before the row matches nothing
	lo = report.UpdateDate.Add(-3 * time.Hour).Format(time.RFC3339)
	hi = report.UpdateDate.Add(-2 * time.Hour).Format(time.RFC3339)
	filters = fmt.Sprintf(`[{"key": "update_date", "operation": "between", "value": [%q, %q]}]`, lo, hi)
	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, result.Reports)

	// An empty window places no restriction
	filters = `[{"key": "update_date", "operation": "between", "value": []}]`
	result, err = f.reportSvc.SearchReports(ctx, 0, intPtr(10), filters, "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 1)
}
