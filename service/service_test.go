package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paygap/core"
	"paygap/storage"
)

type testFixture struct {
	reports       *storage.SQLiteReportStorage
	admins        *storage.SQLiteAdminUserStorage
	announcements *storage.SQLiteAnnouncementStorage

	reportSvc       *ReportService
	announcementSvc *AnnouncementService
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	logger := zap.NewNop().Sugar()

	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "paygap.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner, err := storage.NewMigrationRunner(db.WriteDB, logger)
	require.NoError(t, err)
	storage.RegisterMigrations(runner)
	require.NoError(t, runner.Run())

	reports := storage.NewSQLiteReportStorage(db, logger)
	admins := storage.NewSQLiteAdminUserStorage(db, logger)
	announcements := storage.NewSQLiteAnnouncementStorage(db, logger)

	reportSvc, err := NewReportService(reports, admins, logger)
	require.NoError(t, err)

	return &testFixture{
		reports:         reports,
		admins:          admins,
		announcements:   announcements,
		reportSvc:       reportSvc,
		announcementSvc: NewAnnouncementService(announcements, nil, logger),
	}
}

func (f *testFixture) seedCompany(t *testing.T, name string) *core.Company {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	company := &core.Company{
		CompanyID:   uuid.NewString(),
		CompanyName: name,
		CreateDate:  now,
		UpdateDate:  now,
	}
	require.NoError(t, f.admins.CreateCompany(context.Background(), company))
	return company
}

func (f *testFixture) seedAdmin(t *testing.T, displayName string) *core.AdminUser {
	t.Helper()
	admin := &core.AdminUser{
		AdminUserID: uuid.NewString(),
		GUID:        uuid.NewString(),
		Username:    displayName,
		DisplayName: displayName,
		IsActive:    true,
		CreateDate:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, f.admins.CreateAdminUser(context.Background(), admin))
	return admin
}

func (f *testFixture) seedReport(t *testing.T, companyID string, year int, status core.ReportStatus) *core.Report {
	t.Helper()
	created := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	report := &core.Report{
		ReportID:             uuid.NewString(),
		CompanyID:            companyID,
		NaicsCode:            "11",
		EmployeeCountRangeID: "50-299",
		ReportingYear:        year,
		ReportStatus:         status,
		IsUnlocked:           false,
		CreateDate:           created,
		UpdateDate:           created,
	}
	require.NoError(t, f.reports.CreateReport(context.Background(), report))
	return report
}

func (f *testFixture) seedAnnouncement(t *testing.T, title string, status core.AnnouncementStatus, expiresOn *time.Time) *core.Announcement {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	a := &core.Announcement{
		AnnouncementID: uuid.NewString(),
		Title:          title,
		Description:    "seeded",
		Status:         status,
		ExpiresOn:      expiresOn,
		CreatedDate:    now,
		UpdatedDate:    now,
	}
	if status == core.AnnouncementStatusPublished {
		a.PublishedOn = &now
	}
	require.NoError(t, f.announcements.CreateAnnouncement(context.Background(), a))
	return a
}

func intPtr(v int) *int { return &v }
