package storage

import (
	"context"
	"time"

	"paygap/core"
	"paygap/search"
)

// ReportStore is the report persistence contract consumed by the service
// layer
type ReportStore interface {
	GetReport(ctx context.Context, reportID string) (*core.Report, error)
	SearchReports(ctx context.Context, predicate *search.Predicate, orderBy string, offset int, limit *int) ([]core.Report, int64, error)
	HasReportForYear(ctx context.Context, companyID string, year int, excludeReportID string) (bool, error)
	ApplyAdminMutation(ctx context.Context, updated *core.Report, snapshot *core.ReportHistory) error
	GetReportHistory(ctx context.Context, reportID string) ([]core.ReportHistory, error)
	TouchAdminLastAccess(ctx context.Context, reportID string, when time.Time) error
}

// AnnouncementStore is the announcement persistence contract
type AnnouncementStore interface {
	GetAnnouncement(ctx context.Context, id string) (*core.Announcement, error)
	SearchAnnouncements(ctx context.Context, predicate *search.Predicate, orderBy string, offset int, limit *int) ([]core.Announcement, int64, error)
	CreateAnnouncement(ctx context.Context, a *core.Announcement) error
	UpdateAnnouncement(ctx context.Context, a *core.Announcement) error
	PatchStatuses(ctx context.Context, patches []core.AnnouncementStatusPatch, actor string, now time.Time) error
	ExpirePublished(ctx context.Context, now time.Time) (int64, error)
}

// AdminUserStore is the admin identity persistence contract
type AdminUserStore interface {
	GetAdminUserByGUID(ctx context.Context, guid string) (*core.AdminUser, error)
	GetAdminUserByUsername(ctx context.Context, username string) (*core.AdminUser, error)
	GetAdminUserByID(ctx context.Context, id string) (*core.AdminUser, error)
	CreateAdminUser(ctx context.Context, u *core.AdminUser) error
}

var (
	_ ReportStore       = (*SQLiteReportStorage)(nil)
	_ AnnouncementStore = (*SQLiteAnnouncementStorage)(nil)
	_ AdminUserStore    = (*SQLiteAdminUserStorage)(nil)
)
