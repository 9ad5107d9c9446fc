package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygap/core"
)

func TestCreateAnnouncement(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	activeOn := time.Now().UTC().Truncate(time.Second)
	expiresOn := activeOn.Add(30 * 24 * time.Hour)
	input := &AnnouncementInput{
		Title:       "Reporting deadline extended",
		Description: "The deadline for 2024 submissions has moved.",
		Status:      "PUBLISHED",
		ActiveOn:    &activeOn,
		ExpiresOn:   &expiresOn,
		Resources: []ResourceInput{
			{ResourceType: "LINK", DisplayName: "Guidance", ResourceURL: "https://example.org/guidance"},
		},
	}

	created, err := f.announcementSvc.CreateAnnouncement(ctx, input, "pat")
	require.NoError(t, err)
	assert.NotEmpty(t, created.AnnouncementID)
	assert.Equal(t, core.AnnouncementStatusPublished, created.Status)
	require.NotNil(t, created.PublishedOn)
	require.Len(t, created.Resources, 1)
	assert.Equal(t, core.ResourceTypeLink, created.Resources[0].ResourceType)
	assert.Equal(t, "https://example.org/guidance", created.Resources[0].ResourceURL)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "pat", *created.CreatedBy)
}

func TestCreateAnnouncementValidation(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	_, err := f.announcementSvc.CreateAnnouncement(ctx, &AnnouncementInput{
		Status: "DRAFT",
	}, "pat")
	require.Error(t, err)
	assert.True(t, core.IsClientFault(err))

	_, err = f.announcementSvc.CreateAnnouncement(ctx, &AnnouncementInput{
		Title:  "Bad status",
		Status: "ARCHIVED",
	}, "pat")
	require.Error(t, err)
	assert.True(t, core.IsClientFault(err))

	activeOn := time.Now().UTC()
	expiresOn := activeOn.Add(-time.Hour)
	_, err = f.announcementSvc.CreateAnnouncement(ctx, &AnnouncementInput{
		Title:     "Backwards window",
		Status:    "DRAFT",
		ActiveOn:  &activeOn,
		ExpiresOn: &expiresOn,
	}, "pat")
	require.Error(t, err)
	assert.Equal(t, "expires_on must be after active_on", err.Error())
}

func TestUpdateAnnouncement(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	seeded := f.seedAnnouncement(t, "Maintenance window", core.AnnouncementStatusDraft, nil)

	updated, err := f.announcementSvc.UpdateAnnouncement(ctx, seeded.AnnouncementID, &AnnouncementInput{
		Title:  "Maintenance window",
		Status: "PUBLISHED",
	}, "pat")
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedOn)
	assert.WithinDuration(t, time.Now(), *updated.PublishedOn, 5*time.Second)

	_, err = f.announcementSvc.UpdateAnnouncement(ctx, "no-such-id", &AnnouncementInput{
		Title:  "Ghost",
		Status: "DRAFT",
	}, "pat")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateAnnouncementIllegalTransition(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	seeded := f.seedAnnouncement(t, "Old notice", core.AnnouncementStatusExpired, nil)

	// EXPIRED can only move to ARCHIVED, which the payload cannot carry
	_, err := f.announcementSvc.UpdateAnnouncement(ctx, seeded.AnnouncementID, &AnnouncementInput{
		Title:  "Old notice",
		Status: "PUBLISHED",
	}, "pat")
	require.Error(t, err)
	assert.True(t, core.IsClientFault(err))
	assert.Contains(t, err.Error(), "EXPIRED to PUBLISHED")
}

func TestPatchAnnouncements(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	a := f.seedAnnouncement(t, "First", core.AnnouncementStatusDraft, nil)
	b := f.seedAnnouncement(t, "Second", core.AnnouncementStatusPublished, nil)

	err := f.announcementSvc.PatchAnnouncements(ctx, []core.AnnouncementStatusPatch{
		{ID: a.AnnouncementID, Status: core.AnnouncementStatusPublished},
		{ID: b.AnnouncementID, Status: core.AnnouncementStatusArchived},
	}, "pat", core.RoleAdmin)
	require.NoError(t, err)

	got, err := f.announcements.GetAnnouncement(ctx, a.AnnouncementID)
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusPublished, got.Status)
	require.NotNil(t, got.PublishedOn)

	got, err = f.announcements.GetAnnouncement(ctx, b.AnnouncementID)
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusArchived, got.Status)
}

func TestPatchAnnouncementsAllOrNothing(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	a := f.seedAnnouncement(t, "First", core.AnnouncementStatusDraft, nil)
	b := f.seedAnnouncement(t, "Second", core.AnnouncementStatusDraft, nil)

	// DRAFT cannot move to EXPIRED; the whole batch must roll back
	err := f.announcementSvc.PatchAnnouncements(ctx, []core.AnnouncementStatusPatch{
		{ID: a.AnnouncementID, Status: core.AnnouncementStatusPublished},
		{ID: b.AnnouncementID, Status: core.AnnouncementStatusExpired},
	}, "pat", core.RoleAdmin)
	require.Error(t, err)
	assert.True(t, core.IsClientFault(err))

	got, err := f.announcements.GetAnnouncement(ctx, a.AnnouncementID)
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusDraft, got.Status)
}

func TestPatchAnnouncementsRoleGuard(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	a := f.seedAnnouncement(t, "First", core.AnnouncementStatusPublished, nil)

	err := f.announcementSvc.PatchAnnouncements(ctx, []core.AnnouncementStatusPatch{
		{ID: a.AnnouncementID, Status: core.AnnouncementStatusArchived},
	}, "someone", core.RolePublic)
	require.Error(t, err)
	assert.Equal(t, "Status ARCHIVED requires admin access", err.Error())

	err = f.announcementSvc.PatchAnnouncements(ctx, []core.AnnouncementStatusPatch{
		{ID: a.AnnouncementID, Status: "BOGUS"},
	}, "pat", core.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "Invalid announcement status 'BOGUS'", err.Error())

	err = f.announcementSvc.PatchAnnouncements(ctx, nil, "pat", core.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "No status changes supplied", err.Error())
}

func TestSearchAnnouncementsVisibility(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	f.seedAnnouncement(t, "Live", core.AnnouncementStatusPublished, nil)
	f.seedAnnouncement(t, "Hidden draft", core.AnnouncementStatusDraft, nil)
	f.seedAnnouncement(t, "Hidden archive", core.AnnouncementStatusArchived, nil)

	// Public callers only ever see published items
	filters := `[{"key": "status", "operation": "in", "value": ["DRAFT", "ARCHIVED"]}]`
	result, err := f.announcementSvc.SearchAnnouncements(ctx, 0, intPtr(10), filters, "", core.RolePublic)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Live", result.Items[0].Title)
	assert.Equal(t, 1, result.TotalPages)

	result, err = f.announcementSvc.SearchAnnouncements(ctx, 0, intPtr(10), "", "", core.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)

	// Title substring filter
	filters = `[{"key": "title", "operation": "like", "value": "hidden"}]`
	sort := `[{"key": "title", "order": "asc"}]`
	result, err = f.announcementSvc.SearchAnnouncements(ctx, 0, intPtr(10), filters, sort, core.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Hidden archive", result.Items[0].Title)
}

func TestExpireAnnouncements(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	future := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	expired := f.seedAnnouncement(t, "Stale", core.AnnouncementStatusPublished, &past)
	fresh := f.seedAnnouncement(t, "Fresh", core.AnnouncementStatusPublished, &future)

	count, err := f.announcementSvc.ExpireAnnouncements(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := f.announcements.GetAnnouncement(ctx, expired.AnnouncementID)
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusExpired, got.Status)

	got, err = f.announcements.GetAnnouncement(ctx, fresh.AnnouncementID)
	require.NoError(t, err)
	assert.Equal(t, core.AnnouncementStatusPublished, got.Status)
}
