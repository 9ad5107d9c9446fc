package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"paygap/cache"
	"paygap/core"
	"paygap/metrics"
	"paygap/search"
	"paygap/storage"
)

// AnnouncementSearchResult is the wire envelope for announcement searches
type AnnouncementSearchResult struct {
	Items      []core.Announcement `json:"items"`
	Total      int64               `json:"total"`
	Offset     int                 `json:"offset"`
	Limit      *int                `json:"limit,omitempty"`
	TotalPages int                 `json:"totalPages"`
}

// ResourceInput is one link or attachment in an announcement payload
type ResourceInput struct {
	ResourceType string `json:"resource_type" validate:"required,oneof=LINK ATTACHMENT"`
	DisplayName  string `json:"display_name" validate:"required,max=100"`
	ResourceURL  string `json:"resource_url" validate:"required_if=ResourceType LINK,omitempty,url,max=500"`
	AttachmentID string `json:"attachment_file_id" validate:"required_if=ResourceType ATTACHMENT,omitempty,uuid"`
}

// AnnouncementInput is the create/update payload for announcements
type AnnouncementInput struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Status      string          `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
	ActiveOn    *time.Time      `json:"active_on"`
	ExpiresOn   *time.Time      `json:"expires_on"`
	Resources   []ResourceInput `json:"announcement_resource" validate:"dive"`
}

// AnnouncementService manages announcement search, create/update, bulk
// status changes, and expiry
type AnnouncementService struct {
	announcements storage.AnnouncementStore
	cache         *cache.AnnouncementCache
	validate      *validator.Validate
	logger        *zap.SugaredLogger
}

// NewAnnouncementService creates the announcement service. cache may be
// nil when Redis is disabled.
func NewAnnouncementService(announcements storage.AnnouncementStore, announcementCache *cache.AnnouncementCache, logger *zap.SugaredLogger) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		cache:         announcementCache,
		validate:      validator.New(),
		logger:        logger,
	}
}

// SearchAnnouncements validates and translates the wire filter/sort
// parameters and runs the paginated query. Public searches are forced to
// PUBLISHED and served through the Redis cache.
func (s *AnnouncementService) SearchAnnouncements(ctx context.Context, offset int, limit *int, filterJSON, sortJSON string, role core.Role) (*AnnouncementSearchResult, error) {
	offset, err := checkPage(offset, limit)
	if err != nil {
		return nil, err
	}
	predicate, orderBy, err := buildPredicate(search.AnnouncementSchema, role, filterJSON, sortJSON)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if role != core.RoleAdmin {
		cacheKey, err = s.cache.SearchKey(ctx, offset, limit, filterJSON, sortJSON)
		if err != nil {
			s.logger.Warnw("Announcement cache key lookup failed", "error", err)
			cacheKey = ""
		}
		if cacheKey != "" {
			var cached AnnouncementSearchResult
			hit, err := s.cache.Get(ctx, cacheKey, &cached)
			if err == nil && hit {
				return &cached, nil
			}
		}
	}

	items, total, err := s.announcements.SearchAnnouncements(ctx, predicate, orderBy, offset, limit)
	if err != nil {
		return nil, err
	}

	metrics.SearchesExecuted.WithLabelValues("announcement").Inc()

	result := &AnnouncementSearchResult{
		Items:      items,
		Total:      total,
		Offset:     offset,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, result); err != nil {
			s.logger.Warnw("Failed to cache announcement search result", "error", err)
		}
	}
	return result, nil
}

// checkInput validates an announcement payload, mapping validation and
// date-ordering failures to client faults
func (s *AnnouncementService) checkInput(input *AnnouncementInput) error {
	if err := s.validate.Struct(input); err != nil {
		return core.NewValidationError(fmt.Sprintf("Invalid announcement: %v", err))
	}
	if input.ActiveOn != nil && input.ExpiresOn != nil && !input.ExpiresOn.After(*input.ActiveOn) {
		return core.NewUserInputError("expires_on must be after active_on")
	}
	return nil
}

func announcementFromInput(input *AnnouncementInput) *core.Announcement {
	resources := make([]core.AnnouncementResource, len(input.Resources))
	for i, res := range input.Resources {
		resources[i] = core.AnnouncementResource{
			ResourceID:   uuid.NewString(),
			ResourceType: core.ResourceType(res.ResourceType),
			DisplayName:  res.DisplayName,
			ResourceURL:  res.ResourceURL,
			AttachmentID: res.AttachmentID,
		}
	}
	return &core.Announcement{
		Title:       input.Title,
		Description: input.Description,
		Status:      core.AnnouncementStatus(input.Status),
		ActiveOn:    input.ActiveOn,
		ExpiresOn:   input.ExpiresOn,
		Resources:   resources,
	}
}

// CreateAnnouncement validates and persists a new announcement
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, input *AnnouncementInput, actor string) (*core.Announcement, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := announcementFromInput(input)
	a.AnnouncementID = uuid.NewString()
	a.CreatedBy = &actor
	a.UpdatedBy = &actor
	a.CreatedDate = now
	a.UpdatedDate = now
	if a.Status == core.AnnouncementStatusPublished {
		a.PublishedOn = &now
	}

	if err := s.announcements.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	s.logger.Infow("Announcement created", "announcement_id", a.AnnouncementID, "actor", actor)
	return s.announcements.GetAnnouncement(ctx, a.AnnouncementID)
}

// UpdateAnnouncement validates and rewrites an existing announcement and
// its resources
func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, id string, input *AnnouncementInput, actor string) (*core.Announcement, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	existing, err := s.announcements.GetAnnouncement(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	target := core.AnnouncementStatus(input.Status)
	if !core.IsTransitionAllowed(existing.Status, target) {
		return nil, core.NewUserInputError(
			fmt.Sprintf("Cannot change announcement status from %s to %s", existing.Status, target))
	}

	now := time.Now().UTC()
	a := announcementFromInput(input)
	a.AnnouncementID = id
	a.PublishedOn = existing.PublishedOn
	a.UpdatedBy = &actor
	a.UpdatedDate = now
	if target == core.AnnouncementStatusPublished && existing.Status != core.AnnouncementStatusPublished {
		a.PublishedOn = &now
	}

	if err := s.announcements.UpdateAnnouncement(ctx, a); err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if existing.Status != target {
		metrics.TransitionsApplied.WithLabelValues("announcement", string(target)).Inc()
	}
	s.invalidateCache(ctx)
	return s.announcements.GetAnnouncement(ctx, id)
}

// PatchAnnouncements applies a bulk status change atomically. Non-admin
// actors can never set DELETED or ARCHIVED, independent of route guards.
func (s *AnnouncementService) PatchAnnouncements(ctx context.Context, patches []core.AnnouncementStatusPatch, actor string, role core.Role) error {
	if len(patches) == 0 {
		return core.NewValidationError("No status changes supplied")
	}
	for _, patch := range patches {
		switch patch.Status {
		case core.AnnouncementStatusDraft, core.AnnouncementStatusPublished,
			core.AnnouncementStatusExpired, core.AnnouncementStatusArchived,
			core.AnnouncementStatusDeleted:
		default:
			return core.NewValidationError(fmt.Sprintf("Invalid announcement status '%s'", patch.Status))
		}
		if role != core.RoleAdmin &&
			(patch.Status == core.AnnouncementStatusDeleted || patch.Status == core.AnnouncementStatusArchived) {
			return core.NewUserInputError(
				fmt.Sprintf("Status %s requires admin access", patch.Status))
		}
	}

	err := s.announcements.PatchStatuses(ctx, patches, actor, time.Now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			return core.ErrNotFound
		}
		if errors.Is(err, storage.ErrInvalidTransition) {
			return core.NewUserInputError(err.Error())
		}
		return err
	}
	for _, patch := range patches {
		metrics.TransitionsApplied.WithLabelValues("announcement", string(patch.Status)).Inc()
	}
	s.invalidateCache(ctx)
	return nil
}

// ExpireAnnouncements moves published announcements past their expiry to
// EXPIRED. Run periodically from the background sweep.
func (s *AnnouncementService) ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.announcements.ExpirePublished(ctx, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		metrics.AnnouncementsExpired.Add(float64(expired))
		s.invalidateCache(ctx)
		s.logger.Infow("Expired announcements", "count", expired)
	}
	return expired, nil
}

func (s *AnnouncementService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warnw("Failed to invalidate announcement cache", "error", err)
	}
}
