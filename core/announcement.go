package core

import "time"

// AnnouncementStatus represents the lifecycle status of an announcement
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "DRAFT"
	AnnouncementStatusPublished AnnouncementStatus = "PUBLISHED"
	AnnouncementStatusExpired   AnnouncementStatus = "EXPIRED"
	AnnouncementStatusArchived  AnnouncementStatus = "ARCHIVED"
	AnnouncementStatusDeleted   AnnouncementStatus = "DELETED"
)

// ValidAnnouncementTransitions defines the announcement state machine.
// ARCHIVED and DELETED are terminal apart from the soft-delete step.
var ValidAnnouncementTransitions = map[AnnouncementStatus][]AnnouncementStatus{
	AnnouncementStatusDraft:     {AnnouncementStatusPublished, AnnouncementStatusArchived},
	AnnouncementStatusPublished: {AnnouncementStatusDraft, AnnouncementStatusExpired, AnnouncementStatusArchived},
	AnnouncementStatusExpired:   {AnnouncementStatusArchived},
	AnnouncementStatusArchived:  {AnnouncementStatusDeleted},
}

// ResourceType distinguishes announcement resources
type ResourceType string

const (
	ResourceTypeLink       ResourceType = "LINK"
	ResourceTypeAttachment ResourceType = "ATTACHMENT"
)

// AnnouncementResource is a link or attachment carried by an announcement
type AnnouncementResource struct {
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	DisplayName  string       `json:"display_name"`
	ResourceURL  string       `json:"resource_url,omitempty"`
	AttachmentID string       `json:"attachment_file_id,omitempty"`
}

// Announcement represents a public announcement managed by admins.
// Only PUBLISHED (and sometimes EXPIRED) announcements are visible publicly.
type Announcement struct {
	AnnouncementID string                 `json:"announcement_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Status         AnnouncementStatus     `json:"status"`
	ActiveOn       *time.Time             `json:"active_on"`
	PublishedOn    *time.Time             `json:"published_on"`
	ExpiresOn      *time.Time             `json:"expires_on"`
	Resources      []AnnouncementResource `json:"announcement_resource"`
	CreatedBy      *string                `json:"created_by,omitempty"`
	UpdatedBy      *string                `json:"updated_by,omitempty"`
	CreatedDate    time.Time              `json:"created_date"`
	UpdatedDate    time.Time              `json:"updated_date"`
}

// AnnouncementStatusPatch is one element of a bulk status change request
type AnnouncementStatusPatch struct {
	ID     string             `json:"id"`
	Status AnnouncementStatus `json:"status"`
}

// IsTransitionAllowed reports whether an announcement may move between the
// two statuses. Same-status writes are treated as allowed no-ops.
func IsTransitionAllowed(from, to AnnouncementStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range ValidAnnouncementTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}
