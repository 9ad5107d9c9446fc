package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"paygap/core"
	"paygap/search"
)

// SQLiteAnnouncementStorage handles announcement persistence
type SQLiteAnnouncementStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteAnnouncementStorage creates announcement storage
func NewSQLiteAnnouncementStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteAnnouncementStorage {
	return &SQLiteAnnouncementStorage{sqlite: sqlite, logger: logger}
}

const announcementColumns = `a.announcement_id, a.title, a.description, a.status,
	a.active_on, a.published_on, a.expires_on, a.created_by, a.updated_by,
	a.created_date, a.updated_date`

func scanAnnouncement(row interface{ Scan(...interface{}) error }) (*core.Announcement, error) {
	var a core.Announcement
	var activeOn, publishedOn, expiresOn, createdBy, updatedBy sql.NullString
	var createdDate, updatedDate string

	err := row.Scan(
		&a.AnnouncementID,
		&a.Title,
		&a.Description,
		&a.Status,
		&activeOn,
		&publishedOn,
		&expiresOn,
		&createdBy,
		&updatedBy,
		&createdDate,
		&updatedDate,
	)
	if err != nil {
		return nil, err
	}

	a.ActiveOn = parseNullableTime(activeOn)
	a.PublishedOn = parseNullableTime(publishedOn)
	a.ExpiresOn = parseNullableTime(expiresOn)
	a.CreatedBy = stringPtr(createdBy)
	a.UpdatedBy = stringPtr(updatedBy)
	a.CreatedDate = parseTime(createdDate)
	a.UpdatedDate = parseTime(updatedDate)
	a.Resources = []core.AnnouncementResource{}
	return &a, nil
}

// GetAnnouncement retrieves one announcement with its resources
func (s *SQLiteAnnouncementStorage) GetAnnouncement(ctx context.Context, id string) (*core.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements a WHERE a.announcement_id = ?", announcementColumns)
	a, err := scanAnnouncement(s.sqlite.ReadDB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	if err := s.loadResources(ctx, []*core.Announcement{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// SearchAnnouncements runs the count and data queries for a translated
// predicate, then loads resources for the returned page
func (s *SQLiteAnnouncementStorage) SearchAnnouncements(ctx context.Context, predicate *search.Predicate, orderBy string, offset int, limit *int) ([]core.Announcement, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	where := predicate.WhereClause()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM announcements a %s", where)
	var total int64
	if err := s.sqlite.ReadDB.QueryRowContext(ctx, countQuery, predicate.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count announcements: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM announcements a %s %s", announcementColumns, where, orderBy)
	args := append([]interface{}{}, predicate.Args...)
	if limit != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, *limit, offset)
	} else if offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := s.sqlite.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search announcements: %w", err)
	}
	defer rows.Close()

	page := []*core.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan announcement: %w", err)
		}
		page = append(page, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.loadResources(ctx, page); err != nil {
		return nil, 0, err
	}

	items := make([]core.Announcement, len(page))
	for i, a := range page {
		items[i] = *a
	}
	return items, total, nil
}

// loadResources attaches resources to a page of announcements in one query
func (s *SQLiteAnnouncementStorage) loadResources(ctx context.Context, page []*core.Announcement) error {
	if len(page) == 0 {
		return nil
	}
	byID := make(map[string]*core.Announcement, len(page))
	placeholders := make([]string, len(page))
	args := make([]interface{}, len(page))
	for i, a := range page {
		byID[a.AnnouncementID] = a
		placeholders[i] = "?"
		args[i] = a.AnnouncementID
	}

	query := fmt.Sprintf(`
		SELECT resource_id, announcement_id, resource_type, display_name,
		       resource_url, attachment_file_id
		FROM announcement_resources
		WHERE announcement_id IN (%s)
		ORDER BY display_name ASC
	`, strings.Join(placeholders, ","))

	rows, err := s.sqlite.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res core.AnnouncementResource
		var announcementID string
		var url, attachmentID sql.NullString
		if err := rows.Scan(&res.ResourceID, &announcementID, &res.ResourceType,
			&res.DisplayName, &url, &attachmentID); err != nil {
			return fmt.Errorf("failed to scan resource: %w", err)
		}
		res.ResourceURL = url.String
		res.AttachmentID = attachmentID.String
		if a, ok := byID[announcementID]; ok {
			a.Resources = append(a.Resources, res)
		}
	}
	return rows.Err()
}

// CreateAnnouncement inserts an announcement and its resources in one
// transaction
func (s *SQLiteAnnouncementStorage) CreateAnnouncement(ctx context.Context, a *core.Announcement) error {
	tx, err := s.sqlite.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO announcements (
			announcement_id, title, description, status, active_on,
			published_on, expires_on, created_by, updated_by,
			created_date, updated_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.AnnouncementID,
		a.Title,
		a.Description,
		string(a.Status),
		formatNullableTime(a.ActiveOn),
		formatNullableTime(a.PublishedOn),
		formatNullableTime(a.ExpiresOn),
		nullableString(a.CreatedBy),
		nullableString(a.UpdatedBy),
		formatTime(a.CreatedDate),
		formatTime(a.UpdatedDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	if err := insertResourcesTx(ctx, tx, a.AnnouncementID, a.Resources); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateAnnouncement rewrites an announcement and replaces its resources
// in one transaction
func (s *SQLiteAnnouncementStorage) UpdateAnnouncement(ctx context.Context, a *core.Announcement) error {
	tx, err := s.sqlite.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE announcements SET
			title = ?, description = ?, status = ?, active_on = ?,
			published_on = ?, expires_on = ?, updated_by = ?, updated_date = ?
		WHERE announcement_id = ?
	`,
		a.Title,
		a.Description,
		string(a.Status),
		formatNullableTime(a.ActiveOn),
		formatNullableTime(a.PublishedOn),
		formatNullableTime(a.ExpiresOn),
		nullableString(a.UpdatedBy),
		formatTime(a.UpdatedDate),
		a.AnnouncementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAnnouncementNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM announcement_resources WHERE announcement_id = ?",
		a.AnnouncementID); err != nil {
		return fmt.Errorf("failed to clear resources: %w", err)
	}
	if err := insertResourcesTx(ctx, tx, a.AnnouncementID, a.Resources); err != nil {
		return err
	}
	return tx.Commit()
}

func insertResourcesTx(ctx context.Context, tx *sql.Tx, announcementID string, resources []core.AnnouncementResource) error {
	for _, res := range resources {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO announcement_resources (
				resource_id, announcement_id, resource_type, display_name,
				resource_url, attachment_file_id
			) VALUES (?, ?, ?, ?, ?, ?)
		`,
			res.ResourceID,
			announcementID,
			string(res.ResourceType),
			res.DisplayName,
			sql.NullString{String: res.ResourceURL, Valid: res.ResourceURL != ""},
			sql.NullString{String: res.AttachmentID, Valid: res.AttachmentID != ""},
		)
		if err != nil {
			return fmt.Errorf("failed to insert resource: %w", err)
		}
	}
	return nil
}

// PatchStatuses applies a bulk status change with no partial success: the
// whole batch commits or the whole batch rolls back. Each row's transition
// is checked against the state machine, and publishing stamps published_on.
func (s *SQLiteAnnouncementStorage) PatchStatuses(ctx context.Context, patches []core.AnnouncementStatusPatch, actor string, now time.Time) error {
	tx, err := s.sqlite.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin patch: %w", err)
	}
	defer tx.Rollback()

	for _, patch := range patches {
		var current string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM announcements WHERE announcement_id = ?",
			patch.ID).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAnnouncementNotFound
			}
			return fmt.Errorf("failed to read announcement status: %w", err)
		}
		if !core.IsTransitionAllowed(core.AnnouncementStatus(current), patch.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, patch.Status)
		}

		query := `
			UPDATE announcements SET status = ?, updated_by = ?, updated_date = ?
			WHERE announcement_id = ?
		`
		args := []interface{}{string(patch.Status), actor, formatTime(now), patch.ID}
		if patch.Status == core.AnnouncementStatusPublished {
			query = `
				UPDATE announcements SET status = ?, published_on = ?, updated_by = ?, updated_date = ?
				WHERE announcement_id = ?
			`
			args = []interface{}{string(patch.Status), formatTime(now), actor, formatTime(now), patch.ID}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to patch announcement status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patch: %w", err)
	}

	s.logger.Infow("Announcement statuses patched", "count", len(patches), "actor", actor)
	return nil
}

// ExpirePublished moves published announcements past their expiry to
// EXPIRED and returns how many rows changed
func (s *SQLiteAnnouncementStorage) ExpirePublished(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.sqlite.WriteDB.ExecContext(ctx, `
		UPDATE announcements SET status = ?, updated_date = ?
		WHERE status = ? AND expires_on IS NOT NULL AND expires_on <= ?
	`,
		string(core.AnnouncementStatusExpired),
		formatTime(now),
		string(core.AnnouncementStatusPublished),
		formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire announcements: %w", err)
	}
	return result.RowsAffected()
}
