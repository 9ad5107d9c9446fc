package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"paygap/core"
)

// SQLiteAdminUserStorage handles admin user and company persistence
type SQLiteAdminUserStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteAdminUserStorage creates admin user storage
func NewSQLiteAdminUserStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteAdminUserStorage {
	return &SQLiteAdminUserStorage{sqlite: sqlite, logger: logger}
}

const adminUserColumns = `admin_user_id, guid, username, display_name, password_hash, is_active, create_date`

func scanAdminUser(row interface{ Scan(...interface{}) error }) (*core.AdminUser, error) {
	var u core.AdminUser
	var isActive int
	var createDate string
	err := row.Scan(&u.AdminUserID, &u.GUID, &u.Username, &u.DisplayName,
		&u.PasswordHash, &isActive, &createDate)
	if err != nil {
		return nil, err
	}
	u.IsActive = isActive != 0
	u.CreateDate = parseTime(createDate)
	return &u, nil
}

// GetAdminUserByGUID resolves an admin identity from its directory GUID
func (s *SQLiteAdminUserStorage) GetAdminUserByGUID(ctx context.Context, guid string) (*core.AdminUser, error) {
	query := fmt.Sprintf("SELECT %s FROM admin_users WHERE guid = ? AND is_active = 1", adminUserColumns)
	user, err := scanAdminUser(s.sqlite.ReadDB.QueryRowContext(ctx, query, guid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return user, nil
}

// GetAdminUserByUsername resolves an admin account for login
func (s *SQLiteAdminUserStorage) GetAdminUserByUsername(ctx context.Context, username string) (*core.AdminUser, error) {
	query := fmt.Sprintf("SELECT %s FROM admin_users WHERE username = ? AND is_active = 1", adminUserColumns)
	user, err := scanAdminUser(s.sqlite.ReadDB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return user, nil
}

// GetAdminUserByID loads an admin account by primary key
func (s *SQLiteAdminUserStorage) GetAdminUserByID(ctx context.Context, id string) (*core.AdminUser, error) {
	query := fmt.Sprintf("SELECT %s FROM admin_users WHERE admin_user_id = ?", adminUserColumns)
	user, err := scanAdminUser(s.sqlite.ReadDB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return user, nil
}

// CreateAdminUser inserts an admin account
func (s *SQLiteAdminUserStorage) CreateAdminUser(ctx context.Context, u *core.AdminUser) error {
	_, err := s.sqlite.WriteDB.ExecContext(ctx, `
		INSERT INTO admin_users (admin_user_id, guid, username, display_name,
			password_hash, is_active, create_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		u.AdminUserID, u.GUID, u.Username, u.DisplayName,
		u.PasswordHash, boolToInt(u.IsActive), formatTime(u.CreateDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// CreateCompany inserts a company row
func (s *SQLiteAdminUserStorage) CreateCompany(ctx context.Context, c *core.Company) error {
	_, err := s.sqlite.WriteDB.ExecContext(ctx, `
		INSERT INTO companies (company_id, company_name, bceid_guid, create_date, update_date)
		VALUES (?, ?, ?, ?, ?)
	`,
		c.CompanyID, c.CompanyName,
		sql.NullString{String: c.BceidGUID, Valid: c.BceidGUID != ""},
		formatTime(c.CreateDate), formatTime(c.UpdateDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}
