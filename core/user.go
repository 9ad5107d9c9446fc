package core

import "time"

// Role identifies the capability level of a caller. The visibility policy
// applied to searches depends on it.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePublic Role = "public"
)

// AdminUser is a government staff account in the admin portal
type AdminUser struct {
	AdminUserID  string    `json:"admin_user_id"`
	GUID         string    `json:"guid"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreateDate   time.Time `json:"create_date"`
}

// Company is an employer that owns pay transparency reports.
// One report per company per reporting year.
type Company struct {
	CompanyID   string    `json:"company_id"`
	CompanyName string    `json:"company_name"`
	BceidGUID   string    `json:"bceid_guid,omitempty"`
	CreateDate  time.Time `json:"create_date"`
	UpdateDate  time.Time `json:"update_date"`
}
