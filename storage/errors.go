package storage

import "errors"

// Storage error constants
var (
	// ErrReportNotFound is returned when a report is not found
	ErrReportNotFound = errors.New("report not found")

	// ErrAnnouncementNotFound is returned when an announcement is not found
	ErrAnnouncementNotFound = errors.New("announcement not found")

	// ErrAdminUserNotFound is returned when an admin user is not found
	ErrAdminUserNotFound = errors.New("admin user not found")

	// ErrCompanyNotFound is returned when a company is not found
	ErrCompanyNotFound = errors.New("company not found")

	// ErrDuplicateReportYear is returned when a company already has a live
	// report for the requested year
	ErrDuplicateReportYear = errors.New("report already exists for this company and year")

	// ErrInvalidTransition is returned when a status write violates the
	// entity state machine
	ErrInvalidTransition = errors.New("invalid status transition")
)
