package service

import (
	"paygap/core"
	"paygap/search"
)

// applyVisibilityPolicy enforces the role-based visibility boundary before
// validation. For non-admin callers any client-supplied status filter is
// discarded and replaced with the fixed public filter; this is a security
// boundary, not a default, and cannot be bypassed by client input.
func applyVisibilityPolicy(schema *search.Schema, role core.Role, clauses []search.FilterClause) []search.FilterClause {
	if role == core.RoleAdmin {
		return clauses
	}

	statusKey := "status"
	visible := []interface{}{string(core.AnnouncementStatusPublished)}
	if schema == search.ReportSchema {
		statusKey = "report_status"
		visible = []interface{}{string(core.ReportStatusPublished)}
	}

	kept := make([]search.FilterClause, 0, len(clauses)+1)
	for _, clause := range clauses {
		if clause.Key == statusKey {
			continue
		}
		kept = append(kept, clause)
	}
	return append(kept, search.FilterClause{
		Key:       statusKey,
		Operation: search.OpIn,
		Value:     visible,
	})
}
