// Package search implements the declarative filter/sort engine used by the
// report and announcement admin searches. Client-supplied filter clauses are
// validated against a per-entity schema, decoded into typed values, and
// translated into SQL predicates.
package search

import "strings"

// Operation is a filter operation permitted on a schema field
type Operation string

const (
	OpEq      Operation = "eq"
	OpNeq     Operation = "neq"
	OpLt      Operation = "lt"
	OpLte     Operation = "lte"
	OpGt      Operation = "gt"
	OpGte     Operation = "gte"
	OpIn      Operation = "in"
	OpNotIn   Operation = "notin"
	OpBetween Operation = "between"
	OpLike    Operation = "like"
	OpNot     Operation = "not"
)

// Kind describes the value shape a field accepts
type Kind int

const (
	KindDate Kind = iota
	KindSet
	KindNumber
	KindBool
	KindString
)

// FieldSpec describes one filterable field: its wire key, the SQL column it
// translates to (including table alias for relation fields), the operations
// it permits, and the value kind
type FieldSpec struct {
	Key        string
	Column     string
	Kind       Kind
	Operations []Operation
}

// Allows reports whether the field permits the given operation
func (f *FieldSpec) Allows(op Operation) bool {
	for _, allowed := range f.Operations {
		if op == allowed {
			return true
		}
	}
	return false
}

// Schema is the fixed filter/sort vocabulary for one entity type.
// The field order is fixed and appears verbatim in validation messages.
type Schema struct {
	Entity      string
	Fields      []FieldSpec
	SortKeys    map[string]string
	DefaultSort string

	fieldIndex  map[string]*FieldSpec
	allowedKeys string
}

// NewSchema builds a schema and its key index
func NewSchema(entity string, fields []FieldSpec, sortKeys map[string]string, defaultSort string) *Schema {
	s := &Schema{
		Entity:      entity,
		Fields:      fields,
		SortKeys:    sortKeys,
		DefaultSort: defaultSort,
		fieldIndex:  make(map[string]*FieldSpec, len(fields)),
	}
	keys := make([]string, 0, len(fields))
	for i := range s.Fields {
		s.fieldIndex[s.Fields[i].Key] = &s.Fields[i]
		keys = append(keys, s.Fields[i].Key)
	}
	s.allowedKeys = strings.Join(keys, ", ")
	return s
}

// Field returns the FieldSpec for a key, or nil if the key is not whitelisted
func (s *Schema) Field(key string) *FieldSpec {
	return s.fieldIndex[key]
}

// AllowedKeys returns the comma-joined whitelist in schema order
func (s *Schema) AllowedKeys() string {
	return s.allowedKeys
}

// ReportSchema is the filter/sort vocabulary for report searches.
// The reports table is aliased r and the joined companies table c.
var ReportSchema = NewSchema(
	"report",
	[]FieldSpec{
		{Key: "create_date", Column: "r.create_date", Kind: KindDate, Operations: []Operation{OpBetween}},
		{Key: "update_date", Column: "r.update_date", Kind: KindDate, Operations: []Operation{OpBetween}},
		{Key: "naics_code", Column: "r.naics_code", Kind: KindSet, Operations: []Operation{OpIn, OpNotIn}},
		{Key: "reporting_year", Column: "r.reporting_year", Kind: KindNumber, Operations: []Operation{OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte}},
		{Key: "is_unlocked", Column: "r.is_unlocked", Kind: KindBool, Operations: []Operation{OpEq}},
		{Key: "report_status", Column: "r.report_status", Kind: KindSet, Operations: []Operation{OpIn, OpNotIn}},
		{Key: "employee_count_range_id", Column: "r.employee_count_range_id", Kind: KindSet, Operations: []Operation{OpIn, OpNotIn}},
		{Key: "admin_last_access_date", Column: "r.admin_last_access_date", Kind: KindDate, Operations: []Operation{OpBetween, OpNot}},
		{Key: "company_name", Column: "c.company_name", Kind: KindString, Operations: []Operation{OpLike}},
		{Key: "admin_modified_reason", Column: "r.admin_modified_reason", Kind: KindSet, Operations: []Operation{OpIn, OpNotIn}},
	},
	map[string]string{
		"create_date":                          "r.create_date",
		"update_date":                          "r.update_date",
		"naics_code":                           "r.naics_code",
		"reporting_year":                       "r.reporting_year",
		"is_unlocked":                          "r.is_unlocked",
		"report_status":                        "r.report_status",
		"employee_count_range_id":              "r.employee_count_range_id",
		"admin_last_access_date":               "r.admin_last_access_date",
		"admin_modified_date":                  "r.admin_modified_date",
		"company_name":                         "c.company_name",
		"pay_transparency_company.company_name": "c.company_name",
	},
	"r.update_date DESC",
)

// AnnouncementSchema is the filter/sort vocabulary for announcement searches.
// The announcements table is aliased a.
var AnnouncementSchema = NewSchema(
	"announcement",
	[]FieldSpec{
		{Key: "title", Column: "a.title", Kind: KindString, Operations: []Operation{OpLike}},
		{Key: "status", Column: "a.status", Kind: KindSet, Operations: []Operation{OpIn, OpNotIn}},
		{Key: "active_on", Column: "a.active_on", Kind: KindDate, Operations: []Operation{OpBetween}},
		{Key: "expires_on", Column: "a.expires_on", Kind: KindDate, Operations: []Operation{OpBetween}},
		{Key: "published_on", Column: "a.published_on", Kind: KindDate, Operations: []Operation{OpBetween}},
	},
	map[string]string{
		"title":        "a.title",
		"status":       "a.status",
		"active_on":    "a.active_on",
		"expires_on":   "a.expires_on",
		"published_on": "a.published_on",
		"updated_date": "a.updated_date",
	},
	"a.updated_date DESC",
)
