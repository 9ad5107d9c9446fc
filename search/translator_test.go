package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validated is a test helper running clauses through the validator first,
// mirroring the orchestrator's call sequence
func validated(t *testing.T, schema *Schema, raw []FilterClause) []Clause {
	t.Helper()
	clauses, err := schema.ValidateFilters(raw)
	require.NoError(t, err)
	return clauses
}

func TestTranslateDateRangeNormalizesToUTC(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "update_date", Operation: OpBetween, Value: []interface{}{
			"2024-10-02T00:00:00-07:00",
			"2024-10-02T23:59:59-07:00",
		}},
	})

	p := Translate(clauses)
	require.Equal(t, []string{"r.update_date >= ?", "r.update_date < ?"}, p.Conditions)
	require.Len(t, p.Args, 2)
	assert.Equal(t, "2024-10-02T07:00:00Z", p.Args[0])
	assert.Equal(t, "2024-10-03T06:59:59Z", p.Args[1])
}

func TestTranslateEmptyBetweenAppliesNoRestriction(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "create_date", Operation: OpBetween, Value: []interface{}{}},
	})

	p := Translate(clauses)
	assert.Empty(t, p.Conditions)
	assert.Empty(t, p.Args)
	assert.Equal(t, "", p.WhereClause())
}

func TestTranslateInSet(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "report_status", Operation: OpIn, Value: []interface{}{"Published", "Draft"}},
	})

	p := Translate(clauses)
	require.Equal(t, []string{"r.report_status IN (?,?)"}, p.Conditions)
	assert.Equal(t, []interface{}{"Published", "Draft"}, p.Args)
}

func TestTranslateEmptyInMatchesNothing(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "naics_code", Operation: OpIn, Value: []interface{}{}},
	})

	p := Translate(clauses)
	assert.Equal(t, []string{"1 = 0"}, p.Conditions)
	assert.Empty(t, p.Args)
}

func TestTranslateEmptyNotInMatchesEverything(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "naics_code", Operation: OpNotIn, Value: []interface{}{}},
	})

	p := Translate(clauses)
	assert.Empty(t, p.Conditions)
}

func TestTranslateNeqIsStructuralNegation(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "reporting_year", Operation: OpNeq, Value: float64(2023)},
	})

	p := Translate(clauses)
	require.Equal(t, []string{"NOT (r.reporting_year = ?)"}, p.Conditions)
	assert.Equal(t, []interface{}{int64(2023)}, p.Args)
}

func TestTranslateRelationLike(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "company_name", Operation: OpLike, Value: "Acme"},
	})

	p := Translate(clauses)
	require.Equal(t, []string{"LOWER(c.company_name) LIKE ?"}, p.Conditions)
	assert.Equal(t, []interface{}{"%acme%"}, p.Args)
}

func TestTranslateNotNull(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "admin_last_access_date", Operation: OpNot, Value: nil},
	})

	p := Translate(clauses)
	assert.Equal(t, []string{"r.admin_last_access_date IS NOT NULL"}, p.Conditions)
	assert.Empty(t, p.Args)
}

func TestTranslateCombinesConditionsWithAnd(t *testing.T) {
	clauses := validated(t, ReportSchema, []FilterClause{
		{Key: "reporting_year", Operation: OpGte, Value: float64(2022)},
		{Key: "is_unlocked", Operation: OpEq, Value: true},
	})

	p := Translate(clauses)
	assert.Equal(t, "WHERE r.reporting_year >= ? AND r.is_unlocked = ?", p.WhereClause())
	assert.Equal(t, []interface{}{int64(2022), true}, p.Args)
}
