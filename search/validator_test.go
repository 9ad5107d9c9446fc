package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygap/core"
)

func TestValidateFiltersRejectsUnknownKey(t *testing.T) {
	_, err := ReportSchema.ValidateFilters([]FilterClause{
		{Key: "salary", Operation: OpEq, Value: 100},
	})
	require.Error(t, err)
	assert.Equal(t,
		"Invalid filter key 'salary'. Allowed keys: create_date, update_date, naics_code, "+
			"reporting_year, is_unlocked, report_status, employee_count_range_id, "+
			"admin_last_access_date, company_name, admin_modified_reason",
		err.Error())

	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidateFiltersAnnouncementWhitelist(t *testing.T) {
	_, err := AnnouncementSchema.ValidateFilters([]FilterClause{
		{Key: "reporting_year", Operation: OpEq, Value: float64(2024)},
	})
	require.Error(t, err)
	assert.Equal(t,
		"Invalid filter key 'reporting_year'. Allowed keys: title, status, active_on, expires_on, published_on",
		err.Error())
}

func TestValidateFiltersOperationErrors(t *testing.T) {
	tests := []struct {
		name    string
		clause  FilterClause
		wantMsg string
	}{
		{
			name:    "missing operation",
			clause:  FilterClause{Key: "reporting_year", Value: float64(2024)},
			wantMsg: "Missing operation",
		},
		{
			name:    "operation not permitted for key",
			clause:  FilterClause{Key: "create_date", Operation: OpEq, Value: "2024-01-01T00:00:00Z"},
			wantMsg: "Missing or invalid operation",
		},
		{
			name:    "between on enum key",
			clause:  FilterClause{Key: "report_status", Operation: OpBetween, Value: []interface{}{}},
			wantMsg: "Missing or invalid operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReportSchema.ValidateFilters([]FilterClause{tt.clause})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidateFiltersValueShapes(t *testing.T) {
	tests := []struct {
		name   string
		clause FilterClause
		ok     bool
	}{
		{
			name:   "eq with array value",
			clause: FilterClause{Key: "is_unlocked", Operation: OpEq, Value: []interface{}{true}},
		},
		{
			name:   "eq bool with string value",
			clause: FilterClause{Key: "is_unlocked", Operation: OpEq, Value: "true"},
		},
		{
			name:   "eq number with string value",
			clause: FilterClause{Key: "reporting_year", Operation: OpEq, Value: "2024"},
		},
		{
			name:   "eq with null value",
			clause: FilterClause{Key: "reporting_year", Operation: OpEq, Value: nil},
		},
		{
			name:   "in with scalar value",
			clause: FilterClause{Key: "naics_code", Operation: OpIn, Value: "11"},
		},
		{
			name:   "between with single bound",
			clause: FilterClause{Key: "create_date", Operation: OpBetween, Value: []interface{}{"2024-01-01T00:00:00Z"}},
		},
		{
			name:   "between with non-date members",
			clause: FilterClause{Key: "create_date", Operation: OpBetween, Value: []interface{}{"yesterday", "today"}},
		},
		{
			name:   "between with null value",
			clause: FilterClause{Key: "create_date", Operation: OpBetween, Value: nil},
		},
		{
			name:   "like with empty string",
			clause: FilterClause{Key: "company_name", Operation: OpLike, Value: ""},
		},
		{
			name:   "not with non-null value",
			clause: FilterClause{Key: "admin_last_access_date", Operation: OpNot, Value: "null"},
		},
		{
			name:   "valid eq",
			clause: FilterClause{Key: "reporting_year", Operation: OpEq, Value: float64(2024)},
			ok:     true,
		},
		{
			name:   "valid bool eq",
			clause: FilterClause{Key: "is_unlocked", Operation: OpEq, Value: true},
			ok:     true,
		},
		{
			name:   "valid empty in",
			clause: FilterClause{Key: "report_status", Operation: OpIn, Value: []interface{}{}},
			ok:     true,
		},
		{
			name:   "valid empty between",
			clause: FilterClause{Key: "update_date", Operation: OpBetween, Value: []interface{}{}},
			ok:     true,
		},
		{
			name:   "valid not null",
			clause: FilterClause{Key: "admin_last_access_date", Operation: OpNot, Value: nil},
			ok:     true,
		},
		{
			name:   "valid like",
			clause: FilterClause{Key: "company_name", Operation: OpLike, Value: "acme"},
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, err := ReportSchema.ValidateFilters([]FilterClause{tt.clause})
			if tt.ok {
				require.NoError(t, err)
				require.Len(t, clauses, 1)
			} else {
				require.Error(t, err)
				assert.Equal(t, "Invalid or missing filter value", err.Error())
			}
		})
	}
}

func TestValidateFiltersDecodesWholeNumbers(t *testing.T) {
	clauses, err := ReportSchema.ValidateFilters([]FilterClause{
		{Key: "reporting_year", Operation: OpEq, Value: float64(2024)},
	})
	require.NoError(t, err)
	require.Len(t, clauses, 1)

	scalar, ok := clauses[0].Value.(ScalarValue)
	require.True(t, ok)
	assert.Equal(t, int64(2024), scalar.V)
}

func TestValidateFiltersDecodesBetweenBounds(t *testing.T) {
	clauses, err := ReportSchema.ValidateFilters([]FilterClause{
		{Key: "update_date", Operation: OpBetween, Value: []interface{}{
			"2024-10-02T00:00:00-07:00",
			"2024-10-02T23:59:59-07:00",
		}},
	})
	require.NoError(t, err)
	require.Len(t, clauses, 1)

	between, ok := clauses[0].Value.(BetweenValue)
	require.True(t, ok)
	assert.False(t, between.Empty)
	assert.Equal(t, "2024-10-02T07:00:00Z", between.Lo.UTC().Format("2006-01-02T15:04:05Z"))
}
