package search

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SortClause is one ordering element. The report endpoints send
// {"field": ..., "order": ...} while the announcement endpoints send
// {"key": ..., "order": ...}; both wire shapes decode into this type.
type SortClause struct {
	Field string
	Order string
}

func (sc *SortClause) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field string `json:"field"`
		Key   string `json:"key"`
		Order string `json:"order"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sc.Field = raw.Field
	if sc.Field == "" {
		sc.Field = raw.Key
	}
	sc.Order = raw.Order
	return nil
}

func (sc SortClause) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Field string `json:"field"`
		Order string `json:"order"`
	}{Field: sc.Field, Order: sc.Order})
}

// TranslateSort maps UI sort keys (including dotted relation paths) to
// backend columns through the schema's sort dictionary. Unknown keys are
// dropped silently: UI table components send sort keys for columns that
// have no backend mapping, and that must not fail the search. A nil or
// empty input returns an empty string so the caller applies its default.
func (s *Schema) TranslateSort(clauses []SortClause) string {
	if len(clauses) == 0 {
		return ""
	}
	parts := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		column, ok := s.SortKeys[clause.Field]
		if !ok {
			continue
		}
		order := "ASC"
		if strings.EqualFold(clause.Order, "desc") {
			order = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", column, order))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ")
}

// OrderBy renders the ORDER BY clause for the given sort, falling back to
// the schema's stable default so pagination stays deterministic
func (s *Schema) OrderBy(sort string) string {
	if sort == "" {
		sort = s.DefaultSort
	}
	return "ORDER BY " + sort
}
