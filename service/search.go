package service

import (
	"encoding/json"
	"math"

	"paygap/core"
	"paygap/search"
)

const msgInvalidQueryParameters = "Invalid query parameters"

// parseFilterJSON decodes the wire filter parameter. An empty parameter is
// an empty filter; malformed JSON is a client fault.
func parseFilterJSON(filterJSON string) ([]search.FilterClause, error) {
	if filterJSON == "" {
		return nil, nil
	}
	var clauses []search.FilterClause
	if err := json.Unmarshal([]byte(filterJSON), &clauses); err != nil {
		return nil, core.NewValidationError(msgInvalidQueryParameters)
	}
	return clauses, nil
}

// parseSortJSON decodes the wire sort parameter
func parseSortJSON(sortJSON string) ([]search.SortClause, error) {
	if sortJSON == "" {
		return nil, nil
	}
	var clauses []search.SortClause
	if err := json.Unmarshal([]byte(sortJSON), &clauses); err != nil {
		return nil, core.NewValidationError(msgInvalidQueryParameters)
	}
	return clauses, nil
}

// checkPage validates pagination inputs. A nil limit is tolerated for call
// sites that want no page-size restriction; a present limit must be a
// positive integer.
func checkPage(offset int, limit *int) (int, error) {
	if limit != nil && *limit <= 0 {
		return 0, core.NewValidationError("Invalid limit")
	}
	if offset < 0 {
		offset = 0
	}
	return offset, nil
}

// totalPages computes ceil(total/limit). With no limit the result set is a
// single page.
func totalPages(total int64, limit *int) int {
	if total == 0 {
		return 0
	}
	if limit == nil {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(*limit)))
}

// buildPredicate runs the full parse/policy/validate/translate pipeline for
// one search request
func buildPredicate(schema *search.Schema, role core.Role, filterJSON, sortJSON string) (*search.Predicate, string, error) {
	rawFilters, err := parseFilterJSON(filterJSON)
	if err != nil {
		return nil, "", err
	}
	rawSort, err := parseSortJSON(sortJSON)
	if err != nil {
		return nil, "", err
	}

	rawFilters = applyVisibilityPolicy(schema, role, rawFilters)

	clauses, err := schema.ValidateFilters(rawFilters)
	if err != nil {
		return nil, "", err
	}
	predicate := search.Translate(clauses)
	orderBy := schema.OrderBy(schema.TranslateSort(rawSort))
	return predicate, orderBy, nil
}
