package search

import (
	"fmt"
	"time"

	"paygap/core"
)

// FilterClause is the wire shape of one filter element:
// {"key": ..., "operation": ..., "value": ...}
type FilterClause struct {
	Key       string      `json:"key"`
	Operation Operation   `json:"operation"`
	Value     interface{} `json:"value"`
}

// Value is the decoded, typed form of a filter value. Raw JSON values are
// decoded exactly once, at the validation boundary; downstream code never
// touches untyped input.
type Value interface {
	isValue()
}

// BetweenValue holds a validated date range. Empty means the client sent an
// empty array, which applies no date restriction.
type BetweenValue struct {
	Lo    time.Time
	Hi    time.Time
	Empty bool
}

// SetValue holds the members of an in/notin filter. An empty set is valid:
// for in it matches zero rows, for notin it matches everything.
type SetValue struct {
	Values []interface{}
}

// ScalarValue holds a single comparison operand
type ScalarValue struct {
	V interface{}
}

// NotNullValue marks an explicit not-null check
type NotNullValue struct{}

func (BetweenValue) isValue() {}
func (SetValue) isValue()     {}
func (ScalarValue) isValue()  {}
func (NotNullValue) isValue() {}

// Clause is a validated filter clause ready for translation
type Clause struct {
	Key       string
	Column    string
	Operation Operation
	Value     Value
}

const (
	msgMissingOperation = "Missing operation"
	msgInvalidOperation = "Missing or invalid operation"
	msgInvalidValue     = "Invalid or missing filter value"
)

// ValidateFilters checks raw filter clauses against the schema whitelist and
// decodes their values. Any violation yields a ValidationError whose message
// is surfaced to the caller verbatim.
func (s *Schema) ValidateFilters(raw []FilterClause) ([]Clause, error) {
	clauses := make([]Clause, 0, len(raw))
	for _, fc := range raw {
		spec := s.Field(fc.Key)
		if spec == nil {
			return nil, core.NewValidationError(
				fmt.Sprintf("Invalid filter key '%s'. Allowed keys: %s", fc.Key, s.allowedKeys))
		}
		if fc.Operation == "" {
			return nil, core.NewValidationError(msgMissingOperation)
		}
		if !spec.Allows(fc.Operation) {
			return nil, core.NewValidationError(msgInvalidOperation)
		}
		value, err := decodeValue(spec, fc.Operation, fc.Value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, Clause{
			Key:       fc.Key,
			Column:    spec.Column,
			Operation: fc.Operation,
			Value:     value,
		})
	}
	return clauses, nil
}

// decodeValue checks the value shape against the operation and decodes it
// into its typed form
func decodeValue(spec *FieldSpec, op Operation, v interface{}) (Value, error) {
	switch op {
	case OpBetween:
		return decodeBetween(v)
	case OpIn, OpNotIn:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		for _, member := range arr {
			if !isScalar(member) {
				return nil, core.NewValidationError(msgInvalidValue)
			}
		}
		return SetValue{Values: arr}, nil
	case OpLike:
		str, ok := v.(string)
		if !ok || str == "" {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		return ScalarValue{V: str}, nil
	case OpNot:
		// The only "not" filter is the explicit null check
		if v != nil {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		return NotNullValue{}, nil
	default:
		// eq family
		if !isScalar(v) || v == nil {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		if spec.Kind == KindBool {
			if _, ok := v.(bool); !ok {
				return nil, core.NewValidationError(msgInvalidValue)
			}
		}
		if spec.Kind == KindNumber {
			f, ok := v.(float64)
			if !ok {
				return nil, core.NewValidationError(msgInvalidValue)
			}
			// JSON numbers arrive as float64; store whole values as int64
			// so the bound arg compares cleanly against INTEGER columns
			if f == float64(int64(f)) {
				v = int64(f)
			}
		}
		return ScalarValue{V: v}, nil
	}
}

// decodeBetween validates a two-element ISO-8601 range. An empty array is
// valid and applies no restriction.
func decodeBetween(v interface{}) (Value, error) {
	if v == nil {
		return nil, core.NewValidationError(msgInvalidValue)
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, core.NewValidationError(msgInvalidValue)
	}
	if len(arr) == 0 {
		return BetweenValue{Empty: true}, nil
	}
	if len(arr) != 2 {
		return nil, core.NewValidationError(msgInvalidValue)
	}
	bounds := make([]time.Time, 2)
	for i, member := range arr {
		str, ok := member.(string)
		if !ok {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		t, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, core.NewValidationError(msgInvalidValue)
		}
		bounds[i] = t
	}
	return BetweenValue{Lo: bounds[0], Hi: bounds[1]}, nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case []interface{}, map[string]interface{}:
		return false
	}
	return true
}
