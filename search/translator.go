package search

import (
	"fmt"
	"strings"
	"time"
)

// Predicate is a translated filter set: SQL conditions joined with AND plus
// their bound arguments, in the conditions/args idiom used by the storage
// layer
type Predicate struct {
	Conditions []string
	Args       []interface{}
}

// WhereClause renders the predicate as a WHERE clause, or an empty string
// when no conditions apply
func (p *Predicate) WhereClause() string {
	if len(p.Conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.Conditions, " AND ")
}

// And appends another condition with its args
func (p *Predicate) And(condition string, args ...interface{}) {
	p.Conditions = append(p.Conditions, condition)
	p.Args = append(p.Args, args...)
}

// Translate converts validated clauses into a SQL predicate. Input must
// already have passed ValidateFilters; translation itself is pure and
// performs no I/O.
func Translate(clauses []Clause) *Predicate {
	p := &Predicate{}
	for _, clause := range clauses {
		switch value := clause.Value.(type) {
		case BetweenValue:
			translateBetween(p, clause.Column, value)
		case SetValue:
			translateSet(p, clause.Column, clause.Operation, value)
		case NotNullValue:
			p.And(clause.Column + " IS NOT NULL")
		case ScalarValue:
			translateScalar(p, clause.Column, clause.Operation, value)
		}
	}
	return p
}

// translateBetween emits an inclusive-lower, exclusive-upper UTC range.
// Bounds arrive with a source offset and are normalized to UTC; callers send
// end-of-day 23:59:59 upper bounds, so the final literal second is excluded.
// That boundary is a wire contract and must not be "corrected".
func translateBetween(p *Predicate, column string, value BetweenValue) {
	if value.Empty {
		return
	}
	p.And(column+" >= ?", formatUTC(value.Lo))
	p.And(column+" < ?", formatUTC(value.Hi))
}

func translateSet(p *Predicate, column string, op Operation, value SetValue) {
	if len(value.Values) == 0 {
		if op == OpIn {
			// Empty in-set matches zero rows, not "no filter applied"
			p.And("1 = 0")
		}
		// Empty notin-set applies no restriction
		return
	}
	placeholders := make([]string, len(value.Values))
	for i := range value.Values {
		placeholders[i] = "?"
	}
	keyword := "IN"
	if op == OpNotIn {
		keyword = "NOT IN"
	}
	p.And(fmt.Sprintf("%s %s (%s)", column, keyword, strings.Join(placeholders, ",")),
		value.Values...)
}

func translateScalar(p *Predicate, column string, op Operation, value ScalarValue) {
	switch op {
	case OpEq:
		p.And(column+" = ?", value.V)
	case OpNeq:
		// Structural negation rather than a native <>, to match the
		// downstream executor's null semantics
		p.And("NOT ("+column+" = ?)", value.V)
	case OpLt:
		p.And(column+" < ?", value.V)
	case OpLte:
		p.And(column+" <= ?", value.V)
	case OpGt:
		p.And(column+" > ?", value.V)
	case OpGte:
		p.And(column+" >= ?", value.V)
	case OpLike:
		p.And("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value.V.(string))+"%")
	}
}

// formatUTC renders a bound in the canonical RFC3339 UTC form used for all
// stored timestamps, so string comparison is chronological
func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
