package filter

import (
	"fmt"
	"sort"
)

// MaxConditions is the maximum number of AND conditions per query.
const MaxConditions = 32

// Condition is a literal equality clause on one field.
type Condition struct {
	field string
	value string
}

// NewEquals creates an equality condition.
func NewEquals(field, value string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("condition field is required")
	}
	return Condition{field: field, value: value}, nil
}

// Field returns the condition field name.
func (c Condition) Field() string { return c.field }

// Value returns the literal value the field must equal.
func (c Condition) Value() string { return c.value }

// Conditions is an AND-combined set of equality clauses in field order.
type Conditions struct {
	items []Condition
}

// FromMap validates and creates Conditions from field/value pairs.
// The result is ordered by field name so the same map always yields the same query.
func FromMap(m map[string]string) (Conditions, error) {
	if len(m) > MaxConditions {
		return Conditions{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	items := make([]Condition, 0, len(m))
	for k, v := range m {
		c, err := NewEquals(k, v)
		if err != nil {
			return Conditions{}, err
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].field < items[j].field })
	return Conditions{items: items}, nil
}

// Items returns the conditions.
func (c Conditions) Items() []Condition { return c.items }

// IsEmpty reports whether there are no conditions.
func (c Conditions) IsEmpty() bool { return len(c.items) == 0 }
