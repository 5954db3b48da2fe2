package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/driver"
)

// Constraint is a uniqueness constraint on one label/property pair.
type Constraint struct {
	Label    string
	Property string
}

// Name is the constraint name, e.g. deputado_id.
func (c Constraint) Name() string {
	return strings.ToLower(c.Label) + "_" + c.Property
}

func (c Constraint) Statement() string {
	return fmt.Sprintf(driver.CreateConstraintQuery, c.Name(), c.Label, c.Property)
}

// secondaryConstraints are unique attributes that are not natural keys.
var secondaryConstraints = []Constraint{
	{Label: model.LabelParty, Property: "id"},
	{Label: model.LabelBody, Property: "id"},
}

// Constraints lists one constraint per entity natural key, followed by the
// secondary ones when requested.
func Constraints(secondary bool) []Constraint {
	var out []Constraint
	for _, e := range model.All() {
		out = append(out, Constraint{Label: e.Label, Property: e.Key})
	}
	if secondary {
		out = append(out, secondaryConstraints...)
	}
	return out
}

// RegisterConstraints creates every constraint that does not exist yet.
// It must run before the first upsert.
func RegisterConstraints(ctx context.Context, d driver.GraphDriver, secondary bool) (int, error) {
	constraints := Constraints(secondary)
	for _, c := range constraints {
		if _, err := d.ExecuteQuery(ctx, c.Statement(), nil); err != nil {
			return 0, fmt.Errorf("failed to create constraint %s: %w", c.Name(), err)
		}
	}
	return len(constraints), nil
}
