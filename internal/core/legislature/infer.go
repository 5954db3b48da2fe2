// Package legislature derives the Legislatura node set. There is no
// legislature dataset: the ids are collected from the idLegislatura foreign
// keys carried by deputies and caucuses.
package legislature

import (
	"fmt"
	"math"
	"sort"

	"github.com/agenthands/plenum/internal/core/model"
)

// Field is the foreign key holding a legislature id.
const Field = "idLegislatura"

// Infer returns the sorted, distinct legislature ids referenced by any of
// the given record sets. Records without the field contribute nothing.
// Numeric ids sort before string ids.
func Infer(sets ...[]model.Record) ([]any, error) {
	seen := make(map[any]struct{})
	var ids []any

	for _, records := range sets {
		for i, r := range records {
			v, ok := r[Field]
			if !ok || v == nil {
				continue
			}
			id, err := canonical(v)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	sort.SliceStable(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
	return ids, nil
}

// Records wraps inferred ids into records suitable for the Legislature upsert.
func Records(ids []any) []model.Record {
	out := make([]model.Record, len(ids))
	for i, id := range ids {
		out[i] = model.Record{"id": id}
	}
	return out
}

func canonical(v any) (any, error) {
	switch t := model.NormalizeValue(v).(type) {
	case int64:
		return t, nil
	case float64:
		// Whole floats fold onto the int64 id only while exactly representable.
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t), nil
		}
		return t, nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported %s value %v (%T)", Field, v, v)
	}
}

func less(a, b any) bool {
	af, aNum := number(a)
	bf, bNum := number(b)
	switch {
	case aNum && bNum:
		return af < bf
	case aNum:
		return true
	case bNum:
		return false
	}
	return a.(string) < b.(string)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
