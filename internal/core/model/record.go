package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMissingKey is returned when a record lacks its natural key.
var ErrMissingKey = errors.New("record is missing its natural key")

// Record is one flat attribute mapping as read from a dataset.
type Record map[string]any

// Dataset holds every record set an import consumes. Legislatures are not
// part of it; they are inferred from deputies and caucuses.
type Dataset struct {
	Parties  []Record `json:"partidos"`
	Deputies []Record `json:"deputados"`
	Caucuses []Record `json:"frentes"`
	Bodies   []Record `json:"orgaos"`
	Bills    []Record `json:"proposicoes"`
	Votes    []Record `json:"votacoes"`
}

// Records returns the record set feeding the given entity type.
func (d Dataset) Records(t EntityType) []Record {
	switch t {
	case Party:
		return d.Parties
	case Deputy:
		return d.Deputies
	case Caucus:
		return d.Caucuses
	case Body:
		return d.Bodies
	case Bill:
		return d.Bills
	case Vote:
		return d.Votes
	}
	return nil
}

// NullPolicy decides what happens to attributes whose value is null.
type NullPolicy int

const (
	// NullPolicyOverwrite writes nulls, removing the stored property.
	NullPolicyOverwrite NullPolicy = iota
	// NullPolicySkip leaves the stored property untouched.
	NullPolicySkip
)

// Validate checks that every record carries the entity's natural key.
func Validate(e Entity, records []Record) error {
	for i, r := range records {
		if v, ok := r[e.Key]; !ok || v == nil {
			return fmt.Errorf("%w: %s record %d has no %q", ErrMissingKey, e.Label, i, e.Key)
		}
	}
	return nil
}

// Properties returns the attributes of r that the entity refreshes,
// applying the null policy. Attributes missing from the record count as null.
func Properties(e Entity, r Record, policy NullPolicy) map[string]any {
	props := make(map[string]any, len(e.Attributes))
	for _, attr := range e.Attributes {
		v := r[attr]
		if v == nil && policy == NullPolicySkip {
			continue
		}
		props[attr] = v
	}
	return props
}

// NormalizeValue converts decoded JSON values into types the Bolt protocol
// understands. A json.Number becomes int64 when written as an integer and
// float64 otherwise. A bare float64 has already lost that distinction, so
// integral values become int64. Nested lists and maps are converted
// recursively; everything else is returned as is.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case int:
		return int64(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = NormalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = NormalizeValue(item)
		}
		return out
	}
	return v
}

// Normalize applies NormalizeValue to every attribute of r.
func Normalize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = NormalizeValue(v)
	}
	return out
}
