// Package validation collects field-level input violations as a simple map of
// field name to stable error code.
package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// PositiveInt enforces quantite-style fields (integer ≥ 1).
func PositiveInt(field string, val int, v Violations) {
	if val < 1 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// OneOf validates enum fields such as a project status.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}

// NonNegativePrice validates optional price fields: nil is fine (unset),
// negative amounts are not.
func NonNegativePrice(field string, val *float64, v Violations) {
	if val != nil && *val < 0 {
		v[field] = "must_not_be_negative"
	}
}
