package form

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// ValidationError names the first field that failed a local check. Nothing
// has been sent to the server when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Schema declares how a payload is checked and encoded.
type Schema struct {
	// Required fields must be non-empty after trimming.
	Required []string
	// Numeric fields must parse as non-negative decimals.
	Numeric []string
	// Integer fields must parse as positive whole numbers.
	Integer []string
	// Enums restrict a field to a fixed set of values when it is set.
	Enums map[string][]string
	// Images maps image fields to the filename used for their multipart part.
	Images map[string]string
	// TimestampField is stamped with the local clock at submission.
	TimestampField string
	// Labels override field names in validation messages.
	Labels map[string]string
}

// Validate checks p against s and returns a *ValidationError for the first
// failing field. Required fields are checked in declaration order, each with
// its format rules, before optional fields are looked at.
func (s Schema) Validate(p *Payload) error {
	for _, name := range s.order() {
		value, _ := p.Get(name)
		txt, present := text(value)

		if !present {
			if slices.Contains(s.Required, name) {
				return s.fail(name, "is required")
			}
			continue
		}

		if slices.Contains(s.Numeric, name) {
			d, err := decimal.NewFromString(txt)
			if err != nil {
				return s.fail(name, "must be a valid number")
			}
			if d.IsNegative() {
				return s.fail(name, "must not be negative")
			}
		}

		if slices.Contains(s.Integer, name) {
			n, err := strconv.Atoi(txt)
			if err != nil || n <= 0 {
				return s.fail(name, "must be a positive whole number")
			}
		}

		if allowed, ok := s.Enums[name]; ok && !slices.Contains(allowed, txt) {
			return s.fail(name, fmt.Sprintf("must be one of %v", allowed))
		}
	}
	return nil
}

func (s Schema) order() []string {
	names := slices.Clone(s.Required)
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, n := range s.Numeric {
		add(n)
	}
	for _, n := range s.Integer {
		add(n)
	}
	enumNames := make([]string, 0, len(s.Enums))
	for n := range s.Enums {
		enumNames = append(enumNames, n)
	}
	slices.Sort(enumNames)
	for _, n := range enumNames {
		add(n)
	}
	return names
}

func (s Schema) fail(name, msg string) *ValidationError {
	label := name
	if l, ok := s.Labels[name]; ok {
		label = l
	}
	return &ValidationError{Field: name, Message: label + " " + msg}
}
