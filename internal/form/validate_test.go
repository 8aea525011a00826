package form

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var purchaseSchema = Schema{
	Required: []string{"first_name", "last_name", "zone", "amount", "phone", "base", "pushcard_type"},
	Numeric:  []string{"amount"},
	Enums:    map[string][]string{"pushcard_type": {"pushcard", "TopTop", "Owner"}},
	Labels:   map[string]string{"first_name": "first name"},
}

func validPurchase() *Payload {
	return NewPayload().
		Set("first_name", "Awa").
		Set("last_name", "Koné").
		Set("zone", "Cocody").
		Set("amount", "15000").
		Set("phone", "0708091011").
		Set("base", "Abidjan").
		Set("pushcard_type", "pushcard")
}

func TestValidateAcceptsCompletePayload(t *testing.T) {
	assert.NoError(t, purchaseSchema.Validate(validPurchase()))
}

func TestValidateRequiredBlankAfterTrim(t *testing.T) {
	for _, field := range purchaseSchema.Required {
		t.Run(field, func(t *testing.T) {
			p := validPurchase().Set(field, "   ")

			err := purchaseSchema.Validate(p)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestValidateReportsFirstFailingField(t *testing.T) {
	p := validPurchase().Set("phone", "").Set("last_name", nil)

	err := purchaseSchema.Validate(p)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "last_name", verr.Field)
}

func TestValidateNumeric(t *testing.T) {
	tests := []struct {
		amount any
		ok     bool
	}{
		{"0", true},
		{"1500.50", true},
		{" 15000 ", true},
		{decimal.NewFromInt(42), true},
		{12.5, true},
		{"abc", false},
		{"12,5", false},
		{"-3", false},
	}
	for _, tt := range tests {
		err := purchaseSchema.Validate(validPurchase().Set("amount", tt.amount))
		if tt.ok {
			assert.NoError(t, err, "amount %v", tt.amount)
			continue
		}
		var verr *ValidationError
		if assert.ErrorAs(t, err, &verr, "amount %v", tt.amount) {
			assert.Equal(t, "amount", verr.Field)
		}
	}
}

func TestValidateNumericCheckedBeforeLaterRequiredFields(t *testing.T) {
	p := validPurchase().Set("amount", "lots").Set("phone", "")

	var verr *ValidationError
	require.ErrorAs(t, purchaseSchema.Validate(p), &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestValidateEnum(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, purchaseSchema.Validate(validPurchase().Set("pushcard_type", "gold")), &verr)
	assert.Equal(t, "pushcard_type", verr.Field)
}

func TestValidateInteger(t *testing.T) {
	s := Schema{Required: []string{"quantity"}, Integer: []string{"quantity"}}

	assert.NoError(t, s.Validate(NewPayload().Set("quantity", 3)))
	assert.NoError(t, s.Validate(NewPayload().Set("quantity", "7")))
	assert.Error(t, s.Validate(NewPayload().Set("quantity", "0")))
	assert.Error(t, s.Validate(NewPayload().Set("quantity", "2.5")))
}

func TestValidateOptionalFieldsSkippedWhenEmpty(t *testing.T) {
	s := Schema{Numeric: []string{"turnover"}}

	assert.NoError(t, s.Validate(NewPayload().Set("turnover", "")))
	assert.Error(t, s.Validate(NewPayload().Set("turnover", "n/a")))
}

func TestValidationErrorUsesLabel(t *testing.T) {
	err := purchaseSchema.Validate(validPurchase().Set("first_name", ""))
	assert.EqualError(t, err, "first name is required")
}

func TestPayloadSetKeepsPosition(t *testing.T) {
	p := NewPayload().Set("a", 1).Set("b", 2).Set("a", 3)

	fields := p.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, 3, fields[0].Value)
}
