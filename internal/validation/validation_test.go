package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type paymentPayload struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Period string  `json:"period" validate:"required,period"`
	Note   string  `json:"note" validate:"omitempty,notblank"`
}

func TestTranslateUsesJSONFieldNames(t *testing.T) {
	validate := New()

	err := validate.Struct(paymentPayload{Amount: 0, Period: "2024-13"})
	require.Error(t, err)

	fields := Translate(err)
	require.Contains(t, fields, "amount")
	require.Contains(t, fields, "period")
	require.Equal(t, "period must be a billing period formatted as YYYY-MM", fields["period"])
}

func TestNotBlankRejectsWhitespace(t *testing.T) {
	validate := New()

	err := validate.Struct(paymentPayload{Amount: 10, Period: "2024-01", Note: "   "})
	require.Error(t, err)
	require.Equal(t, "note cannot be blank", Translate(err)["note"])
}

func TestValidPayloadPasses(t *testing.T) {
	validate := New()
	require.NoError(t, validate.Struct(paymentPayload{Amount: 50, Period: "2024-01"}))
}

func TestTranslateIgnoresForeignErrors(t *testing.T) {
	require.Nil(t, Translate(errors.New("boom")))
}
