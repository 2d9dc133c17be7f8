package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJump() Jump {
	return Jump{
		JumpNumber:    12,
		Date:          time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		DropZone:      "Skydive Perris",
		ExitAltitude:  13500,
		InvoiceStatus: JumpUnbilled,
	}
}

func TestJumpValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(j *Jump)
		field  string
		msg    string
	}{
		{"valid", func(j *Jump) {}, "", ""},
		{"missing dropzone", func(j *Jump) { j.DropZone = "" }, "DropZone", "is required"},
		{"zero number", func(j *Jump) { j.JumpNumber = 0 }, "JumpNumber", "must be greater than 0"},
		{"missing date", func(j *Jump) { j.Date = time.Time{} }, "Date", "is required"},
		{"altitude too high", func(j *Jump) { j.ExitAltitude = 45000 }, "ExitAltitude", "must be at most 40000"},
		{"negative freefall", func(j *Jump) { j.FreefallSeconds = -1 }, "FreefallSeconds", "must be at least 0"},
		{"work jump without items", func(j *Jump) { j.WorkJump = true }, "InvoiceItems", "is required for work jumps"},
		{"work jump with empty items", func(j *Jump) {
			j.WorkJump = true
			j.InvoiceItems = []string{}
		}, "InvoiceItems", "is required for work jumps"},
		{"work jump with items", func(j *Jump) {
			j.WorkJump = true
			j.InvoiceItems = []string{"Tandem"}
		}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := validJump()
			tt.modify(&j)
			err := j.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var fields FieldErrors
			require.True(t, errors.As(err, &fields))
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	err := FieldErrors{"JumpNumber": "must be greater than 0", "DropZone": "is required"}
	assert.Equal(t, "validation failed: DropZone: is required; JumpNumber: must be greater than 0", err.Error())
}

func TestServiceRateValidate(t *testing.T) {
	require.NoError(t, ServiceRate{Service: "Tandem", Rate: 45}.Validate())

	err := ServiceRate{Service: "", Rate: -1}.Validate()
	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "is required", fields["Service"])
	assert.Equal(t, "must be at least 0", fields["Rate"])
}
