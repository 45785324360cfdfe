package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderCode(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 5, 7, 0, time.UTC)
	code := GenerateOrderCode(now)

	assert.Regexp(t, regexp.MustCompile(`^ORD-20261016-090507-\d{4}$`), code)
}

type fareInput struct {
	Fare *string `validate:"omitempty,decimal"`
}

func TestDecimalValidation(t *testing.T) {
	str := func(s string) *string { return &s }

	assert.Nil(t, ValidateStruct(fareInput{}))
	assert.Nil(t, ValidateStruct(fareInput{Fare: str("20.50")}))
	assert.Nil(t, ValidateStruct(fareInput{Fare: str("0")}))

	errs := ValidateStruct(fareInput{Fare: str("-1")})
	assert.Equal(t, "Must be a non-negative decimal amount", errs["fareInput.Fare"])

	errs = ValidateStruct(fareInput{Fare: str("twenty")})
	assert.Contains(t, errs, "fareInput.Fare")
}

func TestFormatValidationErrors(t *testing.T) {
	msg := FormatValidationErrors(map[string]string{
		"b": "This field is required",
		"a": "Must be a valid UUID",
	})
	assert.Equal(t, "a: Must be a valid UUID; b: This field is required", msg)
}
