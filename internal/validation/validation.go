// Package validation implements the field checks behind create/update
// payloads. Checks accumulate messages into a common.ValidationError keyed by
// wire field name, so a single pass reports every offending field at once.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/shopspring/decimal"
)

// MaxNameLength bounds names, titles, links and emails.
const MaxNameLength = 255

// PriceMaxDigits / PriceDecimalPlaces mirror the store column NUMERIC(5,2).
const (
	PriceMaxDigits     = 5
	PriceDecimalPlaces = 2
)

// priceMax is the largest absolute value representable in NUMERIC(5,2).
var priceMax = decimal.RequireFromString("999.99")

// Required records an error when value is empty or whitespace-only.
func Required(ve *common.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "this field is required")
	}
}

// MaxLen records an error when value exceeds max characters. Lengths count
// runes, not bytes, so multi-byte input is measured as the user typed it.
func MaxLen(ve *common.ValidationError, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		ve.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", max))
	}
}

// MinLen records an error when value is shorter than min characters.
func MinLen(ve *common.ValidationError, field, value string, min int) {
	if utf8.RuneCountInString(value) < min {
		ve.Add(field, fmt.Sprintf("ensure this field has at least %d characters", min))
	}
}

// Email records an error unless value is a plain RFC 5322 address.
func Email(ve *common.ValidationError, field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		ve.Add(field, "enter a valid email address")
	}
}

// NonNegativeInt records an error when n is below zero.
func NonNegativeInt(ve *common.ValidationError, field string, n int) {
	if n < 0 {
		ve.Add(field, "ensure this value is greater than or equal to 0")
	}
}

// Price enforces the NUMERIC(5,2) constraints: at most PriceDecimalPlaces
// fractional digits and at most PriceMaxDigits digits in total. The sign is
// not counted as a digit.
func Price(ve *common.ValidationError, field string, d decimal.Decimal) {
	if d.Exponent() < -PriceDecimalPlaces {
		ve.Add(field, fmt.Sprintf("ensure that there are no more than %d decimal places", PriceDecimalPlaces))
	}
	if d.Abs().GreaterThan(priceMax) {
		ve.Add(field, fmt.Sprintf("ensure that there are no more than %d digits in total", PriceMaxDigits))
	}
}
