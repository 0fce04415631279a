package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a numeric form value such as a weight in kg.
func ParseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}

	return d, nil
}

// ValidateOptionalDecimal accepts an empty value or a number.
func ValidateOptionalDecimal(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	_, err := ParseDecimal(field, value)
	return err
}
