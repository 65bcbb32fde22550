package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rg0now/device-assessment/pkg/models"
)

var (
	leadingNumber  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
)

// DeriveAge returns the device age in whole years.
func DeriveAge(manufacturingYear, currentYear int) int {
	return currentYear - manufacturingYear
}

// DeriveWarranty returns the default warranty status for a device of the given age.
func DeriveWarranty(ageYears int) models.WarrantyStatus {
	if ageYears < models.WarrantyYears {
		return models.WarrantyUnder
	}
	return models.WarrantyOut
}

// ParseAge reads the leading number of an age text such as "7 years" or
// "6.5". Empty, "Unknown" and non-numeric text yield nil.
func ParseAge(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "unknown") {
		return nil
	}
	m := leadingNumber.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseManufacturingYear reads the leading integer of a year text such as
// "2019" or "2019 (est.)".
func ParseManufacturingYear(text string) (int, bool) {
	m := leadingInteger.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// FormatAge renders an age the way the assessment form shows it.
func FormatAge(age *float64) string {
	if age == nil {
		return ""
	}
	return strconv.FormatFloat(*age, 'f', -1, 64) + " years"
}
