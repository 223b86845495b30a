package util

import (
	"strconv"
	"strings"
)

// DecimalStyle selects how separators inside numeric strings are read.
type DecimalStyle int

const (
	// DecimalComma: comma is the decimal separator, periods are kept as-is,
	// so plain decimals and scientific notation ("1.47e-4") both survive.
	DecimalComma DecimalStyle = iota
	// GroupedPeriods: periods are thousands separators and are stripped,
	// comma is the decimal separator ("1.234,56" -> 1234.56).
	GroupedPeriods
)

// ParseNumber reads a raw cell string into (value, isPercent).
// Empty, "nan", "none" and "-" yield (nil, false). A trailing '%' is
// stripped, marks the value as a percentage and divides it by 100.
// Anything that still fails to parse yields (nil, isPercent) rather than
// an error: a bad cell never kills the row.
func ParseNumber(raw string, style DecimalStyle) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "-":
		return nil, false
	}

	isPct := strings.HasSuffix(s, "%")
	if isPct {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	s = strings.ReplaceAll(s, "\u00A0", "")
	s = strings.ReplaceAll(s, " ", "")
	if style == GroupedPeriods {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, isPct
	}
	if isPct {
		val /= 100.0
	}
	return &val, isPct
}
