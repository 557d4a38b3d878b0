// Package format renders amounts and dates the way the Indian-locale expense
// pages display them: rupee amounts with lakh/crore digit grouping, compact
// Cr/L/K figures, DD/MM/YYYY dates and April-to-March financial years.
//
// Every formatter is total. Missing or malformed input degrades to a safe
// display string instead of an error.
package format

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RupeeSymbol prefixes every currency string.
const RupeeSymbol = "₹"

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// FormatINR renders amount as whole rupees with Indian digit grouping,
// e.g. 12345678 -> "₹1,23,45,678". nil, NaN and unparseable input render "₹0".
func FormatINR(amount any) string {
	if amount == nil {
		return RupeeSymbol + "0"
	}
	value, ok := parseAmount(amount)
	if !ok || math.IsNaN(value) {
		return RupeeSymbol + "0"
	}
	return formatFixed(value, 0)
}

// FormatINRFull renders amount with two decimal places. nil renders "₹0.00";
// unparseable input renders "₹NaN", matching the browser number formatter.
func FormatINRFull(amount any) string {
	if amount == nil {
		return RupeeSymbol + "0.00"
	}
	value, ok := parseAmount(amount)
	if !ok || math.IsNaN(value) {
		return RupeeSymbol + "NaN"
	}
	return formatFixed(value, 2)
}

// FormatCompact abbreviates large amounts using crore (Cr), lakh (L) and
// thousand (K) units with one decimal. Amounts below one thousand fall back
// to FormatINR. Unparseable input counts as zero.
func FormatCompact(amount any) string {
	value, ok := parseAmount(amount)
	if !ok || math.IsNaN(value) || value == 0 {
		value = 0
	}
	if math.IsInf(value, 0) {
		return formatFixed(value, 0)
	}
	switch {
	case value >= crore:
		return RupeeSymbol + scaled(value, crore) + " Cr"
	case value >= lakh:
		return RupeeSymbol + scaled(value, lakh) + " L"
	case value >= thousand:
		return RupeeSymbol + scaled(value, thousand) + "K"
	}
	return FormatINR(value)
}

// scaled divides in float64 and rounds the quotient's exact binary value
// half up, so 1150/1000 (stored as 1.14999...) gives "1.1".
func scaled(value float64, unit int64) string {
	q := value / float64(unit)
	exact := new(big.Float).SetFloat64(q).Text('f', exactDigits)
	return decimal.RequireFromString(exact).StringFixed(1)
}

// exactDigits covers every fractional binary digit of a float64 >= 1.
const exactDigits = 64

func formatFixed(value float64, places int32) string {
	if math.IsInf(value, 1) {
		return RupeeSymbol + "∞"
	}
	if math.IsInf(value, -1) {
		return "-" + RupeeSymbol + "∞"
	}
	d := decimal.NewFromFloat(value).Round(places)
	sign := ""
	if math.Signbit(value) {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(places)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := sign + RupeeSymbol + GroupIndian(intPart)
	if fracPart != "" {
		out += "." + fracPart
	}
	return out
}

// GroupIndian inserts separators into a run of digits using the Indian
// system: the last three digits form one group, the rest are grouped in twos.
func GroupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

func parseAmount(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case decimal.Decimal:
		f, _ := val.Float64()
		return f, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		return parseLeadingFloat(val)
	case *float64:
		if val == nil {
			return 0, false
		}
		return *val, true
	}
	return 0, false
}

var leadingFloat = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseLeadingFloat reads the longest numeric prefix of s after leading
// whitespace, so "123abc" is 123 and "abc" fails.
func parseLeadingFloat(s string) (float64, bool) {
	match := leadingFloat.FindString(strings.TrimLeft(s, " \t\n\r\f\v"))
	if match == "" {
		return 0, false
	}
	if strings.HasSuffix(match, "Infinity") {
		if strings.HasPrefix(match, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// Out of range saturates to ±Inf.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}
