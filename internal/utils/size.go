package utils

import (
	"strconv"
	"strings"
)

const thousandsSeparator = ","

// FormatNumber renders a non-negative count with comma thousands separators, e.g. 1234567 -> "1,234,567".
func FormatNumber(value int) string {
	digits := strconv.Itoa(value)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var builder strings.Builder
	leadingGroupLength := len(digits) % 3
	if leadingGroupLength == 0 {
		leadingGroupLength = 3
	}
	builder.WriteString(digits[:leadingGroupLength])
	for index := leadingGroupLength; index < len(digits); index += 3 {
		builder.WriteString(thousandsSeparator)
		builder.WriteString(digits[index : index+3])
	}
	return sign + builder.String()
}
