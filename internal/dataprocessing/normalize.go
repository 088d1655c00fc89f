package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converts spreadsheet text that uses a comma as the decimal
// separator ("1,50") into a float. Text that is not a finite number yields
// ok == false instead of an error so one bad cell never fails a column.
func ParseDecimal(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || isHexLiteral(text) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// isHexLiteral reports a 0x prefix after an optional sign. strconv reads
// hexadecimal floats, spreadsheets never mean them.
func isHexLiteral(text string) bool {
	text = strings.TrimLeft(text, "+-")
	return len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')
}

// NormalizeColumn applies ParseDecimal to every cell of a column. Missing
// values are nil.
func NormalizeColumn(values []string) []*float64 {
	out := make([]*float64, len(values))
	for i, text := range values {
		if v, ok := ParseDecimal(text); ok {
			out[i] = &v
		}
	}
	return out
}

// ParseYear casts a year cell to an integer, truncating toward zero.
func ParseYear(text string) (int, bool) {
	v, ok := ParseDecimal(text)
	if !ok {
		return 0, false
	}
	return int(math.Trunc(v)), true
}

// round2 rounds half to even at two decimals, matching the spreadsheet
// tooling the figures are compared against.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
