package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// formatCell renders a sheet cell as text. Missing numbers are blank.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// round keeps places decimals; NaN passes through.
func round(f float64, places int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	p := math.Pow10(places)
	return math.Round(f*p) / p
}

func money(f float64) float64 { return round(f, 2) }
