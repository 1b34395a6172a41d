package tools

import (
	"fmt"
	"strconv"
)

// formatResult renders a binary operation result as the markdown block
// every arithmetic tool returns.
func formatResult(operation string, a, b, result float64, operator string) string {
	return fmt.Sprintf("## %s Result\n\n%s %s %s = %s",
		operation, formatNumber(a), operator, formatNumber(b), formatNumber(result))
}

// formatNumber renders a float with the shortest representation that
// round-trips, so whole values print without a trailing ".0".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
